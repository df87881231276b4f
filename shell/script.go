package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("checkers_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// Exec runs a shell command line and returns its output.
func Exec(L *lua.LState) int {
	line := L.CheckString(1)
	sc := getShell(L)
	out, err := sc.Execute(line)
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-executing-script-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(out))
	// return number of results pushed to stack.
	return 1
}

func Wait(L *lua.LState) int {
	getShell(L).game.Wait()
	return 0
}

// State returns the game as a snapshot table.
func State(L *lua.LState) int {
	sc := getShell(L)
	data, err := sc.game.Save(true)
	if err != nil {
		L.RaiseError("saving game: %v", err)
		return 0
	}
	v, err := luajson.Decode(L, data)
	if err != nil {
		L.RaiseError("decoding game: %v", err)
		return 0
	}
	L.Push(v)
	return 1
}

func Moves(L *lua.LState) int {
	sc := getShell(L)
	t := L.NewTable()
	for _, m := range sc.game.PossibleMoves() {
		t.Append(lua.LString(m.ShortDescription()))
	}
	L.Push(t)
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("checkers_shell", lsc)
	L.SetGlobal("checkers_exec", L.NewFunction(Exec))
	L.SetGlobal("checkers_wait", L.NewFunction(Wait))
	L.SetGlobal("checkers_state", L.NewFunction(State))
	L.SetGlobal("checkers_moves", L.NewFunction(Moves))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Str("script", filepath).Msg("script-failed")
		return nil, err
	}
	return nil, nil
}

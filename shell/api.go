package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/checkers/automatic"
	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/game"
	"github.com/domino14/checkers/move"
	"github.com/domino14/checkers/strategy"
)

var errNoStore = errors.New("no game database; start with --" + config.ConfigGameDBPath + "=<file>")

type Response struct {
	message string
}

type CmdOptions map[string]string

func (c CmdOptions) String(key string) string {
	return c[key]
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) Bool(key string) bool {
	return strings.ToLower(c[key]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func parseLoc(s string) (board.Location, error) {
	var r, c int
	if _, err := fmt.Sscanf(s, "%d,%d", &r, &c); err != nil {
		return board.Location{}, fmt.Errorf("cannot parse square %q; use row,col", s)
	}
	loc := board.Loc(r, c)
	if !loc.Valid() || !board.IsDark(r, c) {
		return loc, fmt.Errorf("%v is not a dark square on the board", loc)
	}
	return loc, nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	var swap bool
	if len(cmd.args) > 0 {
		switch cmd.args[0] {
		case "swap":
			swap = true
		case "random":
			swap = frand.Intn(2) == 1
		default:
			return nil, fmt.Errorf("unknown option %q; use swap or random", cmd.args[0])
		}
	}
	sc.lastMoves = nil
	sc.editBoard = nil
	sc.game.Restart(swap)
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.editBoard != nil {
		return msg(sc.editBoard.ToDisplayText() + "\n(editing)"), nil
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: move <row,col> <row,col> [...] or move <n>")
	}
	var m *move.Move
	if n, err := strconv.Atoi(cmd.args[0]); err == nil && len(cmd.args) == 1 {
		if n < 1 || n > len(sc.lastMoves) {
			return nil, fmt.Errorf("no move numbered %d; list them with moves", n)
		}
		m = sc.lastMoves[n-1]
	} else {
		m, err = move.Parse(strings.Join(cmd.args, " "))
		if err != nil {
			return nil, err
		}
	}
	res := sc.game.Move(m)
	if res.OK {
		sc.lastMoves = nil
		return nil, nil
	}
	if res.Reason == game.ReasonMustJump {
		descs := make([]string, len(res.ForcedJumps))
		for i, j := range res.ForcedJumps {
			descs[i] = j.ShortDescription()
		}
		return nil, fmt.Errorf("you must jump: %v", strings.Join(descs, ", "))
	}
	return nil, fmt.Errorf("move %v refused: %v", m.ShortDescription(), res.Reason)
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	sc.lastMoves = sc.game.PossibleMoves()
	if len(sc.lastMoves) == 0 {
		return msg("No moves."), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Moves for %v:\n", sc.game.NextMover())
	for i, m := range sc.lastMoves {
		fmt.Fprintf(&sb, "%3d: %v\n", i+1, m.ShortDescription())
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if err := sc.game.Undo(); err != nil {
		return nil, err
	}
	sc.lastMoves = nil
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) ai(cmd *shellcmd) (*Response, error) {
	sc.game.MoveForMe()
	return nil, nil
}

// debug focuses the engine's next move on one piece.
func (sc *ShellController) debug(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		if loc, ok := sc.game.DebugFocus(); ok {
			return msg(fmt.Sprintf("Engine focus: %v", loc)), nil
		}
		return msg("No engine focus."), nil
	}
	loc, err := parseLoc(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.game.DebugMovesFor(loc)
	return msg(fmt.Sprintf("The engine will only consider moves from %v next.", loc)), nil
}

func (sc *ShellController) pause(cmd *shellcmd) (*Response, error) {
	sc.game.Pause()
	return nil, nil
}

func (sc *ShellController) unpause(cmd *shellcmd) (*Response, error) {
	sc.game.Unpause()
	return nil, nil
}

func (sc *ShellController) aivsai(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 || (cmd.args[0] != "on" && cmd.args[0] != "off") {
		return nil, errors.New("usage: aivsai on|off")
	}
	sc.game.SetAIVsAI(cmd.args[0] == "on")
	return nil, nil
}

func (sc *ShellController) strategy(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		p, o := sc.game.Player(), sc.game.Opponent()
		return msg(fmt.Sprintf("player: %v\nopponent: %v\navailable: %v",
			p.Strategy, o.Strategy, strings.Join(strategy.Names, ", "))), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: strategy player|opponent <name>")
	}
	var c board.Color
	switch cmd.args[0] {
	case "player":
		c = sc.game.Player().Color
	case "opponent":
		c = sc.game.Opponent().Color
	default:
		return nil, fmt.Errorf("unknown side %q; use player or opponent", cmd.args[0])
	}
	if err := sc.game.SetStrategy(c, cmd.args[1]); err != nil {
		return nil, err
	}
	return nil, nil
}

func (sc *ShellController) lookahead(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: lookahead <plies>|default")
	}
	if cmd.args[0] == "default" {
		sc.game.SetLookahead(nil)
		return nil, nil
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	limit := sc.config.GetInt(config.ConfigMaxLookaheadLimit)
	if n < 0 || n > limit {
		return nil, fmt.Errorf("lookahead must be between 0 and %d", limit)
	}
	sc.game.SetLookahead(&n)
	return nil, nil
}

func (sc *ShellController) resign(cmd *shellcmd) (*Response, error) {
	return nil, sc.game.Resign()
}

func (sc *ShellController) draw(cmd *shellcmd) (*Response, error) {
	if err := sc.game.SuggestDraw(); err != nil {
		return nil, err
	}
	return msg("Draw offered."), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: save <file> [-snapshot true]")
	}
	data, err := sc.game.Save(cmd.options.Bool("snapshot"))
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(cmd.args[0], data, 0644); err != nil {
		return nil, err
	}
	return msg("Saved to " + cmd.args[0]), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file>")
	}
	data, err := os.ReadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.Load(data); err != nil {
		return nil, err
	}
	sc.lastMoves = nil
	sc.editBoard = nil
	return nil, nil
}

func (sc *ShellController) archive(cmd *shellcmd) (*Response, error) {
	if sc.store == nil {
		return nil, errNoStore
	}
	ctx := context.Background()
	sub := ""
	if len(cmd.args) > 0 {
		sub = cmd.args[0]
	}
	switch sub {
	case "list":
		limit, err := cmd.options.IntDefault("limit", 20)
		if err != nil {
			return nil, err
		}
		games, err := sc.store.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		if len(games) == 0 {
			return msg("No archived games."), nil
		}
		var sb strings.Builder
		for _, s := range games {
			kind := "moves"
			if s.Snapshot {
				kind = "snapshot"
			}
			fmt.Fprintf(&sb, "%v  %v  %-20v %v vs %v, %d %v\n", s.ID,
				s.CreatedAt.Format("2006-01-02 15:04"), s.Label, s.PlayerStrategy,
				s.OpponentStrategy, s.NumMoves, kind)
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	case "load":
		if len(cmd.args) != 2 {
			return nil, errors.New("usage: archive load <id>")
		}
		data, err := sc.store.Get(ctx, cmd.args[1])
		if err != nil {
			return nil, err
		}
		if err := sc.game.Load(data); err != nil {
			return nil, err
		}
		sc.editBoard = nil
		return nil, nil
	case "delete":
		if len(cmd.args) != 2 {
			return nil, errors.New("usage: archive delete <id>")
		}
		if err := sc.store.Delete(ctx, cmd.args[1]); err != nil {
			return nil, err
		}
		return msg("Deleted " + cmd.args[1]), nil
	}
	// archive [label] [-snapshot true]
	data, err := sc.game.Save(cmd.options.Bool("snapshot"))
	if err != nil {
		return nil, err
	}
	id, err := sc.store.Save(ctx, strings.Join(cmd.args, " "), data)
	if err != nil {
		return nil, err
	}
	return msg("Archived as " + id), nil
}

func (sc *ShellController) edit(cmd *shellcmd) (*Response, error) {
	sub := ""
	if len(cmd.args) > 0 {
		sub = cmd.args[0]
	}
	if sub == "" {
		sc.game.Pause()
		sc.editBoard = sc.game.Board()
		return sc.show(cmd)
	}
	if sc.editBoard == nil {
		return nil, errors.New("not editing; start with edit")
	}
	switch sub {
	case "clear":
		sc.editBoard.Clear()
	case "reset":
		sc.editBoard.InitializePieces()
	case "set":
		if len(cmd.args) < 3 {
			return nil, errors.New("usage: edit set <row,col> black|red [king]")
		}
		loc, err := parseLoc(cmd.args[1])
		if err != nil {
			return nil, err
		}
		c, err := board.ColorFromString(cmd.args[2])
		if err != nil {
			return nil, err
		}
		king := len(cmd.args) > 3 && cmd.args[3] == "king"
		if err := sc.editBoard.SetPiece(loc, c, king); err != nil {
			return nil, err
		}
	case "remove":
		if len(cmd.args) != 2 {
			return nil, errors.New("usage: edit remove <row,col>")
		}
		loc, err := parseLoc(cmd.args[1])
		if err != nil {
			return nil, err
		}
		if err := sc.editBoard.ClearPiece(loc); err != nil {
			return nil, err
		}
	case "text":
		if len(cmd.args) != 2 {
			return nil, errors.New("usage: edit text <file>")
		}
		data, err := os.ReadFile(cmd.args[1])
		if err != nil {
			return nil, err
		}
		b, err := board.NewFromPlaintext(string(data), sc.editBoard.BlackMovesUp())
		if err != nil {
			return nil, err
		}
		sc.editBoard = b
	case "done":
		next := sc.game.NextMover()
		if len(cmd.args) > 1 {
			c, err := board.ColorFromString(cmd.args[1])
			if err != nil {
				return nil, err
			}
			next = c
		}
		b := sc.editBoard
		sc.editBoard = nil
		sc.lastMoves = nil
		sc.game.SetPosition(b, next)
		log.Info().Str("next", next.String()).Msg("position-edited")
		return msg(sc.game.ToDisplayText() + "\nUnpause to play from here."), nil
	case "cancel":
		sc.editBoard = nil
		return msg(sc.game.ToDisplayText()), nil
	default:
		return nil, fmt.Errorf("unknown edit command %q", sub)
	}
	return sc.show(cmd)
}

// autoplay plays computer games against each other and waits for the
// summary.
func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	opts := automatic.Options{
		BlackStrategy: cmd.options.String("black"),
		RedStrategy:   cmd.options.String("red"),
		LogFile:       cmd.options.String("logfile"),
	}
	var err error
	if opts.NumGames, err = cmd.options.IntDefault("games", 10); err != nil {
		return nil, err
	}
	if opts.Threads, err = cmd.options.IntDefault("threads", 0); err != nil {
		return nil, err
	}
	if f := cmd.options.String("seeds"); f != "" {
		if opts.Seeds, err = automatic.LoadSeeds(f); err != nil {
			return nil, err
		}
	}
	if sc.store != nil && cmd.options.Bool("archive") {
		opts.Archive = sc.store
	}
	sc.showMessage(fmt.Sprintf("Playing %d games...", opts.NumGames))
	summary, err := automatic.PlayCompVComp(context.Background(), sc.config, opts)
	if err != nil {
		return nil, err
	}
	return msg(summary.String()), nil
}

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/bot"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/evaluator"
	"github.com/domino14/checkers/game"
	"github.com/domino14/checkers/gamestore"
	"github.com/domino14/checkers/move"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config
	out    io.Writer

	game   *game.Game
	engine game.Engine
	client *bot.Client
	store  *gamestore.Store

	// board being set up by the edit command
	editBoard *board.Board
	lastMoves []*move.Move
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// printer writes game events to the terminal. Events arrive from engine
// goroutines as well as the readline loop.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	lastPct int
}

func (p *printer) show(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	showMessage(fmt.Sprintf(format, a...), p.w)
}

func (p *printer) BoardInitialized() { p.show("New board.") }

func (p *printer) MoveFinished(m *move.Move, mover board.Color) {
	p.show("%v played %v", mover, m.ShortDescription())
}

func (p *printer) MoveUndone(m *move.Move, mover board.Color) {
	p.show("Took back %v's %v", mover, m.ShortDescription())
}

func (p *printer) GameFinished(loser *game.Player, s game.State) {
	if loser == nil {
		p.show("Game over: %v", s)
		return
	}
	p.show("Game over: %v (%v loses)", s, loser)
}

func (p *printer) Progress(pct float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// every 10%
	step := int(pct * 10)
	if step == p.lastPct || step == 0 {
		p.lastPct = step
		return
	}
	p.lastPct = step
	if step < 10 {
		showMessage(fmt.Sprintf("thinking... %d%%", step*10), p.w)
	}
}

func (p *printer) PausedChanged(paused bool) {
	if paused {
		p.show("Paused.")
	} else {
		p.show("Unpaused.")
	}
}

func (p *printer) Alert(msg string) { p.show("!! %v", msg) }

func NewShellController(cfg *config.Config, prompt string) (*ShellController, error) {
	completer := NewShellCompleter(nil)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "/tmp/checkers-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		AutoComplete:        completer,
	})
	if err != nil {
		return nil, err
	}
	sc, err := newController(cfg, l.Stderr())
	if err != nil {
		l.Close()
		return nil, err
	}
	sc.l = l
	completer.sc = sc
	return sc, nil
}

// newController builds everything but the terminal.
func newController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	sc := &ShellController{config: cfg, out: out}
	if cfg.GetBool(config.ConfigRemoteEngine) {
		client, err := bot.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to bot: %w", err)
		}
		sc.client = client
		sc.engine = client
		log.Info().Str("channel", cfg.GetString(config.ConfigBotChannel)).Msg("using-remote-engine")
	} else {
		sc.engine = evaluator.New(cfg)
	}
	g, err := game.NewGame(cfg, sc.engine, &printer{w: out})
	if err != nil {
		sc.Close()
		return nil, err
	}
	sc.game = g
	if path := cfg.GetString(config.ConfigGameDBPath); path != "" {
		store, err := gamestore.Open(context.Background(), path)
		if err != nil {
			sc.Close()
			return nil, err
		}
		sc.store = store
	}
	return sc, nil
}

func (sc *ShellController) Close() {
	if sc.game != nil {
		sc.game.Close()
	}
	if sc.client != nil {
		sc.client.Close()
	}
	if sc.store != nil {
		if err := sc.store.Close(); err != nil {
			log.Err(err).Msg("closing-game-store")
		}
	}
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its arguments, and its
// -option value pairs.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}

	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit", "bye":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "move", "m":
		return sc.move(cmd)
	case "moves":
		return sc.moves(cmd)
	case "undo":
		return sc.undo(cmd)
	case "ai":
		return sc.ai(cmd)
	case "debug":
		return sc.debug(cmd)
	case "pause":
		return sc.pause(cmd)
	case "unpause":
		return sc.unpause(cmd)
	case "aivsai":
		return sc.aivsai(cmd)
	case "strategy":
		return sc.strategy(cmd)
	case "lookahead":
		return sc.lookahead(cmd)
	case "resign":
		return sc.resign(cmd)
	case "draw":
		return sc.draw(cmd)
	case "save":
		return sc.save(cmd)
	case "load":
		return sc.load(cmd)
	case "archive":
		return sc.archive(cmd)
	case "edit":
		return sc.edit(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "script":
		return sc.script(cmd)
	}
	return nil, fmt.Errorf("unknown command %q; try help", cmd.cmd)
}

// Execute runs one command line and returns what it printed.
func (sc *ShellController) Execute(line string) (string, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return "", err
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.message, nil
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer func() { sig <- syscall.SIGINT }()
	defer sc.l.Close()
	defer sc.Close()

	sc.showMessage(sc.game.ToDisplayText())
	sc.showMessage("Type new to start a game, or help.")
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out, err := sc.Execute(line)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if out != "" {
			sc.showMessage(out)
		}
	}
	log.Debug().Msg("exiting-readline-loop")
}

package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/evaluator"
	"github.com/domino14/checkers/move"
	"github.com/domino14/checkers/movegen"
	"github.com/domino14/checkers/strategy"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigAIMoveDelay, 0)
	cfg.Set(config.ConfigPlaybackDelay, 0)
	return cfg
}

// fakeEngine plays the first legal move. If hold is set, evaluations wait
// for it to be closed.
type fakeEngine struct {
	mu        sync.Mutex
	hold      chan struct{}
	calls     []board.Color
	focus     []*board.Location
	drawFor   []board.Color
	projected *move.Move
	draw      bool
}

func (e *fakeEngine) wait(ctx context.Context) error {
	if e.hold == nil {
		return nil
	}
	select {
	case <-e.hold:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *fakeEngine) Evaluate(ctx context.Context, req evaluator.Request, progress func(float64)) (*evaluator.Response, error) {
	e.mu.Lock()
	e.calls = append(e.calls, req.Player)
	e.focus = append(e.focus, req.DebugFocusSquare)
	e.mu.Unlock()
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	moves := movegen.PossibleMoves(req.Board, req.Player)
	if len(moves) == 0 {
		return nil, evaluator.ErrNoMoves
	}
	progress(0)
	progress(1)
	return &evaluator.Response{Move: moves[0], ProjectedOpponentMove: e.projected}, nil
}

func (e *fakeEngine) EvaluateDraw(ctx context.Context, req evaluator.Request) (bool, error) {
	e.mu.Lock()
	e.drawFor = append(e.drawFor, req.Player)
	e.mu.Unlock()
	if err := e.wait(ctx); err != nil {
		return false, err
	}
	return e.draw, nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

type recorder struct {
	NopListener
	mu       sync.Mutex
	moves    []string
	paused   []bool
	alerts   []string
	finished []string
	inits    int
	onMove   func(n int)
}

func (r *recorder) BoardInitialized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
}

func (r *recorder) MoveFinished(m *move.Move, c board.Color) {
	r.mu.Lock()
	r.moves = append(r.moves, fmt.Sprintf("%v %v", c, m.ShortDescription()))
	n, cb := len(r.moves), r.onMove
	r.mu.Unlock()
	if cb != nil {
		cb(n)
	}
}

func (r *recorder) GameFinished(loser *Player, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	who := "nobody"
	if loser != nil {
		who = loser.Color.String()
	}
	r.finished = append(r.finished, who+" "+s.String())
}

func (r *recorder) PausedChanged(p bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = append(r.paused, p)
}

func (r *recorder) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
}

func newTestGame(t *testing.T, e Engine) (*Game, *recorder) {
	r := &recorder{}
	g, err := NewGame(testConfig(), e, r)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(g.Close)
	return g, r
}

func mustMove(s string) *move.Move {
	m, err := move.Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func TestNoMovesEndsGame(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{}
	g, r := newTestGame(t, e)
	g.SetPosition(board.MustBoard(board.LastPieceFrozen), board.Black)

	res := g.Move(mustMove("5,4-3,2"))
	is.True(res.OK)
	g.Wait()
	is.Equal(g.State(), StateOverNoMoves)
	is.Equal(r.finished, []string{"red GAME_OVER_NO_MOVES"})
	is.Equal(e.callCount(), 0)

	res = g.Move(mustMove("7,6-6,5"))
	is.Equal(res.Reason, ReasonFinished)
}

func TestLastPieceCapturedEndsGame(t *testing.T) {
	is := is.New(t)
	g, r := newTestGame(t, &fakeEngine{})
	g.SetPosition(board.MustBoard(board.SingleJump), board.Black)
	is.True(g.Move(mustMove("3,4-1,2")).OK)
	is.Equal(g.State(), StateOverNoPieces)
	is.Equal(r.finished, []string{"red GAME_OVER_NO_PIECES"})
}

func TestMoveRejected(t *testing.T) {
	is := is.New(t)
	g, _ := newTestGame(t, &fakeEngine{})
	is.Equal(g.Move(mustMove("5,0-4,1")).Reason, ReasonNotStarted)

	g.SetPosition(board.MustBoard(board.SingleJump), board.Black)
	res := g.Move(mustMove("3,4-2,5"))
	is.Equal(res.Reason, ReasonMustJump)
	is.Equal(len(res.ForcedJumps), 1)
	is.Equal(res.ForcedJumps[0].ShortDescription(), "3,4-1,2")

	// the red piece belongs to the engine
	is.Equal(g.Move(mustMove("2,3-3,2")).Reason, ReasonNotYourTurn)
	is.Equal(g.Move(mustMove("3,4-4,5")).Reason, ReasonInvalidMove)
	is.Equal(g.Move(mustMove("4,1-3,2")).Reason, ReasonInvalidMove)
	is.Equal(len(g.History()), 0)
}

func TestEngineReplies(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{}
	g, r := newTestGame(t, e)
	g.Start()
	is.Equal(e.callCount(), 0)
	is.True(g.Move(mustMove("5,0-4,1")).OK)
	g.Wait()
	is.Equal(len(g.History()), 2)
	is.Equal(e.calls, []board.Color{board.Red})
	is.Equal(g.NextMover(), board.Black)
	is.Equal(r.moves[0], "black 5,0-4,1")
	is.Equal(r.inits, 1)
}

func TestDebugFocusClearedAfterMove(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{}
	g, _ := newTestGame(t, e)
	g.Start()
	_, ok := g.DebugFocus()
	is.True(!ok)

	g.DebugMovesFor(board.Loc(5, 2))
	loc, ok := g.DebugFocus()
	is.True(ok)
	is.Equal(loc, board.Loc(5, 2))
	g.MoveForMe()
	g.Wait()
	// the engine played black's move with the focus, then red's without it
	is.Equal(e.calls, []board.Color{board.Black, board.Red})
	is.Equal(*e.focus[0], board.Loc(5, 2))
	is.True(e.focus[1] == nil)
	_, ok = g.DebugFocus()
	is.True(!ok)

	// a human move drops the focus too
	g.DebugMovesFor(board.Loc(5, 4))
	next := g.PossibleMoves()[0]
	is.True(g.Move(next).OK)
	g.Wait()
	is.True(e.focus[2] == nil)

	g.DebugMovesFor(board.Loc(5, 4))
	g.Start()
	_, ok = g.DebugFocus()
	is.True(!ok)
}

func TestRestartSwapsColors(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{}
	g, _ := newTestGame(t, e)
	g.Restart(true)
	g.Wait()
	is.Equal(g.Player().Color, board.Red)
	is.Equal(g.Opponent().Color, board.Black)
	// black is now the engine, and moves first from the top
	is.Equal(e.calls, []board.Color{board.Black})
	h := g.History()
	is.Equal(len(h), 1)
	is.Equal(h[0].Start().Row, 2)
}

func TestCommandsQueuedWhileBusy(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{hold: make(chan struct{})}
	g, r := newTestGame(t, e)
	g.Start()
	is.True(g.Move(mustMove("5,0-4,1")).OK)
	is.True(g.Busy())

	g.Pause()
	is.NoErr(g.SetStrategy(board.Red, strategy.Strategy001Name))
	g.Unpause()
	is.Equal(g.Opponent().Strategy, strategy.Strategy005Name)
	is.True(!g.Paused())
	is.Equal(g.Move(mustMove("5,2-4,3")).Reason, ReasonBusy)
	is.True(errors.Is(g.Undo(), ErrBusy))

	close(e.hold)
	g.Wait()
	is.Equal(g.Opponent().Strategy, strategy.Strategy001Name)
	is.Equal(r.paused, []bool{true, false})
	is.True(!g.Busy())
	is.Equal(len(g.History()), 2)
}

func TestUndoPauses(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{}
	g, r := newTestGame(t, e)
	g.Start()
	is.True(g.Move(mustMove("5,0-4,1")).OK)
	g.Wait()

	is.NoErr(g.Undo())
	is.Equal(g.NextMover(), board.Red)
	is.True(g.Paused())
	is.Equal(r.alerts, []string{"Unpause the game to continue playing."})
	is.NoErr(g.Undo())
	is.Equal(g.NextMover(), board.Black)
	is.True(g.Board().Equal(board.NewStartingBoard(board.Red)))
	is.True(errors.Is(g.Undo(), ErrNothingToUndo))
	is.Equal(len(r.alerts), 1)

	// black is human, so unpausing does not ask the engine
	g.Unpause()
	g.Wait()
	is.Equal(e.callCount(), 1)

	is.True(g.Move(mustMove("5,0-4,1")).OK)
	g.Wait()
	is.NoErr(g.Undo())
	g.Unpause()
	g.Wait()
	is.Equal(e.callCount(), 3)
	is.Equal(len(g.History()), 2)
}

func TestResign(t *testing.T) {
	is := is.New(t)
	g, r := newTestGame(t, &fakeEngine{})
	is.True(errors.Is(g.Resign(), ErrNotInProgress))
	g.Start()
	is.NoErr(g.Resign())
	is.Equal(g.State(), StateOverResigned)
	is.True(g.Player().Resigned)
	is.Equal(r.finished, []string{"black GAME_OVER_RESIGNED"})
	is.True(errors.Is(g.Resign(), ErrNotInProgress))
}

func TestSuggestDraw(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{}
	g, r := newTestGame(t, e)
	g.Start()
	is.NoErr(g.SuggestDraw())
	g.Wait()
	is.Equal(g.State(), StateInProgress)
	is.Equal(r.alerts, []string{"How about we keep playing? You can also resign."})
	is.Equal(e.drawFor, []board.Color{board.Black})

	e.draw = true
	is.NoErr(g.SuggestDraw())
	g.Wait()
	is.Equal(g.State(), StateOverDraw)
	is.Equal(r.finished, []string{"nobody GAME_OVER_DRAW"})
}

func TestSurprise(t *testing.T) {
	is := is.New(t)
	e := &fakeEngine{projected: mustMove("5,6-4,7")}
	g, _ := newTestGame(t, e)
	g.Start()
	is.True(g.Move(mustMove("5,0-4,1")).OK)
	g.Wait()
	is.Equal(g.Surprises(), 0)
	var played *move.Move
	for _, m := range g.PossibleMoves() {
		if !m.Equal(e.projected) {
			played = m
			break
		}
	}
	is.True(g.Move(played).OK)
	g.Wait()
	is.Equal(g.Surprises(), 1)
}

func TestSaveAndLoad(t *testing.T) {
	is := is.New(t)
	g, _ := newTestGame(t, &fakeEngine{})
	g.Start()
	for i := 0; i < 3; i++ {
		moves := g.PossibleMoves()
		is.True(g.Move(moves[len(moves)-1]).OK)
		g.Wait()
	}
	data, err := g.Save(false)
	is.NoErr(err)

	g2, r2 := newTestGame(t, &fakeEngine{})
	is.NoErr(g2.Load(data))
	g2.Wait()
	is.True(!g2.InPlayback())
	is.True(g2.Paused())
	is.Equal(len(r2.moves), 6)
	is.True(g2.Board().Equal(g.Board()))
	is.Equal(g2.NextMover(), g.NextMover())
	is.Equal(len(g2.History()), 6)
	for i, m := range g2.History() {
		is.True(m.Equal(g.History()[i]))
	}

	snap, err := g.Save(true)
	is.NoErr(err)
	var f File
	is.NoErr(json.Unmarshal(snap, &f))
	is.True(f.Snapshot)
	is.Equal(len(f.Moves), 0)

	g3, _ := newTestGame(t, &fakeEngine{})
	is.NoErr(g3.Load(snap))
	is.True(g3.Board().Equal(g.Board()))
	is.Equal(g3.NextMover(), board.Black)
	is.Equal(len(g3.History()), 0)
	is.True(g3.Paused())

	// a position saved after moves from it keeps the position
	is.True(g3.Move(g3.PossibleMoves()[0]).OK)
	again, err := g3.Save(false)
	is.NoErr(err)
	g4, _ := newTestGame(t, &fakeEngine{})
	is.NoErr(g4.Load(again))
	g4.Wait()
	is.True(g4.Board().Equal(g3.Board()))
}

func TestLoadWithoutOpponent(t *testing.T) {
	is := is.New(t)
	g, _ := newTestGame(t, &fakeEngine{})
	is.NoErr(g.Load([]byte(`{"version":"0.01","player":{"pieceType":1,"strategy":"Strategy002","resigned":false}}`)))
	is.Equal(g.Opponent(), Player{Color: board.Black, Strategy: strategy.Strategy002Name})
	is.True(g.Player().Human)
	b := g.Board()
	// black is on top
	is.True(!b.BlackMovesUp())
	is.Equal(b.PieceCount(board.Black), 12)
}

func TestLoadMalformed(t *testing.T) {
	is := is.New(t)
	g, _ := newTestGame(t, &fakeEngine{})
	g.Start()
	is.True(g.Move(mustMove("5,0-4,1")).OK)
	g.Wait()
	before := g.Board()
	for _, data := range []string{
		`not json`,
		`{"version":"0.01","player":{"pieceType":7,"strategy":"Strategy001"}}`,
		`{"version":"0.01","player":{"pieceType":0},"opponent":{"pieceType":0}}`,
		`{"version":"0.01","player":{"pieceType":0},"board":{"squares":[1,2]}}`,
	} {
		err := g.Load([]byte(data))
		is.True(err != nil)
	}
	is.True(errors.Is(g.Load([]byte(`{]`)), ErrMalformedGame))
	is.True(g.Board().Equal(before))
	is.Equal(len(g.History()), 2)
	is.Equal(g.State(), StateInProgress)
}

func TestPlaybackError(t *testing.T) {
	is := is.New(t)
	g, r := newTestGame(t, &fakeEngine{})
	data, err := json.Marshal(File{
		Version: FileVersion,
		Player:  Player{Color: board.Black, Strategy: strategy.Strategy001Name, Human: true},
		Moves:   []*move.Move{mustMove("5,0-4,1"), mustMove("4,3-3,2")},
	})
	is.NoErr(err)
	is.NoErr(g.Load(data))
	g.Wait()
	is.Equal(len(g.History()), 1)
	is.True(!g.InPlayback())
	is.Equal(len(r.alerts), 1)
	is.Equal(r.alerts[0][:31], "Error replaying game at move 2:")
}

func TestAIVsAI(t *testing.T) {
	is := is.New(t)
	ev := evaluator.New(config.DefaultConfig())
	g, r := newTestGame(t, ev)
	g.SetLookahead(evaluator.Plies(2))
	r.onMove = func(n int) {
		if n == 6 {
			g.Pause()
		}
	}
	g.SetAIVsAI(true)
	g.Start()
	g.Wait()
	n := len(g.History())
	is.True(n == 6 || n == 7)
	is.True(g.Paused())
	is.Equal(g.Surprises(), 0)

	// moves alternate colors from black
	for i, m := range r.moves {
		if i%2 == 0 {
			is.Equal(m[:5], "black")
		} else {
			is.Equal(m[:3], "red")
		}
	}
}

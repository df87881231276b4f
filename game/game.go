// Package game runs a game of checkers between two players. Either side
// can be a human, who moves through Move, or the engine, which is asked for
// a move whenever it is that side's turn.
//
// A Game is safe for concurrent use. Engine evaluations and the delays
// between AI or playback moves run on their own goroutines; everything
// they change is changed under the game lock, and listener events are
// delivered after the lock is released.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/evaluator"
	"github.com/domino14/checkers/move"
	"github.com/domino14/checkers/movegen"
	"github.com/domino14/checkers/strategy"
)

var (
	ErrBusy            = errors.New("game is busy")
	ErrNotInProgress   = errors.New("game is not in progress")
	ErrNothingToUndo   = errors.New("no moves to undo")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Engine picks moves and answers draw offers. *evaluator.Evaluator is the
// local implementation.
type Engine interface {
	Evaluate(ctx context.Context, req evaluator.Request, progress func(float64)) (*evaluator.Response, error)
	EvaluateDraw(ctx context.Context, req evaluator.Request) (bool, error)
}

// Reasons a move is refused.
const (
	ReasonFinished    = "finished"
	ReasonNotStarted  = "not started"
	ReasonBusy        = "busy"
	ReasonInvalidMove = "invalid move"
	ReasonMustJump    = "must jump"
	ReasonNotYourTurn = "not your turn"
)

type MoveResult struct {
	OK     bool
	Reason string
	// ForcedJumps lists the legal captures when the move was refused
	// because one of them has to be played.
	ForcedJumps []*move.Move
}

type historyEntry struct {
	move  *move.Move
	undo  movegen.Undo
	mover board.Color
}

// Game is one game between Player and Opponent. By default the player is
// a human playing black from the bottom of the board.
type Game struct {
	mu       sync.Mutex
	engine   Engine
	weights  *strategy.Weights
	listener Listener
	pending  []func(Listener)

	aiDelay       time.Duration
	playbackDelay time.Duration
	lookahead     *int

	board *board.Board
	// initialBoard is the position the game was loaded with, if it did not
	// start from the standard setup.
	initialBoard *board.Board
	initialNext  board.Color

	player    Player
	opponent  Player
	nextMover board.Color
	state     State
	history   []historyEntry
	projected *move.Move
	surprises int
	// debugFocus restricts the engine's next move to the piece there.
	debugFocus *board.Location

	busy          bool
	paused        bool
	aiVsAI        bool
	playback      bool
	playbackMoves []*move.Move
	playbackIndex int
	queue         []func()

	// evalSeq invalidates engine results; epoch invalidates scheduled
	// moves.
	evalSeq    int
	epoch      int
	cancelEval context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGame creates a game that has not started. A nil listener is allowed.
func NewGame(cfg *config.Config, engine Engine, l Listener) (*Game, error) {
	w, err := strategy.LoadWeights(cfg)
	if err != nil {
		return nil, err
	}
	ps, opps := cfg.GetString(config.ConfigDefaultPlayerStrategy), cfg.GetString(config.ConfigDefaultOpponentStrategy)
	for _, s := range []string{ps, opps} {
		if !lo.Contains(strategy.Names, s) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, s)
		}
	}
	if l == nil {
		l = NopListener{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		engine:        engine,
		weights:       w,
		listener:      l,
		aiDelay:       cfg.GetDuration(config.ConfigAIMoveDelay),
		playbackDelay: cfg.GetDuration(config.ConfigPlaybackDelay),
		player:        Player{Color: board.Black, Strategy: ps, Human: true},
		opponent:      Player{Color: board.Red, Strategy: opps},
		nextMover:     board.Black,
		board:         board.NewStartingBoard(board.Red),
		ctx:           ctx,
		cancel:        cancel,
	}
	return g, nil
}

func (g *Game) lock() {
	g.mu.Lock()
}

// unlock releases the game and delivers the events queued while it was
// held.
func (g *Game) unlock() {
	events := g.pending
	g.pending = nil
	g.mu.Unlock()
	for _, e := range events {
		e(g.listener)
	}
}

func (g *Game) emit(e func(Listener)) {
	g.pending = append(g.pending, e)
}

func (g *Game) alert(msg string) {
	g.emit(func(l Listener) { l.Alert(msg) })
}

func (g *Game) playerFor(c board.Color) *Player {
	if g.player.Color == c {
		return &g.player
	}
	return &g.opponent
}

func (g *Game) isAI(p *Player) bool {
	return g.aiVsAI || !p.Human
}

// Start sets up a new game and, if black is played by the engine, asks it
// for the first move.
func (g *Game) Start() {
	g.lock()
	defer g.unlock()
	g.start()
}

// Restart starts over, with the players trading colors if swap is set.
func (g *Game) Restart(swap bool) {
	g.lock()
	defer g.unlock()
	if swap {
		g.player.Color, g.opponent.Color = g.opponent.Color, g.player.Color
	}
	g.start()
}

func (g *Game) start() {
	g.abort()
	g.state = StateInProgress
	g.stopPlayback()
	g.setPaused(false)
	g.queue = nil
	g.history = nil
	g.projected = nil
	g.initialBoard = nil
	g.debugFocus = nil
	g.player.Resigned = false
	g.opponent.Resigned = false
	g.board.SetTopPlayer(g.opponent.Color)
	g.board.InitializePieces()
	g.nextMover = board.Black
	log.Info().Str("player", g.player.String()).Str("opponent", g.opponent.String()).
		Msg("game-started")
	g.emit(func(l Listener) { l.BoardInitialized() })
	g.continuePlay()
}

// SetPosition replaces the board and starts a game from it with next to
// move. The game is left paused.
func (g *Game) SetPosition(b *board.Board, next board.Color) {
	g.lock()
	defer g.unlock()
	g.abort()
	g.stopPlayback()
	g.queue = nil
	g.history = nil
	g.projected = nil
	g.board = b.Clone()
	g.initialBoard = b.Clone()
	g.initialNext = next
	g.nextMover = next
	g.state = StateInProgress
	g.emit(func(l Listener) { l.BoardInitialized() })
	g.setPaused(true)
}

// Move plays a human move for the side to move.
func (g *Game) Move(m *move.Move) MoveResult {
	g.lock()
	defer g.unlock()
	switch {
	case g.state == StateNotStarted:
		return MoveResult{Reason: ReasonNotStarted}
	case g.state.Finished():
		return MoveResult{Reason: ReasonFinished}
	case g.busy || g.playback:
		return MoveResult{Reason: ReasonBusy}
	}
	c, ok := g.board.SquareAt(m.Start()).PieceColor()
	if !ok || !movegen.IsValidMove(g.board, m) {
		return MoveResult{Reason: ReasonInvalidMove}
	}
	if c != g.nextMover || g.isAI(g.playerFor(c)) {
		return MoveResult{Reason: ReasonNotYourTurn}
	}
	legal := movegen.PossibleMoves(g.board, c)
	if !lo.ContainsBy(legal, m.Equal) {
		jumps := movegen.ForcedJumps(g.board, c)
		if len(jumps) == 0 {
			return MoveResult{Reason: ReasonInvalidMove}
		}
		return MoveResult{Reason: ReasonMustJump, ForcedJumps: jumps}
	}
	if err := g.executeMove(c, m, nil); err != nil {
		return MoveResult{Reason: ReasonInvalidMove}
	}
	return MoveResult{OK: true}
}

func (g *Game) executeMove(c board.Color, m *move.Move, projected *move.Move) error {
	g.debugFocus = nil
	u, err := movegen.Execute(g.board, m)
	if err != nil {
		log.Err(err).Str("mover", c.String()).Str("move", m.String()).
			Str("board", g.board.Hash()).Msg("execute-failed")
		g.alert(fmt.Sprintf("Could not play %v: %v", m.ShortDescription(), err))
		return err
	}
	g.registerSurprise(m)
	g.projected = projected
	g.history = append(g.history, historyEntry{move: m, undo: u, mover: c})
	g.nextMover = c.Opponent()
	log.Debug().Str("mover", c.String()).Str("move", m.ShortDescription()).Msg("move-played")
	g.emit(func(l Listener) { l.MoveFinished(m, c) })
	g.postExecute(c)
	return nil
}

func (g *Game) registerSurprise(m *move.Move) {
	if g.projected == nil || g.aiVsAI || g.playback || g.projected.Equal(m) {
		return
	}
	g.surprises++
	log.Info().Str("expected", g.projected.ShortDescription()).
		Str("played", m.ShortDescription()).Msg("surprise")
}

func (g *Game) postExecute(mover board.Color) {
	if g.playback {
		return
	}
	opp := mover.Opponent()
	switch {
	case g.board.PieceCount(mover) == 0:
		g.finish(g.playerFor(mover), StateOverNoPieces)
	case g.board.PieceCount(opp) == 0:
		g.finish(g.playerFor(opp), StateOverNoPieces)
	case !movegen.HasMoves(g.board, opp):
		g.finish(g.playerFor(opp), StateOverNoMoves)
	}
	if g.state.Finished() {
		return
	}
	g.drainQueue()
	g.continuePlay()
}

// continuePlay asks the engine for a move if it is an AI side's turn.
func (g *Game) continuePlay() {
	if g.paused || g.busy || g.playback || g.state != StateInProgress {
		return
	}
	next := g.playerFor(g.nextMover)
	if !g.isAI(next) {
		return
	}
	if g.aiVsAI && len(g.history) > 0 {
		g.after(g.aiDelay, func() {
			if !g.paused {
				g.pickMove(g.nextMover)
			}
		})
		return
	}
	g.pickMove(g.nextMover)
}

// after runs fn under the lock once d has passed, unless the game moved on
// in the meantime.
func (g *Game) after(d time.Duration, fn func()) {
	epoch := g.epoch
	g.wg.Add(1)
	time.AfterFunc(d, func() {
		defer g.wg.Done()
		g.lock()
		defer g.unlock()
		if epoch != g.epoch {
			return
		}
		fn()
	})
}

func (g *Game) request(c board.Color) evaluator.Request {
	p, o := g.playerFor(c), g.playerFor(c.Opponent())
	return evaluator.Request{
		Board:            g.board.Clone(),
		Player:           c,
		Strategy:         strategy.New(p.Strategy, g.weights),
		OpponentStrategy: strategy.New(o.Strategy, g.weights),
		MaxLookahead:     g.lookahead,
		DebugFocusSquare: g.debugFocus,
	}
}

func (g *Game) beginEvaluation() (int, context.Context) {
	ctx, cancel := context.WithCancel(g.ctx)
	g.busy = true
	g.cancelEval = cancel
	g.wg.Add(1)
	return g.evalSeq, ctx
}

// endEvaluation returns false if the result of the evaluation numbered
// seq is no longer wanted.
func (g *Game) endEvaluation(seq int) bool {
	if seq != g.evalSeq {
		return false
	}
	g.cancelEval()
	g.cancelEval = nil
	g.busy = false
	return true
}

// abort drops any evaluation in flight and any scheduled move.
func (g *Game) abort() {
	if g.cancelEval != nil {
		g.cancelEval()
		g.cancelEval = nil
	}
	g.busy = false
	g.evalSeq++
	g.epoch++
}

func (g *Game) pickMove(c board.Color) {
	if g.busy || g.state != StateInProgress {
		return
	}
	req := g.request(c)
	seq, ctx := g.beginEvaluation()
	last := -1
	progress := func(f float64) {
		pct := int(f * 100)
		if pct == last {
			return
		}
		last = pct
		g.listener.Progress(f)
	}
	log.Debug().Str("mover", c.String()).Str("strategy", req.Strategy.Name()).Msg("picking-move")
	go func() {
		defer g.wg.Done()
		resp, err := g.engine.Evaluate(ctx, req, progress)
		g.lock()
		defer g.unlock()
		if !g.endEvaluation(seq) {
			log.Debug().Str("mover", c.String()).Msg("discarding-stale-evaluation")
			return
		}
		switch {
		case errors.Is(err, evaluator.ErrNoMoves):
			g.finish(g.playerFor(c), StateOverNoMoves)
		case err != nil:
			log.Err(err).Str("mover", c.String()).Str("board", req.Board.Hash()).Msg("evaluation-failed")
			g.alert(fmt.Sprintf("The engine could not pick a move: %v", err))
			g.drainQueue()
		default:
			if g.executeMove(c, resp.Move, resp.ProjectedOpponentMove) != nil {
				g.drainQueue()
			}
		}
	}()
}

func (g *Game) finish(loser *Player, s State) {
	g.abort()
	g.state = s
	var l *Player
	ev := log.Info().Str("state", s.String())
	if loser != nil {
		cp := *loser
		l = &cp
		ev = ev.Str("loser", cp.Color.String())
	}
	ev.Int("moves", len(g.history)).Msg("game-finished")
	g.emit(func(li Listener) { li.GameFinished(l, s) })
}

// Undo takes back the last move. Outside playback the game is paused so
// the engine does not immediately play again.
func (g *Game) Undo() error {
	g.lock()
	defer g.unlock()
	if g.busy {
		return ErrBusy
	}
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}
	e := g.history[len(g.history)-1]
	if err := movegen.Unexecute(g.board, e.move, e.undo); err != nil {
		log.Err(err).Str("move", e.move.String()).Str("board", g.board.Hash()).Msg("undo-failed")
		return err
	}
	g.history = g.history[:len(g.history)-1]
	g.state = StateInProgress
	g.player.Resigned = false
	g.opponent.Resigned = false
	g.nextMover = e.mover
	g.projected = nil
	g.emit(func(l Listener) { l.MoveUndone(e.move, e.mover) })
	if g.playback {
		g.playbackIndex--
		return nil
	}
	g.epoch++
	if !g.paused {
		g.setPaused(true)
		g.alert("Unpause the game to continue playing.")
	}
	return nil
}

// Resign concedes the game for the human player.
func (g *Game) Resign() error {
	g.lock()
	defer g.unlock()
	if g.state != StateInProgress {
		return ErrNotInProgress
	}
	g.player.Resigned = true
	g.finish(&g.player, StateOverResigned)
	return nil
}

// SuggestDraw offers the opponent a draw. The answer arrives as a
// GameFinished event if accepted, or an alert if not.
func (g *Game) SuggestDraw() error {
	g.lock()
	defer g.unlock()
	if g.state != StateInProgress {
		return ErrNotInProgress
	}
	if g.busy || g.playback {
		return ErrBusy
	}
	// the offer is judged from the offering side's position, with its
	// strategy
	req := g.request(g.player.Color)
	seq, ctx := g.beginEvaluation()
	go func() {
		defer g.wg.Done()
		accept, err := g.engine.EvaluateDraw(ctx, req)
		g.lock()
		defer g.unlock()
		if !g.endEvaluation(seq) {
			return
		}
		switch {
		case err != nil:
			log.Err(err).Msg("draw-evaluation-failed")
			g.alert(fmt.Sprintf("Could not consider a draw: %v", err))
		case accept:
			g.finish(nil, StateOverDraw)
			return
		default:
			g.alert("How about we keep playing? You can also resign.")
		}
		g.drainQueue()
	}()
	return nil
}

// command runs fn now, or after the evaluation in flight if the game is
// busy. Queued commands run in the order they were issued.
func (g *Game) command(fn func()) {
	g.lock()
	defer g.unlock()
	if g.busy {
		g.queue = append(g.queue, fn)
		log.Debug().Int("queued", len(g.queue)).Msg("command-queued")
		return
	}
	fn()
}

func (g *Game) drainQueue() {
	for len(g.queue) > 0 && !g.busy {
		fn := g.queue[0]
		g.queue = g.queue[1:]
		fn()
	}
}

func (g *Game) setPaused(p bool) {
	if g.paused == p {
		return
	}
	g.paused = p
	if p {
		g.epoch++
	}
	g.emit(func(l Listener) { l.PausedChanged(p) })
}

func (g *Game) Pause() {
	g.command(func() { g.setPaused(true) })
}

// Unpause resumes play, or playback if a game is being replayed.
func (g *Game) Unpause() {
	g.command(func() {
		g.setPaused(false)
		if g.playback {
			g.playbackNext()
			return
		}
		g.continuePlay()
	})
}

// SetAIVsAI hands both sides to the engine, or gives the player back.
func (g *Game) SetAIVsAI(on bool) {
	g.command(func() {
		g.aiVsAI = on
		log.Info().Bool("ai-vs-ai", on).Msg("mode-changed")
		g.continuePlay()
	})
}

// SetStrategy changes the strategy of the side playing c.
func (g *Game) SetStrategy(c board.Color, name string) error {
	if !lo.Contains(strategy.Names, name) {
		return fmt.Errorf("%w: %v", ErrUnknownStrategy, name)
	}
	g.command(func() {
		g.playerFor(c).Strategy = name
		log.Info().Str("color", c.String()).Str("strategy", name).Msg("strategy-changed")
	})
	return nil
}

// MoveForMe has the engine play the next move for whoever is to move.
func (g *Game) MoveForMe() {
	g.command(func() {
		if !g.playback {
			g.pickMove(g.nextMover)
		}
	})
}

// SetLookahead sets the number of plies the engine looks ahead. Nil means
// the configured default.
func (g *Game) SetLookahead(plies *int) {
	g.lock()
	defer g.unlock()
	g.lookahead = plies
}

// DebugMovesFor makes the engine consider only moves of the piece at loc
// when it picks the next move. The focus is dropped once any move is played.
func (g *Game) DebugMovesFor(loc board.Location) {
	g.lock()
	defer g.unlock()
	l := loc
	g.debugFocus = &l
	log.Debug().Str("focus", loc.String()).Msg("debug-focus-set")
}

// DebugFocus returns the square set by DebugMovesFor, if any.
func (g *Game) DebugFocus() (board.Location, bool) {
	g.lock()
	defer g.unlock()
	if g.debugFocus == nil {
		return board.Location{}, false
	}
	return *g.debugFocus, true
}

// Wait blocks until no evaluation or scheduled move is outstanding.
func (g *Game) Wait() {
	g.wg.Wait()
}

// Close stops the game and waits for its goroutines.
func (g *Game) Close() {
	g.lock()
	g.abort()
	g.stopPlayback()
	g.cancel()
	g.unlock()
	g.wg.Wait()
}

func (g *Game) Board() *board.Board {
	g.lock()
	defer g.unlock()
	return g.board.Clone()
}

func (g *Game) State() State {
	g.lock()
	defer g.unlock()
	return g.state
}

func (g *Game) NextMover() board.Color {
	g.lock()
	defer g.unlock()
	return g.nextMover
}

func (g *Game) Player() Player {
	g.lock()
	defer g.unlock()
	return g.player
}

func (g *Game) Opponent() Player {
	g.lock()
	defer g.unlock()
	return g.opponent
}

// History returns the moves played so far.
func (g *Game) History() []*move.Move {
	g.lock()
	defer g.unlock()
	return lo.Map(g.history, func(e historyEntry, _ int) *move.Move { return e.move })
}

// PossibleMoves returns the legal moves for the side to move.
func (g *Game) PossibleMoves() []*move.Move {
	g.lock()
	defer g.unlock()
	return movegen.PossibleMoves(g.board, g.nextMover)
}

func (g *Game) Busy() bool {
	g.lock()
	defer g.unlock()
	return g.busy
}

func (g *Game) Paused() bool {
	g.lock()
	defer g.unlock()
	return g.paused
}

func (g *Game) AIVsAI() bool {
	g.lock()
	defer g.unlock()
	return g.aiVsAI
}

func (g *Game) InPlayback() bool {
	g.lock()
	defer g.unlock()
	return g.playback
}

// Surprises counts the human moves that differed from the reply the engine
// projected.
func (g *Game) Surprises() int {
	g.lock()
	defer g.unlock()
	return g.surprises
}

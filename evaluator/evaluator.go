// Package evaluator searches a bounded number of plies ahead for the best
// move. Each candidate move is played on its own copy of the board, the
// opponent's best reply is projected with the opponent's strategy, and the
// line continues until a side wins or the lookahead runs out. Candidates
// are ranked by the player's strategy.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/move"
	"github.com/domino14/checkers/movegen"
	"github.com/domino14/checkers/strategy"
)

var (
	ErrLookaheadExhausted = errors.New("lookahead exhausted")
	ErrNoMoves            = errors.New("no legal moves")
	ErrBadRequest         = errors.New("bad evaluation request")
)

// Request is a position to evaluate for Player.
type Request struct {
	Board    *board.Board
	Player   board.Color
	Strategy strategy.Strategy
	// OpponentStrategy projects the opponent's replies. Nil means the
	// opponent is assumed to think like the player.
	OpponentStrategy strategy.Strategy
	// MaxLookahead is in plies. Nil means the configured default. Zero is
	// only useful when there is a single legal move.
	MaxLookahead *int
	// DebugFocusSquare restricts the candidates to moves starting there,
	// and traces them.
	DebugFocusSquare *board.Location
}

// Plies is a convenience for setting Request.MaxLookahead.
func Plies(n int) *int {
	return &n
}

type Response struct {
	Move                  *move.Move
	ProjectedOpponentMove *move.Move
	Score                 float64
	Explanation           string
	// Future is the full projected line.
	Future *Future
}

type side struct {
	color    board.Color
	strategy strategy.Strategy
}

// Evaluator holds the lookahead bounds. It is safe to use from several
// goroutines at once; every evaluation searches its own copy of the board.
type Evaluator struct {
	defaultLookahead int
	lookaheadLimit   int
}

func New(cfg *config.Config) *Evaluator {
	return &Evaluator{
		defaultLookahead: cfg.GetInt(config.ConfigMaxLookahead),
		lookaheadLimit:   cfg.GetInt(config.ConfigMaxLookaheadLimit),
	}
}

// search is the state of one evaluation.
type search struct {
	ctx          context.Context
	maxLookahead int
	focus        *board.Location
}

// Evaluate returns the best move for req.Player. progress, if not nil, is
// called with a fraction in [0, 1] that never decreases, ending with 1
// exactly once on success. The request's board is never modified.
func (e *Evaluator) Evaluate(ctx context.Context, req Request, progress func(float64)) (*Response, error) {
	if req.Board == nil || req.Strategy == nil || !req.Player.Valid() {
		return nil, ErrBadRequest
	}
	plies := e.defaultLookahead
	if req.MaxLookahead != nil {
		plies = *req.MaxLookahead
	}
	if plies < 0 || plies > e.lookaheadLimit {
		return nil, fmt.Errorf("%w: max lookahead %d not in [0, %d]",
			ErrLookaheadExhausted, plies, e.lookaheadLimit)
	}
	player := side{color: req.Player, strategy: req.Strategy}
	opponent := side{color: req.Player.Opponent(), strategy: req.OpponentStrategy}
	if opponent.strategy == nil {
		opponent.strategy = req.Strategy
	}
	b := req.Board.Clone()
	if !movegen.HasMoves(b, player.color) {
		return nil, fmt.Errorf("%w for %v", ErrNoMoves, player.color)
	}

	log.Debug().Str("player", player.color.String()).Str("strategy", player.strategy.Name()).
		Str("opponent-strategy", opponent.strategy.Name()).Int("max-lookahead", plies).
		Msg("starting-evaluation")

	top := newTopLevelTask(progress)
	top.start()
	s := &search{ctx: ctx, maxLookahead: plies, focus: req.DebugFocusSquare}
	best, err := s.bestFuture(top, b, player, opponent, 0)
	if err != nil {
		return nil, err
	}
	top.finish()

	resp := &Response{
		Move:                  best.move,
		ProjectedOpponentMove: best.projectedOpponentMove,
		Score:                 best.score,
		Explanation:           best.String(),
		Future:                best,
	}
	log.Debug().Str("move", best.move.ShortDescription()).Float64("score", best.score).
		Msg("evaluation-complete")
	return resp, nil
}

func (s *search) bestFuture(parent progressParent, b *board.Board, player, opponent side,
	movesAhead int) (*Future, error) {

	pre := player.strategy.AssessBoard(b, player.color)
	return s.evaluatePossibleMoves(b, newRecursiveTask(parent), player, opponent, pre, movesAhead)
}

// evaluatePossibleMoves ranks player's moves on b. initial is the
// assessment of b with player to move; its move counts are filled in here
// for the strategies to read.
func (s *search) evaluatePossibleMoves(b *board.Board, task *RecursiveTask, player, opponent side,
	initial *strategy.Assessment, movesAhead int) (*Future, error) {

	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	moves := movegen.PossibleMoves(b, player.color)
	if movesAhead == 0 && s.focus != nil {
		focused := lo.Filter(moves, func(m *move.Move, _ int) bool {
			return m.Start() == *s.focus
		})
		if len(focused) > 0 {
			moves = focused
		} else {
			log.Warn().Str("focus", s.focus.String()).Msg("no-moves-from-focus-square")
		}
	}
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w for %v at ply %d", ErrNoMoves, player.color, movesAhead)
	}

	// picking the best takes up a slot in the progress so the parent does
	// not reach 1 before it is done
	pickBest := task.newLeaf()
	initial.PossibleMoves = len(moves)
	initial.PossibleMovesAreJumps = moves[0].CapturesPieces()

	if movesAhead == 0 && len(moves) == 1 {
		pickBest.complete()
		return &Future{s: s, player: player, opponent: opponent,
			preMoveAssessment: initial, move: moves[0]}, nil
	}

	futures := make([]*Future, len(moves))
	tasks := make([]*MultiStepTask, len(moves))
	for i, m := range moves {
		tasks[i] = task.newMultiStep(s.maxLookahead - movesAhead)
		futures[i] = &Future{s: s, player: player, opponent: opponent,
			preMoveAssessment: initial, move: m, movesAhead: movesAhead,
			trace: s.focus != nil && movesAhead == 0}
	}
	for i, f := range futures {
		if err := f.evaluateMove(tasks[i], b.Clone()); err != nil {
			return nil, err
		}
		if f.trace {
			log.Debug().Str("move", f.move.ShortDescription()).
				Str("disposition", f.postMoveDisposition.String()).Msg("traced-future")
		}
	}

	sfs := make([]strategy.Future, len(futures))
	for i, f := range futures {
		sfs[i] = f
	}
	best := player.strategy.PickBestFuture(sfs).(*Future)
	pickBest.complete()
	if movesAhead == 0 {
		log.Debug().Int("candidates", len(futures)).Float64("best-score", best.score).
			Msg("evaluated-moves")
	}
	return best, nil
}

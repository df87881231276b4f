// Package automatic plays the engine against itself: many games at once,
// every move logged to a CSV file, and a summary of the results.
package automatic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/evaluator"
	"github.com/domino14/checkers/game"
	"github.com/domino14/checkers/move"
	"github.com/domino14/checkers/movegen"
	"github.com/domino14/checkers/strategy"
)

const logHeader = "gameID,ply,color,strategy,move,score,blackpieces,redpieces\n"

// GameRunner plays games between two strategies. Black uses the first.
type GameRunner struct {
	ev          *evaluator.Evaluator
	weights     *strategy.Weights
	strategies  [2]string
	maxMoves    int
	randomPlies int
	logchan     chan<- string
}

// Result is a finished game. Draw is set when the game reached the move
// limit.
type Result struct {
	GameID string
	Winner board.Color
	Draw   bool
	State  game.State
	Plies  int
	File   game.File
}

// NewGameRunner makes a runner. logchan may be nil.
func NewGameRunner(logchan chan<- string, cfg *config.Config, black, red string) (*GameRunner, error) {
	w, err := strategy.LoadWeights(cfg)
	if err != nil {
		return nil, err
	}
	for _, s := range []string{black, red} {
		if !lo.Contains(strategy.Names, s) {
			return nil, fmt.Errorf("%w: %v", game.ErrUnknownStrategy, s)
		}
	}
	return &GameRunner{
		ev:          evaluator.New(cfg),
		weights:     w,
		strategies:  [2]string{black, red},
		maxMoves:    cfg.GetInt(config.ConfigAutoplayMaxMoves),
		randomPlies: cfg.GetInt(config.ConfigAutoplayRandomPlies),
		logchan:     logchan,
	}, nil
}

func (r *GameRunner) strategyFor(c board.Color) string {
	return r.strategies[c]
}

// PlayGame plays one game from the standard setup. The first plies are
// random, chosen with seed.
func (r *GameRunner) PlayGame(ctx context.Context, gameID string, seed [32]byte) (*Result, error) {
	b := board.NewStartingBoard(board.Red)
	rng := openingRNG(seed)
	next := board.Black
	var moves []*move.Move
	res := &Result{GameID: gameID}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(moves) >= r.maxMoves {
			res.Draw = true
			res.State = game.StateOverDraw
			break
		}
		legal := movegen.PossibleMoves(b, next)
		if len(legal) == 0 {
			res.Winner = next.Opponent()
			res.State = game.StateOverNoMoves
			break
		}
		var m *move.Move
		var score float64
		if len(moves) < r.randomPlies {
			m = legal[rng.Intn(len(legal))]
		} else {
			resp, err := r.ev.Evaluate(ctx, evaluator.Request{
				Board:            b,
				Player:           next,
				Strategy:         strategy.New(r.strategyFor(next), r.weights),
				OpponentStrategy: strategy.New(r.strategyFor(next.Opponent()), r.weights),
			}, nil)
			if err != nil {
				return nil, fmt.Errorf("game %v ply %d: %w", gameID, len(moves)+1, err)
			}
			m, score = resp.Move, resp.Score
		}
		if _, err := movegen.Execute(b, m); err != nil {
			return nil, fmt.Errorf("game %v ply %d: %w", gameID, len(moves)+1, err)
		}
		moves = append(moves, m)
		if r.logchan != nil {
			r.logchan <- fmt.Sprintf("%v,%d,%v,%v,%v,%.4f,%d,%d\n", gameID, len(moves), next,
				r.strategyFor(next), m.ShortDescription(), score,
				b.PieceCount(board.Black), b.PieceCount(board.Red))
		}
		if b.PieceCount(next.Opponent()) == 0 {
			res.Winner = next
			res.State = game.StateOverNoPieces
			break
		}
		next = next.Opponent()
	}

	res.Plies = len(moves)
	res.File = game.File{
		Version:  game.FileVersion,
		Player:   game.Player{Color: board.Black, Strategy: r.strategies[board.Black]},
		Opponent: &game.Player{Color: board.Red, Strategy: r.strategies[board.Red]},
		Moves:    moves,
	}
	log.Debug().Str("game", gameID).Int("plies", res.Plies).Str("state", res.State.String()).
		Bool("draw", res.Draw).Str("winner", res.Winner.String()).Msg("autoplay-game-over")
	return res, nil
}

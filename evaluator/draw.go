package evaluator

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/strategy"
)

// EvaluateDraw decides whether req.Player accepts a draw offer. It does when
// nothing changes anywhere in the best projected line: no captures, no
// kings, and no side running out of moves.
func (e *Evaluator) EvaluateDraw(ctx context.Context, req Request) (bool, error) {
	resp, err := e.Evaluate(ctx, req, nil)
	if errors.Is(err, ErrNoMoves) {
		// nothing to play means nothing to lose by accepting
		return true, nil
	}
	if err != nil {
		return false, err
	}
	// a lone forced move is not searched
	accept := resp.Future.postMoveAssessment != nil || !resp.Move.CapturesPieces()
	resp.Future.ForEachAssessment(func(_, _ *strategy.Assessment, d strategy.Disposition) {
		if d.HasChange() || d.NoMoves || d.NoOpponentMoves {
			accept = false
		}
	})
	log.Debug().Bool("accept", accept).Str("player", req.Player.String()).Msg("draw-evaluated")
	return accept, nil
}

package strategy

import (
	"fmt"

	"github.com/domino14/checkers/board"
)

// Strategy004 scores every ply of the line instead of only its end, and
// weights each ply by how likely it is to happen. A projected opponent
// reply is only a guess when the opponent had other quiet moves to choose
// from.
type Strategy004 struct {
	weights *Weights
}

func (s *Strategy004) Name() string { return Strategy004Name }

func (s *Strategy004) AssessBoard(b *board.Board, nextMover board.Color) *Assessment {
	return baseAssessment(b, nextMover)
}

// certaintyFunc returns how likely the opponent is to pick the projected
// reply out of n quiet moves.
type certaintyFunc func(n int) float64

func (s *Strategy004) certainty(n int) float64 {
	return 1 / float64(n)
}

// cumulativeComponents sums the per-ply score deltas, each scaled by the
// certainty so far, and averages all but material. The first ply's
// components are returned separately.
func cumulativeComponents(f Future, cf certaintyFunc,
	delta func(pre, post *Assessment, d Disposition) ScoreComponents) (ScoreComponents, ScoreComponents) {

	var cum, first ScoreComponents
	certainty := 1.0
	i := 0
	f.ForEachAssessment(func(pre, post *Assessment, d Disposition) {
		sc := delta(pre, post, d)
		if i%2 == 1 && pre.PossibleMoves > 1 && !pre.PossibleMovesAreJumps {
			certainty *= cf(pre.PossibleMoves)
		}
		if i == 0 {
			cum, first = sc, sc
		} else {
			sc.Multiply(certainty)
			cum.Add(sc)
		}
		i++
	})
	if i == 0 {
		panic("future with no assessments")
	}
	piece, king := cum.Piece, cum.King
	cum.Multiply(1 / float64(i))
	cum.Piece, cum.King = piece, king
	cum.Certainty = certainty
	return cum, first
}

func (s *Strategy004) components(f Future) ScoreComponents {
	c := f.Player()
	kw := kingWeight(c, f.PreMoveAssessment())
	sc, _ := cumulativeComponents(f, s.certainty,
		func(_, post *Assessment, d Disposition) ScoreComponents {
			return scoreDelta(s.weights, c, post, d, kw)
		})
	return sc
}

func (s *Strategy004) score(sc ScoreComponents) float64 {
	if r, ok := s.weights.clamp(sc.Won, sc.Lost); ok {
		return r
	}
	w := s.weights.Strategy004
	return sc.Piece +
		sc.King*w.King +
		sc.Penetration/MaxPenetration*w.Penetration +
		sc.HomeRow*w.HomeRow +
		sc.PinnedDownPieces*w.PinnedDown +
		sc.PiecesWithAccessToKingRow*w.KingRowAccess +
		sc.ProximityToKingSquare*w.Proximity
}

func (s *Strategy004) ScoreFutures(fs []Future) {
	for _, f := range fs {
		sc := s.components(f)
		score := s.score(sc)
		f.SetScore(score)
		f.SetNotes(fmt.Sprintf("score: %.4f %v", score, sc))
	}
}

func (s *Strategy004) PickBestFuture(fs []Future) Future {
	s.ScoreFutures(fs)
	return pickFirstBest(fs)
}

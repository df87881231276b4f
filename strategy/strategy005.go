package strategy

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
)

const (
	companionshipRadius = 3
	maxCompanionship    = 4 * companionshipRadius
)

// Strategy005 plays like Strategy004 until the endgame, when one side has
// no men left or is ahead on kings. From then on it switches to seek and
// destroy: kings are rewarded for closing in, together, on the most
// isolated enemy piece.
type Strategy005 struct {
	Strategy004

	mu             sync.Mutex
	decided        bool
	seekAndDestroy bool
}

func NewStrategy005(w *Weights) *Strategy005 {
	return &Strategy005{Strategy004: Strategy004{weights: w}}
}

func (s *Strategy005) Name() string { return Strategy005Name }

// SeekAndDestroy reports whether the endgame mode has been switched on.
// It is decided at the first assessment and never switched off.
func (s *Strategy005) SeekAndDestroy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekAndDestroy
}

func (s *Strategy005) AssessBoard(b *board.Board, nextMover board.Color) *Assessment {
	a := baseAssessment(b, nextMover)
	s.mu.Lock()
	if !s.decided {
		s.decided = true
		s.seekAndDestroy = shouldSeekAndDestroy(board.Red, a) ||
			shouldSeekAndDestroy(board.Black, a)
		if s.seekAndDestroy {
			log.Debug().Msg("seek-and-destroy-enabled")
		}
	}
	seek := s.seekAndDestroy
	s.mu.Unlock()
	if seek {
		augmentForSeekAndDestroy(b, &a.RedStats, board.Red)
		augmentForSeekAndDestroy(b, &a.BlackStats, board.Black)
	}
	return a
}

func (s *Strategy005) certainty(n int) float64 {
	w := s.weights
	return 1 - float64(min(n, w.SeekCertaintyMaxMoves))*w.SeekCertaintyStep
}

func (s *Strategy005) components(f Future) ScoreComponents {
	c := f.Player()
	sc, first := cumulativeComponents(f, s.certainty,
		func(_, post *Assessment, d Disposition) ScoreComponents {
			delta := scoreDelta(s.weights, c, post, d, 1)
			delta.DistanceToTarget = post.My(c).UserField0
			return delta
		})
	// where the kings stand after our move counts, not where they might be
	// after replies we can only guess at
	sc.DistanceToTarget = first.DistanceToTarget
	return sc
}

func (s *Strategy005) ScoreFutures(fs []Future) {
	if !s.SeekAndDestroy() {
		s.Strategy004.ScoreFutures(fs)
		return
	}
	for _, f := range fs {
		sc := s.components(f)
		score := s.Strategy004.score(sc)
		if !sc.Won && !sc.Lost {
			score += sc.DistanceToTarget * s.weights.SeekDistance
		}
		f.SetScore(score)
		f.SetNotes(fmt.Sprintf("score: %.4f seek %v", score, sc))
	}
}

func (s *Strategy005) PickBestFuture(fs []Future) Future {
	s.ScoreFutures(fs)
	return pickFirstBest(fs)
}

func shouldSeekAndDestroy(c board.Color, a *Assessment) bool {
	my, opp := a.My(c), a.Opponent(c)
	return my.NonKings() == 0 || my.Kings > opp.Kings
}

// companionship is how crowded p is by its own side, from 0 to 1. The
// rings around p overlap, so a close friend counts once per ring.
func companionship(b *board.Board, p board.Piece) float64 {
	var comp float64
	for dist := 1; dist <= companionshipRadius; dist++ {
		for dr := -dist; dr <= dist; dr++ {
			for dc := -dist; dc <= dist; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, col := p.Loc.Row+dr, p.Loc.Col+dc
				if !board.IsValidRowAndColumn(r, col) {
					continue
				}
				if b.At(r, col).Holds(p.Color) {
					comp += 1 / float64(dist)
				}
			}
		}
	}
	return comp / maxCompanionship
}

func isolation(b *board.Board, p board.Piece) float64 {
	return 1 - companionship(b, p)
}

// proximity maps a distance in moves to 0 (far) through 1 (adjacent).
func proximity(seeker, target board.Piece) float64 {
	d, ok := seeker.MovesToLocation(target.Loc)
	if !ok {
		return 0
	}
	return float64(7-d) / 7
}

func avgProximity(target board.Piece, seekers []board.Piece) float64 {
	var cum float64
	for _, s := range seekers {
		cum += proximity(s, target)
	}
	return cum / float64(len(seekers))
}

// seekTarget returns the opponent king that is most isolated and closest
// to the seekers, or the best ordinary piece if the opponent has no kings.
func seekTarget(b *board.Board, c board.Color, seekers []board.Piece) (board.Piece, bool) {
	candidates := b.Kings(c.Opponent())
	if len(candidates) == 0 {
		candidates = b.Pieces(c.Opponent())
	}
	if len(candidates) == 0 {
		return board.Piece{}, false
	}
	best, bestScore := candidates[0], -1.0
	for _, p := range candidates {
		sc := isolation(b, p) * avgProximity(p, seekers)
		if sc > bestScore {
			best, bestScore = p, sc
		}
	}
	return best, true
}

// augmentForSeekAndDestroy stores in UserField0 how close c's kings are to
// their target, less half the average straggle behind the closest king.
func augmentForSeekAndDestroy(b *board.Board, stats *BoardStats, c board.Color) {
	kings := b.Kings(c)
	if len(kings) == 0 {
		return
	}
	target, ok := seekTarget(b, c, kings)
	if !ok {
		return
	}
	ps := make([]float64, len(kings))
	var maxP, cumP float64
	for i, k := range kings {
		ps[i] = proximity(k, target)
		maxP = max(maxP, ps[i])
		cumP += ps[i]
	}
	var d2max float64
	for _, p := range ps {
		d2max += maxP - p
	}
	n := float64(len(kings))
	stats.UserField0 = cumP/n - (d2max/n)/2
}

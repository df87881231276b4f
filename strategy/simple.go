package strategy

import (
	"fmt"

	"lukechampine.com/frand"

	"github.com/domino14/checkers/board"
)

// Strategy001 looks only at material. It scores the change from the start
// of the line to the last ply that changed anything, and prefers futures
// whose change comes sooner.
type Strategy001 struct {
	weights *Weights
}

func (s *Strategy001) Name() string { return Strategy001Name }

func (s *Strategy001) AssessBoard(b *board.Board, nextMover board.Color) *Assessment {
	return baseAssessment(b, nextMover)
}

// score returns the score and the ply at which it was decided.
func (s *Strategy001) score(f Future) (float64, int) {
	c := f.Player()
	var decided bool
	var result float64
	var i, lastWithChange int
	var lastChanged *Assessment
	f.ForEachAssessment(func(_, post *Assessment, d Disposition) {
		if decided {
			return
		}
		won, lost := outcome(c, post, d)
		if r, ok := s.weights.clamp(won, lost); ok {
			decided, result, lastWithChange = true, r, i
			return
		}
		if lastChanged == nil || d.HasChange() {
			lastWithChange = i
			lastChanged = post
		}
		i++
	})
	if decided {
		return result, lastWithChange
	}
	d := CalculateDisposition(c, f.PreMoveAssessment(), lastChanged)
	return float64(d.PiecesCaptured-d.PiecesLost) +
		float64(d.KingsMade-d.OpponentKingsMade)*s.weights.Strategy001.King, lastWithChange
}

func (s *Strategy001) ScoreFutures(fs []Future) {
	for _, f := range fs {
		sc, offset := s.score(f)
		f.SetScore(sc)
		f.SetNotes(fmt.Sprintf("decided at ply %d", offset))
	}
}

// PickBestFuture picks randomly among the futures with the best score and
// the earliest decisive ply.
func (s *Strategy001) PickBestFuture(fs []Future) Future {
	if len(fs) == 0 {
		panic("no futures to pick from")
	}
	var bests []Future
	var bestScore float64
	var bestOffset int
	for _, f := range fs {
		sc, offset := s.score(f)
		f.SetScore(sc)
		switch {
		case len(bests) == 0 || sc > bestScore || (sc == bestScore && offset < bestOffset):
			bests = []Future{f}
			bestScore, bestOffset = sc, offset
		case sc == bestScore && offset == bestOffset:
			bests = append(bests, f)
		}
	}
	return bests[frand.Intn(len(bests))]
}

// Strategy002 adds home row and penetration to material, measured at the
// end of the line.
type Strategy002 struct {
	weights *Weights
}

func (s *Strategy002) Name() string { return Strategy002Name }

func (s *Strategy002) AssessBoard(b *board.Board, nextMover board.Color) *Assessment {
	return baseAssessment(b, nextMover)
}

func (s *Strategy002) score(f Future) float64 {
	c := f.Player()
	last, lastD := lastAssessment(f)
	if r, ok := s.weights.clamp(outcome(c, last, lastD)); ok {
		f.SetNotes("decided")
		return r
	}
	w := s.weights.Strategy002
	d := CalculateDisposition(c, f.PreMoveAssessment(), last)
	my, opp := last.My(c), last.Opponent(c)
	piece := float64(d.PiecesCaptured - d.PiecesLost)
	king := float64(d.KingsMade-d.OpponentKingsMade) * w.King
	homeRow := float64(my.PiecesOnHomeRow-opp.PiecesOnHomeRow) * w.HomeRow
	pen := (my.Penetration - opp.Penetration) / MaxPenetration * w.Penetration
	f.SetNotes(fmt.Sprintf("components: piece=%v king=%v homeRow=%v penetration:%v",
		piece, king, homeRow, pen))
	return piece + king + homeRow + pen
}

func (s *Strategy002) ScoreFutures(fs []Future) { scoreAll(fs, s.score) }

func (s *Strategy002) PickBestFuture(fs []Future) Future {
	s.ScoreFutures(fs)
	return pickFirstBest(fs)
}

// Strategy003 scores the end of the line with the shared score delta:
// material, kings weighted by how far behind we are, home row, and
// penetration.
type Strategy003 struct {
	weights *Weights
}

func (s *Strategy003) Name() string { return Strategy003Name }

func (s *Strategy003) AssessBoard(b *board.Board, nextMover board.Color) *Assessment {
	return baseAssessment(b, nextMover)
}

func (s *Strategy003) score(f Future) float64 {
	c := f.Player()
	last, lastD := lastAssessment(f)
	d := CalculateDisposition(c, f.PreMoveAssessment(), last)
	d.NoMoves, d.NoOpponentMoves = lastD.NoMoves, lastD.NoOpponentMoves
	sc := scoreDelta(s.weights, c, last, d, kingWeight(c, f.PreMoveAssessment()))
	f.SetNotes("components: " + sc.String())
	if r, ok := s.weights.clamp(sc.Won, sc.Lost); ok {
		return r
	}
	w := s.weights.Strategy003
	return sc.Piece + sc.King*w.King + sc.Penetration/MaxPenetration*w.Penetration +
		sc.HomeRow*w.HomeRow
}

func (s *Strategy003) ScoreFutures(fs []Future) { scoreAll(fs, s.score) }

func (s *Strategy003) PickBestFuture(fs []Future) Future {
	s.ScoreFutures(fs)
	return pickFirstBest(fs)
}

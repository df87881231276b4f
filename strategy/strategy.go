// Package strategy scores the futures the evaluator projects and picks the
// best one. A strategy sees a future only as a line of assessments: the
// aggregate BoardStats of both colors after each ply.
package strategy

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
)

const (
	Strategy001Name = "Strategy001"
	Strategy002Name = "Strategy002"
	Strategy003Name = "Strategy003"
	Strategy004Name = "Strategy004"
	Strategy005Name = "Strategy005"
	DefaultName     = "default"
)

// Names lists the strategies New accepts, in display order.
var Names = []string{Strategy001Name, Strategy002Name, Strategy003Name,
	Strategy004Name, Strategy005Name}

// Future is a candidate move together with the line of play the evaluator
// projects after it.
type Future interface {
	Player() board.Color
	PreMoveAssessment() *Assessment
	// ForEachAssessment walks the projected line one ply at a time. d is
	// the change from pre to post from Player's point of view.
	ForEachAssessment(fn func(pre, post *Assessment, d Disposition))
	Trace() bool
	Score() float64
	SetScore(s float64)
	SetNotes(n string)
}

// Strategy scores futures for one player.
type Strategy interface {
	Name() string
	AssessBoard(b *board.Board, nextMover board.Color) *Assessment
	// ScoreFutures sets the score and notes of every future.
	ScoreFutures(fs []Future)
	// PickBestFuture scores fs and returns the best. fs must not be empty.
	PickBestFuture(fs []Future) Future
}

// New returns the named strategy. An empty name or "default" is
// Strategy001; an unknown name falls back to it with a warning.
func New(name string, w *Weights) Strategy {
	if w == nil {
		w = DefaultWeights()
	}
	switch name {
	case Strategy001Name, DefaultName, "":
		return &Strategy001{weights: w}
	case Strategy002Name:
		return &Strategy002{weights: w}
	case Strategy003Name:
		return &Strategy003{weights: w}
	case Strategy004Name:
		return &Strategy004{weights: w}
	case Strategy005Name:
		return NewStrategy005(w)
	}
	log.Warn().Str("name", name).Msg("unknown-strategy-using-default")
	return &Strategy001{weights: w}
}

// lastAssessment returns the final assessment of the line and the
// disposition of the final ply.
func lastAssessment(f Future) (*Assessment, Disposition) {
	var last *Assessment
	var lastD Disposition
	f.ForEachAssessment(func(_, post *Assessment, d Disposition) {
		last, lastD = post, d
	})
	if last == nil {
		// a future always has at least the candidate move itself
		panic("future with no assessments")
	}
	return last, lastD
}

// outcome reports whether the line ends in a win or loss for the player.
func outcome(c board.Color, last *Assessment, d Disposition) (won, lost bool) {
	won = last.Opponent(c).Pieces == 0 || d.NoOpponentMoves
	lost = last.My(c).Pieces == 0 || d.NoMoves
	return won, lost
}

func scoreAll(fs []Future, fn func(Future) float64) {
	for _, f := range fs {
		f.SetScore(fn(f))
	}
}

// pickFirstBest returns the first future with the highest score. Scores
// must already be set.
func pickFirstBest(fs []Future) Future {
	if len(fs) == 0 {
		panic("no futures to pick from")
	}
	best := fs[0]
	for _, f := range fs[1:] {
		if f.Score() > best.Score() {
			best = f
		}
	}
	return best
}

func (w *Weights) clamp(won, lost bool) (float64, bool) {
	switch {
	case won:
		return w.WinScore, true
	case lost:
		return -w.WinScore, true
	}
	return 0, false
}

func baseAssessment(b *board.Board, nextMover board.Color) *Assessment {
	return NewAssessment(b, nextMover)
}

package strategy

import (
	"fmt"
	"strings"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/movegen"
)

// BoardStats are the aggregate numbers for one color on one board.
type BoardStats struct {
	Pieces          int     `json:"pieces"`
	Kings           int     `json:"kings"`
	PiecesOnHomeRow int     `json:"piecesOnHomeRow"`
	// Penetration is how deep into opponent territory the pieces are, each
	// piece contributing its distance from home divided by 7.
	Penetration float64 `json:"penetration"`
	// FrozenPieces have no move at all.
	FrozenPieces int `json:"frozenPieces"`
	// PinnedDownPieces can only move into immediate capture, or not at all.
	PinnedDownPieces          int `json:"pinnedDownPieces"`
	PiecesWithAccessToKingRow int `json:"piecesWithAccessToKingRow"`
	// ProximityToKingSquare ranges from 0 (far) to 1 (close), averaged over
	// the non-kings that can reach a king square.
	ProximityToKingSquare float64 `json:"proximityToKingSquare"`
	// UserField0 is scratch space for strategies that augment the stats.
	UserField0 float64 `json:"userField0"`
}

// Lost is true when every piece is frozen, which includes having no pieces.
func (s BoardStats) Lost() bool {
	return s.Pieces == s.FrozenPieces
}

func (s BoardStats) NonKings() int {
	return s.Pieces - s.Kings
}

func (s BoardStats) PenetrationRatio() float64 {
	if s.NonKings() > 0 {
		return s.Penetration / float64(s.NonKings())
	}
	return 0
}

func (s BoardStats) PiecesWithAccessToKingRowRatio() float64 {
	if s.NonKings() > 0 {
		return float64(s.PiecesWithAccessToKingRow) / float64(s.NonKings())
	}
	return 0
}

func (s BoardStats) PinnedDownPiecesRatio() float64 {
	if s.Pieces > 0 {
		return float64(s.PinnedDownPieces) / float64(s.Pieces)
	}
	return 0
}

// GetStats computes the stats for color c from scratch.
func GetStats(b *board.Board, c board.Color) BoardStats {
	var ss BoardStats
	kingSquares := b.PotentialKingSquares(c)
	for _, p := range b.Pieces(c) {
		ss.Pieces++
		if p.King {
			ss.Kings++
		} else if len(kingSquares) > 0 {
			if d, ok := p.ShortestDistanceTo(kingSquares); ok {
				ss.PiecesWithAccessToKingRow++
				// closer is better, clamped to 5 moves away
				ss.ProximityToKingSquare += float64(5-min(5, d)) / 5
			}
		}
		d := b.DistanceFromHomeRow(p)
		if d == 0 {
			ss.PiecesOnHomeRow++
		}
		ss.Penetration += float64(d) / 7
	}
	if ss.Pieces > 0 {
		ss.FrozenPieces = movegen.FrozenPieces(b, c)
		ss.PinnedDownPieces = movegen.PinnedDownPieces(b, c)
		if ss.PiecesWithAccessToKingRow > 0 {
			ss.ProximityToKingSquare /= float64(ss.PiecesWithAccessToKingRow)
		}
	}
	return ss
}

// Assessment is a snapshot of both colors' stats at one point in a line of
// play.
type Assessment struct {
	BlackStats BoardStats  `json:"blackStats"`
	RedStats   BoardStats  `json:"redStats"`
	NextMover  board.Color `json:"nextMover"`
	// PossibleMoves and PossibleMovesAreJumps are filled in by the evaluator
	// once the next mover's moves have been generated.
	PossibleMoves         int    `json:"possibleMoves"`
	PossibleMovesAreJumps bool   `json:"possibleMovesAreJumps"`
	Notes                 string `json:"notes,omitempty"`
}

// NewAssessment computes stats for both colors, using the shared stats
// cache when it has been sized.
func NewAssessment(b *board.Board, nextMover board.Color) *Assessment {
	black, red := GlobalStatsCache.Stats(b)
	return &Assessment{BlackStats: black, RedStats: red, NextMover: nextMover}
}

// My returns the stats for color c.
func (a *Assessment) My(c board.Color) *BoardStats {
	if c == board.Black {
		return &a.BlackStats
	}
	return &a.RedStats
}

// Opponent returns the stats for c's opponent.
func (a *Assessment) Opponent(c board.Color) *BoardStats {
	return a.My(c.Opponent())
}

// Equal ignores notes and move counts.
func (a *Assessment) Equal(o *Assessment) bool {
	return a.BlackStats == o.BlackStats && a.RedStats == o.RedStats
}

// Disposition is the change between two assessments from one color's
// point of view.
type Disposition struct {
	PiecesLost        int  `json:"piecesLost"`
	PiecesCaptured    int  `json:"piecesCaptured"`
	KingsMade         int  `json:"kingsMade"`
	OpponentKingsMade int  `json:"opponentKingsMade"`
	NoMoves           bool `json:"noMoves"`
	NoOpponentMoves   bool `json:"noOpponentMoves"`
}

// CalculateDisposition compares pre and post from c's point of view. The
// no-moves flags are left for the caller, who knows whose turn it is.
func CalculateDisposition(c board.Color, pre, post *Assessment) Disposition {
	return Disposition{
		PiecesLost:        pre.My(c).Pieces - post.My(c).Pieces,
		PiecesCaptured:    pre.Opponent(c).Pieces - post.Opponent(c).Pieces,
		KingsMade:         post.My(c).Kings - pre.My(c).Kings,
		OpponentKingsMade: post.Opponent(c).Kings - pre.Opponent(c).Kings,
	}
}

func (d Disposition) HasChange() bool {
	return d.PiecesLost != 0 || d.PiecesCaptured != 0 || d.KingsMade != 0 ||
		d.OpponentKingsMade != 0
}

func (d Disposition) String() string {
	var sb strings.Builder
	if d.PiecesCaptured != 0 {
		fmt.Fprintf(&sb, "cap'd %d ", d.PiecesCaptured)
		if d.OpponentKingsMade < 0 {
			fmt.Fprintf(&sb, "(%dK) ", -d.OpponentKingsMade)
		}
	}
	if d.PiecesLost != 0 {
		fmt.Fprintf(&sb, "lost %d ", d.PiecesLost)
		if d.KingsMade < 0 {
			fmt.Fprintf(&sb, "(%dK) ", -d.KingsMade)
		}
	}
	if d.KingsMade > 0 {
		fmt.Fprintf(&sb, "kinged %d ", d.KingsMade)
	}
	if d.OpponentKingsMade > 0 {
		fmt.Fprintf(&sb, "oppoKings:%d ", d.OpponentKingsMade)
	}
	if d.NoMoves {
		sb.WriteString("NO MOVES ")
	}
	if d.NoOpponentMoves {
		sb.WriteString("NO OPPONENT MOVES ")
	}
	if sb.Len() == 0 {
		return "no change"
	}
	return sb.String()
}

package movegen

import (
	"github.com/domino14/checkers/board"
)

// FrozenPieces counts the pieces of color c that have no move at all.
func FrozenPieces(b *board.Board, c board.Color) int {
	n := 0
	for _, p := range b.Pieces(c) {
		if !pieceHasMove(b, p) {
			n++
		}
	}
	return n
}

// PinnedDownPieces counts the pieces of color c that cannot move forward
// without being blocked or captured.
func PinnedDownPieces(b *board.Board, c board.Color) int {
	n := 0
	for _, p := range b.Pieces(c) {
		if IsPinnedDown(b, p) {
			n++
		}
	}
	return n
}

// IsPinnedDown checks both diagonals in the piece's forward direction, or
// in both directions for a king.
func IsPinnedDown(b *board.Board, p board.Piece) bool {
	if p.King {
		return pinnedLeftAndRight(b, p, -1) && pinnedLeftAndRight(b, p, 1)
	}
	return pinnedLeftAndRight(b, p, b.ForwardDirection(p.Color))
}

func pinnedLeftAndRight(b *board.Board, p board.Piece, rowDir int) bool {
	return pinnedAt(b, p, rowDir, -1) && pinnedAt(b, p, rowDir, 1)
}

func pinnedAt(b *board.Board, p board.Piece, rowDir, colDir int) bool {
	opp := p.Color.Opponent()
	diag1, ok := p.Loc.Offset(rowDir, colDir)
	if !ok || b.SquareAt(diag1).HasPiece() {
		return true
	}
	// diag1 is on the edge, so nothing can jump us there
	diag2, ok := diag1.Offset(rowDir, colDir)
	if !ok {
		return false
	}
	if b.SquareAt(diag2).Holds(opp) {
		return true
	}
	// a piece ahead of us could jump us, landing beside where we are now
	beside, ok := p.Loc.Offset(0, 2*colDir)
	if ok && !b.SquareAt(beside).HasPiece() {
		if ahead, ok := p.Loc.Offset(2*rowDir, 0); ok && b.SquareAt(ahead).Holds(opp) {
			return true
		}
	}
	return false
}

package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// Dim is the width and height of the board.
	Dim = 8
	// NumSquares is the number of squares on the board.
	NumSquares = Dim * Dim
	// PiecesPerSide is the number of pieces each side starts with.
	PiecesPerSide = 12
)

var (
	ErrNoPiece        = errors.New("no piece at location")
	ErrSquareOccupied = errors.New("square is not empty")
	ErrNotPlayable    = errors.New("square is not playable")
	ErrOffBoard       = errors.New("location is off the board")
)

// A Board holds the 64 squares and the orientation of play. It is the only
// mutable game state; search branches work on clones.
type Board struct {
	squares [NumSquares]Square
	// blackMovesUp is true when black non-kings move toward row 0. Black
	// then kings on row 0 and has its home row on row 7; red is the
	// mirror image.
	blackMovesUp bool
}

// New creates an empty board (all dark squares empty) with black moving up.
func New() *Board {
	b := &Board{blackMovesUp: true}
	b.Clear()
	return b
}

// NewStartingBoard creates a board set up for a new game with the given
// color at the top of the board.
func NewStartingBoard(top Color) *Board {
	b := New()
	b.SetTopPlayer(top)
	b.InitializePieces()
	return b
}

// Clear empties every dark square.
func (b *Board) Clear() {
	for i := range b.squares {
		loc := locationFromIndex(i)
		if IsDark(loc.Row, loc.Col) {
			b.squares[i] = EmptySquare()
		} else {
			b.squares[i] = NotPlayableSquare()
		}
	}
}

// SetTopPlayer orients the board so that the top color's pieces move down.
func (b *Board) SetTopPlayer(top Color) {
	b.blackMovesUp = top == Red
}

// InitializePieces clears the board and places 12 pieces per side: the top
// color on rows 0-2 and the bottom color on rows 5-7.
func (b *Board) InitializePieces() {
	b.Clear()
	bottom := Red
	if b.blackMovesUp {
		bottom = Black
	}
	top := bottom.Opponent()
	for i := 0; i < PiecesPerSide; i++ {
		aRow := i / 4
		aCol := (i%4)*2 + (aRow+1)%2
		b.squares[Loc(aRow, aCol).index()] = OccupiedSquare(top, false)

		bRow := i/4 + 5
		bCol := (i%4)*2 + (bRow+1)%2
		b.squares[Loc(bRow, bCol).index()] = OccupiedSquare(bottom, false)
	}
}

// Clone returns a deep copy of the board. Nothing mutable is shared.
func (b *Board) Clone() *Board {
	nb := *b
	return &nb
}

// BlackMovesUp returns the orientation flag.
func (b *Board) BlackMovesUp() bool {
	return b.blackMovesUp
}

// MovesUp returns true if non-kings of color c move toward row 0.
func (b *Board) MovesUp(c Color) bool {
	if c == Black {
		return b.blackMovesUp
	}
	return !b.blackMovesUp
}

// ForwardDirection is the row delta of a forward move for color c.
func (b *Board) ForwardDirection(c Color) int {
	if b.MovesUp(c) {
		return -1
	}
	return 1
}

// KingRow is the row where non-kings of color c are crowned.
func (b *Board) KingRow(c Color) int {
	if b.MovesUp(c) {
		return 0
	}
	return Dim - 1
}

// HomeRow is the row color c starts from.
func (b *Board) HomeRow(c Color) int {
	if b.MovesUp(c) {
		return Dim - 1
	}
	return 0
}

// SquareAt returns the square at loc. loc must be on the board.
func (b *Board) SquareAt(loc Location) Square {
	return b.squares[loc.index()]
}

// At is SquareAt for a row and column.
func (b *Board) At(row, col int) Square {
	return b.squares[row*Dim+col]
}

// Squares returns a copy of all squares, row-major.
func (b *Board) Squares() [NumSquares]Square {
	return b.squares
}

// SetPiece puts a piece on a dark square, replacing whatever was there.
func (b *Board) SetPiece(loc Location, c Color, king bool) error {
	if !loc.Valid() {
		return ErrOffBoard
	}
	if !IsDark(loc.Row, loc.Col) {
		return ErrNotPlayable
	}
	b.squares[loc.index()] = OccupiedSquare(c, king)
	return nil
}

// ClearPiece empties a dark square.
func (b *Board) ClearPiece(loc Location) error {
	if !loc.Valid() {
		return ErrOffBoard
	}
	if !IsDark(loc.Row, loc.Col) {
		return ErrNotPlayable
	}
	b.squares[loc.index()] = EmptySquare()
	return nil
}

// MovePiece moves the piece at from to the empty square to, crowning it if
// a non-king lands on its king row. It returns whether the piece was
// crowned by this step. Rule checks are the caller's job.
func (b *Board) MovePiece(from, to Location) (crowned bool, err error) {
	sq := b.squares[from.index()]
	c, ok := sq.PieceColor()
	if !ok {
		return false, fmt.Errorf("%w: %v", ErrNoPiece, from)
	}
	if !b.squares[to.index()].IsEmpty() {
		return false, fmt.Errorf("%w: %v", ErrSquareOccupied, to)
	}
	wasKing := sq.IsKing()
	king := wasKing || to.Row == b.KingRow(c)
	b.squares[from.index()] = EmptySquare()
	b.squares[to.index()] = OccupiedSquare(c, king)
	return king && !wasKing, nil
}

// Capture removes the piece at loc.
func (b *Board) Capture(loc Location) {
	b.squares[loc.index()] = EmptySquare()
}

// Uncapture puts back a piece that was captured. Used for undo.
func (b *Board) Uncapture(c Color, loc Location, king bool) error {
	if !b.squares[loc.index()].IsEmpty() {
		log.Error().Str("loc", loc.String()).Str("board", b.Hash()).
			Msg("uncapture-on-non-empty-square")
		return fmt.Errorf("%w: %v", ErrSquareOccupied, loc)
	}
	b.squares[loc.index()] = OccupiedSquare(c, king)
	return nil
}

// Dethrone takes the crown off the piece at loc. Used for undo.
func (b *Board) Dethrone(loc Location) {
	b.squares[loc.index()] = b.squares[loc.index()].Dethroned()
}

// Hash returns a printable string that uniquely identifies the position
// (squares only; orientation is not part of it).
func (b *Board) Hash() string {
	var sb strings.Builder
	sb.Grow(NumSquares + Dim)
	for i, sq := range b.squares {
		sb.WriteByte(sq.Char())
		if i%Dim == Dim-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Equal compares squares and orientation.
func (b *Board) Equal(o *Board) bool {
	return b.squares == o.squares && b.blackMovesUp == o.blackMovesUp
}

// PieceCount returns the number of pieces of color c.
func (b *Board) PieceCount(c Color) int {
	n := 0
	for _, sq := range b.squares {
		if sq.Holds(c) {
			n++
		}
	}
	return n
}

// KingCount returns the number of kings of color c.
func (b *Board) KingCount(c Color) int {
	n := 0
	for _, sq := range b.squares {
		if sq.Holds(c) && sq.IsKing() {
			n++
		}
	}
	return n
}

// Pieces returns the pieces of color c in row-major order.
func (b *Board) Pieces(c Color) []Piece {
	var ps []Piece
	for i, sq := range b.squares {
		if sq.Holds(c) {
			ps = append(ps, Piece{Loc: locationFromIndex(i), Color: c, King: sq.IsKing()})
		}
	}
	return ps
}

// Kings returns only the kings of color c.
func (b *Board) Kings(c Color) []Piece {
	var ps []Piece
	for i, sq := range b.squares {
		if sq.Holds(c) && sq.IsKing() {
			ps = append(ps, Piece{Loc: locationFromIndex(i), Color: c, King: true})
		}
	}
	return ps
}

// PieceAt returns the piece at loc, if any.
func (b *Board) PieceAt(loc Location) (Piece, bool) {
	sq := b.squares[loc.index()]
	c, ok := sq.PieceColor()
	if !ok {
		return Piece{}, false
	}
	return Piece{Loc: loc, Color: c, King: sq.IsKing()}, true
}

// PotentialKingSquares returns the squares on color c's king row that are
// either empty or hold one of c's own pieces.
func (b *Board) PotentialKingSquares(c Color) []Location {
	var locs []Location
	row := b.KingRow(c)
	for col := 0; col < Dim; col++ {
		sq := b.At(row, col)
		if sq.IsEmpty() || sq.Holds(c) {
			locs = append(locs, Loc(row, col))
		}
	}
	return locs
}

// DistanceFromHomeRow is the number of rows p has advanced from its home row.
func (b *Board) DistanceFromHomeRow(p Piece) int {
	if b.MovesUp(p.Color) {
		return Dim - 1 - p.Loc.Row
	}
	return p.Loc.Row
}

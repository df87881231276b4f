package board

import (
	"errors"
	"fmt"
)

// Color is the color of a piece. The wire values (0 for black, 1 for red)
// are the ones stored in saved games.
type Color int8

const (
	Black Color = iota
	Red
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == Black {
		return Red
	}
	return Black
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "red"
}

// Valid returns true if c is one of the two playable colors.
func (c Color) Valid() bool {
	return c == Black || c == Red
}

// ColorFromString parses "black" or "red" (or "b"/"r").
func ColorFromString(s string) (Color, error) {
	switch s {
	case "black", "b", "Black", "BLACK":
		return Black, nil
	case "red", "r", "Red", "RED":
		return Red, nil
	}
	return Black, fmt.Errorf("unknown color %q", s)
}

// Wire values for square contents. These are bit flags in saved games:
// king = 1, black = 2, red = 4, with empty encoded as 1 on its own.
const (
	ValueNotPlayable = 0
	ValueEmpty       = 1
	ValueBlack       = 2
	ValueBlackKing   = 3
	ValueRed         = 4
	ValueRedKing     = 5
)

var ErrBadSquareValue = errors.New("bad square value")

type squareKind uint8

const (
	notPlayable squareKind = iota
	empty
	occupied
)

// A Square is one of the 64 cells of the board. It is either not playable
// (a light square), empty, or occupied by a piece of some color which may
// be a king.
type Square struct {
	kind  squareKind
	color Color
	king  bool
}

func NotPlayableSquare() Square { return Square{kind: notPlayable} }

func EmptySquare() Square { return Square{kind: empty} }

func OccupiedSquare(c Color, king bool) Square {
	return Square{kind: occupied, color: c, king: king}
}

// SquareFromValue decodes a wire value.
func SquareFromValue(v int) (Square, error) {
	switch v {
	case ValueNotPlayable:
		return NotPlayableSquare(), nil
	case ValueEmpty:
		return EmptySquare(), nil
	case ValueBlack:
		return OccupiedSquare(Black, false), nil
	case ValueBlackKing:
		return OccupiedSquare(Black, true), nil
	case ValueRed:
		return OccupiedSquare(Red, false), nil
	case ValueRedKing:
		return OccupiedSquare(Red, true), nil
	}
	return Square{}, fmt.Errorf("%w: %d", ErrBadSquareValue, v)
}

// Value encodes the square as its wire value.
func (s Square) Value() int {
	switch s.kind {
	case empty:
		return ValueEmpty
	case occupied:
		v := ValueBlack
		if s.color == Red {
			v = ValueRed
		}
		if s.king {
			v |= 1
		}
		return v
	}
	return ValueNotPlayable
}

func (s Square) Playable() bool { return s.kind != notPlayable }

func (s Square) IsEmpty() bool { return s.kind == empty }

func (s Square) HasPiece() bool { return s.kind == occupied }

// IsKing returns true only for an occupied square holding a king.
func (s Square) IsKing() bool { return s.kind == occupied && s.king }

// PieceColor returns the color of the piece on this square. ok is false
// if there is no piece.
func (s Square) PieceColor() (c Color, ok bool) {
	if s.kind != occupied {
		return Black, false
	}
	return s.color, true
}

// Holds returns true if the square holds a piece of color c.
func (s Square) Holds(c Color) bool {
	return s.kind == occupied && s.color == c
}

// Dethroned returns the same piece without its crown. Non-occupied squares
// are returned unchanged.
func (s Square) Dethroned() Square {
	if s.kind == occupied {
		s.king = false
	}
	return s
}

// Char is the single character used for this square in board hashes.
func (s Square) Char() byte {
	switch s.Value() {
	case ValueEmpty:
		return ' '
	case ValueBlack:
		return 'b'
	case ValueBlackKing:
		return 'B'
	case ValueRed:
		return 'r'
	case ValueRedKing:
		return 'R'
	}
	return '_'
}

func (s Square) String() string {
	switch s.kind {
	case empty:
		return "empty"
	case occupied:
		if s.king {
			return s.color.String() + " king"
		}
		return s.color.String()
	}
	return "not playable"
}

// Location is an immutable row/column pair.
type Location struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Loc(row, col int) Location {
	return Location{Row: row, Col: col}
}

// IsValidRowAndColumn returns true if (row, col) is on the board.
func IsValidRowAndColumn(row, col int) bool {
	return row >= 0 && row < Dim && col >= 0 && col < Dim
}

// IsDark returns true for the playable (dark) squares.
func IsDark(row, col int) bool {
	return (row+col)%2 == 1
}

func (l Location) Valid() bool {
	return IsValidRowAndColumn(l.Row, l.Col)
}

// Offset returns the location (dr, dc) away. ok is false when that falls
// off the board.
func (l Location) Offset(dr, dc int) (Location, bool) {
	n := Location{Row: l.Row + dr, Col: l.Col + dc}
	return n, n.Valid()
}

// DiagonalDistance returns the number of diagonal steps between l and o,
// or -1 if they are not on a common diagonal.
func (l Location) DiagonalDistance(o Location) int {
	dr := abs(l.Row - o.Row)
	dc := abs(l.Col - o.Col)
	if dr != dc {
		return -1
	}
	return dr
}

// Mid returns the location halfway between l and o. It is only meaningful
// for jumps, where the distance is exactly 2.
func (l Location) Mid(o Location) Location {
	return Location{Row: (l.Row + o.Row) / 2, Col: (l.Col + o.Col) / 2}
}

func (l Location) index() int {
	return l.Row*Dim + l.Col
}

func (l Location) String() string {
	return fmt.Sprintf("%d,%d", l.Row, l.Col)
}

func locationFromIndex(i int) Location {
	return Location{Row: i / Dim, Col: i % Dim}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

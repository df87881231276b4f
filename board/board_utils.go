package board

import (
	"fmt"
	"regexp"
	"strings"
)

var boardPlaintextRegex = regexp.MustCompile(`\|(.+)\|`)

// DisplayChar is the character used for a square in plaintext boards.
// Light squares are '-' and empty dark squares '.'.
func (s Square) DisplayChar() byte {
	switch {
	case !s.Playable():
		return '-'
	case s.IsEmpty():
		return '.'
	}
	return s.Char()
}

// ToDisplayText renders the board with row and column numbers. The output
// can be read back with NewFromPlaintext.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for i := 0; i < Dim; i++ {
		fmt.Fprintf(&sb, "%d ", i)
	}
	sb.WriteString("\n   " + strings.Repeat("-", Dim*2) + "\n")
	for r := 0; r < Dim; r++ {
		fmt.Fprintf(&sb, "%2d|", r)
		for c := 0; c < Dim; c++ {
			sb.WriteByte(b.At(r, c).DisplayChar())
			if c != Dim-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("|")
		switch r {
		case b.KingRow(Black):
			sb.WriteString("  black kings here")
		case b.KingRow(Red):
			sb.WriteString("  red kings here")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   " + strings.Repeat("-", Dim*2) + "\n")
	return "\n" + sb.String()
}

// NewFromPlaintext builds a board from rows of the form |- b - . - r - B|.
// Spaces inside a row are ignored.
func NewFromPlaintext(text string, blackMovesUp bool) (*Board, error) {
	result := boardPlaintextRegex.FindAllStringSubmatch(text, -1)
	if len(result) != Dim {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrMalformedBoard, Dim, len(result))
	}
	b := &Board{blackMovesUp: blackMovesUp}
	for r, m := range result {
		row := strings.ReplaceAll(m[1], " ", "")
		if len(row) != Dim {
			return nil, fmt.Errorf("%w: row %d has %d squares", ErrMalformedBoard, r, len(row))
		}
		for c := 0; c < Dim; c++ {
			sq, err := squareFromDisplayChar(row[c])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d col %d: %w", ErrMalformedBoard, r, c, err)
			}
			if sq.Playable() != IsDark(r, c) {
				return nil, fmt.Errorf("%w: row %d col %d has wrong shade", ErrMalformedBoard, r, c)
			}
			b.squares[r*Dim+c] = sq
		}
	}
	return b, nil
}

func squareFromDisplayChar(ch byte) (Square, error) {
	switch ch {
	case '-':
		return NotPlayableSquare(), nil
	case '.':
		return EmptySquare(), nil
	case 'b':
		return OccupiedSquare(Black, false), nil
	case 'B':
		return OccupiedSquare(Black, true), nil
	case 'r':
		return OccupiedSquare(Red, false), nil
	case 'R':
		return OccupiedSquare(Red, true), nil
	}
	return Square{}, fmt.Errorf("%w: %q", ErrBadSquareValue, ch)
}

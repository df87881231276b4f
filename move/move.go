package move

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/checkers/board"
)

// MoveType is the kind of a move: a simple diagonal step or a jump chain.
type MoveType uint8

const (
	MoveTypeSimple MoveType = iota
	MoveTypeJump
)

func (t MoveType) String() string {
	if t == MoveTypeJump {
		return "Jump"
	}
	return "Simple"
}

var (
	ErrInvalidMove     = errors.New("invalid move")
	ErrUnknownMoveKind = errors.New("unknown move kind")
)

// Segment is one step of a move.
type Segment struct {
	From board.Location
	To   board.Location
}

// Captured returns the location jumped over, if this is a jump segment.
func (s Segment) Captured() (board.Location, bool) {
	if s.From.DiagonalDistance(s.To) != 2 {
		return board.Location{}, false
	}
	return s.From.Mid(s.To), true
}

// Move is an immutable move. The path holds the start square followed by
// every landing square; a simple move has exactly one landing and a jump
// chain has one landing per captured piece.
type Move struct {
	action MoveType
	path   []board.Location
}

// NewSimpleMove creates a one-step diagonal move.
func NewSimpleMove(from, to board.Location) (*Move, error) {
	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("%w: off board %v -> %v", ErrInvalidMove, from, to)
	}
	if from.DiagonalDistance(to) != 1 {
		return nil, fmt.Errorf("%w: simple move %v -> %v is not one diagonal step",
			ErrInvalidMove, from, to)
	}
	return &Move{action: MoveTypeSimple, path: []board.Location{from, to}}, nil
}

// NewJumpMove creates a jump chain from a start square and its landings.
func NewJumpMove(from board.Location, landings ...board.Location) (*Move, error) {
	if len(landings) == 0 {
		return nil, fmt.Errorf("%w: jump with no landing", ErrInvalidMove)
	}
	path := make([]board.Location, 0, len(landings)+1)
	path = append(path, from)
	path = append(path, landings...)
	captured := map[board.Location]bool{}
	for i := 0; i < len(path)-1; i++ {
		a, b := path[i], path[i+1]
		if !a.Valid() || !b.Valid() {
			return nil, fmt.Errorf("%w: off board %v -> %v", ErrInvalidMove, a, b)
		}
		if a.DiagonalDistance(b) != 2 {
			return nil, fmt.Errorf("%w: jump segment %v -> %v is not two diagonal steps",
				ErrInvalidMove, a, b)
		}
		mid := a.Mid(b)
		if captured[mid] {
			return nil, fmt.Errorf("%w: %v captured twice", ErrInvalidMove, mid)
		}
		captured[mid] = true
	}
	return &Move{action: MoveTypeJump, path: path}, nil
}

// FromPath builds a move from a list of squares, deciding its kind from the
// distance of the first step.
func FromPath(path []board.Location) (*Move, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: need at least two squares", ErrInvalidMove)
	}
	if path[0].DiagonalDistance(path[1]) == 1 {
		if len(path) != 2 {
			return nil, fmt.Errorf("%w: simple moves have one step", ErrInvalidMove)
		}
		return NewSimpleMove(path[0], path[1])
	}
	return NewJumpMove(path[0], path[1:]...)
}

// Parse reads a move written as squares separated by spaces or dashes,
// e.g. "5,2 4,3" or "3,4-1,2-3,0".
func Parse(s string) (*Move, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	})
	path := make([]board.Location, 0, len(fields))
	for _, f := range fields {
		var r, c int
		if _, err := fmt.Sscanf(f, "%d,%d", &r, &c); err != nil {
			return nil, fmt.Errorf("%w: cannot parse square %q", ErrInvalidMove, f)
		}
		path = append(path, board.Loc(r, c))
	}
	return FromPath(path)
}

func (m *Move) Type() MoveType { return m.action }

func (m *Move) Start() board.Location { return m.path[0] }

// Target is the landing square of the first segment.
func (m *Move) Target() board.Location { return m.path[1] }

// FinalTarget is where the moving piece ends up.
func (m *Move) FinalTarget() board.Location { return m.path[len(m.path)-1] }

// Path returns a copy of the start square and all landings.
func (m *Move) Path() []board.Location {
	p := make([]board.Location, len(m.path))
	copy(p, m.path)
	return p
}

// Len is the number of segments. For a jump chain it is the number of
// captured pieces.
func (m *Move) Len() int { return len(m.path) - 1 }

func (m *Move) Segment(i int) Segment {
	return Segment{From: m.path[i], To: m.path[i+1]}
}

func (m *Move) Segments() []Segment {
	segs := make([]Segment, m.Len())
	for i := range segs {
		segs[i] = m.Segment(i)
	}
	return segs
}

// Next returns the rest of a jump chain after its first segment, or nil.
func (m *Move) Next() *Move {
	if m.action != MoveTypeJump || len(m.path) <= 2 {
		return nil
	}
	return &Move{action: MoveTypeJump, path: m.path[1:]}
}

// Extend returns a new jump chain with one more landing.
func (m *Move) Extend(landing board.Location) (*Move, error) {
	if m.action != MoveTypeJump {
		return nil, fmt.Errorf("%w: cannot extend a simple move", ErrInvalidMove)
	}
	return NewJumpMove(m.path[0], append(m.Path()[1:], landing)...)
}

func (m *Move) CapturesPieces() bool { return m.action == MoveTypeJump }

func (m *Move) CapturesMultiple() bool {
	return m.action == MoveTypeJump && m.Len() > 1
}

// CapturedLocations returns the squares jumped over, in order.
func (m *Move) CapturedLocations() []board.Location {
	if m.action != MoveTypeJump {
		return nil
	}
	locs := make([]board.Location, 0, m.Len())
	for i := 0; i < m.Len(); i++ {
		locs = append(locs, m.path[i].Mid(m.path[i+1]))
	}
	return locs
}

// Equal compares kind and every square of the path.
func (m *Move) Equal(o *Move) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.action != o.action || len(m.path) != len(o.path) {
		return false
	}
	for i := range m.path {
		if m.path[i] != o.path[i] {
			return false
		}
	}
	return true
}

// ShortDescription is the compact form accepted by Parse.
func (m *Move) ShortDescription() string {
	parts := make([]string, len(m.path))
	for i, l := range m.path {
		parts[i] = l.String()
	}
	return strings.Join(parts, "-")
}

func (m *Move) String() string {
	if m.action == MoveTypeJump {
		if m.Len() > 1 {
			return fmt.Sprintf("<jump (x%d) %s>", m.Len(), m.ShortDescription())
		}
		return fmt.Sprintf("<jump %s>", m.ShortDescription())
	}
	return fmt.Sprintf("<simple %s>", m.ShortDescription())
}

// FilterJumps returns only the moves that capture.
func FilterJumps(moves []*Move) []*Move {
	return lo.Filter(moves, func(m *Move, _ int) bool {
		return m.CapturesPieces()
	})
}

package move

import (
	"encoding/json"
	"fmt"

	"github.com/domino14/checkers/board"
)

// moveJSON is the wire form of one segment. Current saves use Kind and
// NextJump; the other fields are only read, for games saved by older
// versions.
type moveJSON struct {
	Kind      string    `json:"kind,omitempty"`
	StartRow  int       `json:"startRow"`
	StartCol  int       `json:"startCol"`
	TargetRow int       `json:"targetRow"`
	TargetCol int       `json:"targetCol"`
	NextJump  *moveJSON `json:"nextJump,omitempty"`

	Type       string      `json:"type,omitempty"`
	LegacyNext *moveJSON   `json:"_nextJump,omitempty"`
	Moves      []*moveJSON `json:"moves,omitempty"`
	PieceType  *int        `json:"pieceType,omitempty"`
	Up         *bool       `json:"up,omitempty"`
	Left       *bool       `json:"left,omitempty"`
}

func (m *Move) MarshalJSON() ([]byte, error) {
	var head, prev *moveJSON
	for i := 0; i < m.Len(); i++ {
		s := m.Segment(i)
		mj := &moveJSON{
			Kind:      m.action.String(),
			StartRow:  s.From.Row,
			StartCol:  s.From.Col,
			TargetRow: s.To.Row,
			TargetCol: s.To.Col,
		}
		if prev == nil {
			head = mj
		} else {
			prev.NextJump = mj
		}
		prev = mj
	}
	return json.Marshal(head)
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var mj moveJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
	nm, err := mj.toMove()
	if err != nil {
		return err
	}
	*m = *nm
	return nil
}

// Deserialize reads a move in any of the supported forms.
func Deserialize(data []byte) (*Move, error) {
	m := &Move{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (mj *moveJSON) toMove() (*Move, error) {
	switch {
	case mj.Kind == "Simple" || mj.Type == "SimpleMove":
		from, to := mj.endpoints(1)
		return NewSimpleMove(from, to)
	case mj.Kind == "Jump" || mj.Type == "SingleJumpMove":
		return mj.jumpChain()
	case mj.Type == "JumpMoveChain":
		return legacyChain(mj.Moves)
	case mj.Kind != "":
		return nil, fmt.Errorf("%w: %q", ErrUnknownMoveKind, mj.Kind)
	case mj.Type != "":
		return nil, fmt.Errorf("%w: %q", ErrUnknownMoveKind, mj.Type)
	}
	return nil, fmt.Errorf("%w: missing kind", ErrUnknownMoveKind)
}

// endpoints returns the start and target of one segment. In the old
// direction form the target is given as up/left flags and a distance.
func (mj *moveJSON) endpoints(dist int) (board.Location, board.Location) {
	from := board.Loc(mj.StartRow, mj.StartCol)
	if mj.PieceType == nil || mj.Up == nil {
		return from, board.Loc(mj.TargetRow, mj.TargetCol)
	}
	dr, dc := dist, dist
	if *mj.Up {
		dr = -dist
	}
	if mj.Left != nil && *mj.Left {
		dc = -dist
	}
	return from, board.Loc(mj.StartRow+dr, mj.StartCol+dc)
}

func (mj *moveJSON) jumpChain() (*Move, error) {
	from, _ := mj.endpoints(2)
	var landings []board.Location
	for seg := mj; seg != nil; seg = seg.next() {
		_, to := seg.endpoints(2)
		landings = append(landings, to)
	}
	m, err := NewJumpMove(from, landings...)
	if err != nil {
		return nil, err
	}
	for i, seg := 0, mj; seg != nil; i, seg = i+1, seg.next() {
		if s, _ := seg.endpoints(2); s != m.path[i] {
			return nil, fmt.Errorf("%w: segment %d does not start where %d ended",
				ErrInvalidMove, i, i-1)
		}
	}
	return m, nil
}

func (mj *moveJSON) next() *moveJSON {
	if mj.NextJump != nil {
		return mj.NextJump
	}
	return mj.LegacyNext
}

// legacyChain reads the oldest chain format, a flat list of single jumps.
// The list was not always saved in play order, so the segments are linked
// in whichever order is contiguous.
func legacyChain(segs []*moveJSON) (*Move, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: empty jump chain", ErrInvalidMove)
	}
	type seg struct{ from, to board.Location }
	ss := make([]seg, len(segs))
	for i, sj := range segs {
		ss[i].from, ss[i].to = sj.endpoints(2)
	}
	for _, order := range [][]int{forward(len(ss)), backward(len(ss))} {
		contiguous := true
		for k := 1; k < len(order); k++ {
			if ss[order[k]].from != ss[order[k-1]].to {
				contiguous = false
				break
			}
		}
		if !contiguous {
			continue
		}
		landings := make([]board.Location, len(order))
		for k, idx := range order {
			landings[k] = ss[idx].to
		}
		return NewJumpMove(ss[order[0]].from, landings...)
	}
	return nil, fmt.Errorf("%w: jump chain segments are not contiguous", ErrInvalidMove)
}

func forward(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

func backward(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = n - 1 - i
	}
	return o
}

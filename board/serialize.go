package board

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedBoard = errors.New("malformed board")

// boardJSON is the wire form. The current form is {blackMovesUp, squares};
// older saves used {kingRow, pieces} and are still readable.
type boardJSON struct {
	BlackMovesUp *bool           `json:"blackMovesUp,omitempty"`
	Squares      []int           `json:"squares,omitempty"`
	KingRow      []int           `json:"kingRow,omitempty"`
	Pieces       [][]legacyPiece `json:"pieces,omitempty"`
}

type legacyPiece struct {
	Type int  `json:"type"`
	King bool `json:"_king"`
	Row  int  `json:"row"`
	Col  int  `json:"col"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	sqs := make([]int, NumSquares)
	for i, sq := range b.squares {
		sqs[i] = sq.Value()
	}
	up := b.blackMovesUp
	return json.Marshal(boardJSON{BlackMovesUp: &up, Squares: sqs})
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var bj boardJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBoard, err)
	}
	var nb Board
	switch {
	case bj.Squares != nil:
		if err := nb.fromSquares(bj); err != nil {
			return err
		}
	case bj.KingRow != nil || bj.Pieces != nil:
		if err := nb.fromLegacy(bj); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: no squares or pieces", ErrMalformedBoard)
	}
	*b = nb
	return nil
}

func (b *Board) fromSquares(bj boardJSON) error {
	if len(bj.Squares) != NumSquares {
		return fmt.Errorf("%w: expected %d squares, got %d", ErrMalformedBoard,
			NumSquares, len(bj.Squares))
	}
	if bj.BlackMovesUp == nil {
		return fmt.Errorf("%w: missing blackMovesUp", ErrMalformedBoard)
	}
	b.blackMovesUp = *bj.BlackMovesUp
	for i, v := range bj.Squares {
		sq, err := SquareFromValue(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedBoard, err)
		}
		loc := locationFromIndex(i)
		if IsDark(loc.Row, loc.Col) != sq.Playable() {
			return fmt.Errorf("%w: square %v has value %d", ErrMalformedBoard, loc, v)
		}
		b.squares[i] = sq
	}
	return nil
}

func (b *Board) fromLegacy(bj boardJSON) error {
	if len(bj.KingRow) < 1 {
		return fmt.Errorf("%w: missing kingRow", ErrMalformedBoard)
	}
	// kingRow is indexed by color; black kinging on row 0 means it moves up.
	b.blackMovesUp = bj.KingRow[Black] == 0
	b.Clear()
	for _, ps := range bj.Pieces {
		for _, p := range ps {
			c := Color(p.Type)
			if !c.Valid() {
				return fmt.Errorf("%w: bad piece type %d", ErrMalformedBoard, p.Type)
			}
			if err := b.SetPiece(Loc(p.Row, p.Col), c, p.King); err != nil {
				return fmt.Errorf("%w: piece at %d,%d: %w", ErrMalformedBoard, p.Row, p.Col, err)
			}
		}
	}
	return nil
}

// Serialize returns the current JSON form of the board.
func (b *Board) Serialize() ([]byte, error) {
	return json.Marshal(b)
}

// Deserialize reads a board in either the current or the legacy form.
func Deserialize(data []byte) (*Board, error) {
	b := &Board{}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, err
	}
	return b, nil
}

package movegen

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/move"
)

// CapturedPiece is a piece removed by a jump.
type CapturedPiece struct {
	Loc   board.Location `json:"loc"`
	Color board.Color    `json:"color"`
	King  bool           `json:"king"`
}

// Undo is everything needed to take back an executed move.
type Undo struct {
	Crowned  bool            `json:"crowned"`
	Captured []CapturedPiece `json:"captured,omitempty"`
}

// Execute validates m and plays it on b. An illegal move leaves b
// untouched and returns ErrIllegalMove.
func Execute(b *board.Board, m *move.Move) (Undo, error) {
	if err := Validate(b, m); err != nil {
		log.Error().Err(err).Str("move", m.String()).Str("board", b.Hash()).
			Msg("execute-illegal-move")
		return Undo{}, err
	}
	var u Undo
	for _, seg := range m.Segments() {
		crowned, err := b.MovePiece(seg.From, seg.To)
		if err != nil {
			// Validate passed, so the board is inconsistent with itself.
			log.Error().Err(err).Str("move", m.String()).Msg("execute-move-piece")
			return u, fmt.Errorf("%w: %w", ErrIllegalMove, err)
		}
		u.Crowned = u.Crowned || crowned
		if loc, ok := seg.Captured(); ok {
			p, _ := b.PieceAt(loc)
			u.Captured = append(u.Captured, CapturedPiece{Loc: loc, Color: p.Color, King: p.King})
			b.Capture(loc)
		}
	}
	return u, nil
}

// Unexecute reverts m, which must be the last move executed on b, using
// the record Execute returned.
func Unexecute(b *board.Board, m *move.Move, u Undo) error {
	p, ok := b.PieceAt(m.FinalTarget())
	if !ok {
		log.Error().Str("move", m.String()).Str("board", b.Hash()).Msg("unexecute-no-piece")
		return fmt.Errorf("%w: no piece at %v to take back", ErrIllegalMove, m.FinalTarget())
	}
	if err := b.ClearPiece(m.FinalTarget()); err != nil {
		return err
	}
	if err := b.SetPiece(m.Start(), p.Color, p.King && !u.Crowned); err != nil {
		return err
	}
	for i := len(u.Captured) - 1; i >= 0; i-- {
		cp := u.Captured[i]
		if err := b.Uncapture(cp.Color, cp.Loc, cp.King); err != nil {
			return err
		}
	}
	return nil
}

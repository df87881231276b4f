// Package movegen contains the rules of the game: move validation,
// execution and undo, legal move generation with forced captures, and the
// frozen and pinned piece queries the strategies use.
package movegen

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/move"
)

var ErrIllegalMove = errors.New("illegal move")

// PossibleMoves returns every legal move for color c. If any capture is
// available only captures are returned, each extended to a maximal chain.
// The order is stable: pieces in row-major order, then template order.
func PossibleMoves(b *board.Board, c board.Color) []*move.Move {
	var simple, jumps []*move.Move
	for _, p := range b.Pieces(c) {
		jumps = append(jumps, jumpChainsFrom(b, p.Loc, c, p.King, nil)...)
		if len(jumps) == 0 {
			simple = append(simple, simpleMovesFrom(b, p)...)
		}
	}
	if len(jumps) > 0 {
		log.Trace().Int("jumps", len(jumps)).Str("color", c.String()).Msg("forced-jumps")
		return jumps
	}
	return simple
}

// ForcedJumps returns the capturing moves available to c. Any of them must
// be played instead of a simple move.
func ForcedJumps(b *board.Board, c board.Color) []*move.Move {
	return move.FilterJumps(PossibleMoves(b, c))
}

// HasMoves returns true if c has at least one legal move.
func HasMoves(b *board.Board, c board.Color) bool {
	for _, p := range b.Pieces(c) {
		if pieceHasMove(b, p) {
			return true
		}
	}
	return false
}

func simpleMovesFrom(b *board.Board, p board.Piece) []*move.Move {
	var moves []*move.Move
	for _, t := range b.TemplatesAt(p.Loc).Simple {
		if !directionOK(b, p.Color, p.King, p.Loc, t) || !b.SquareAt(t).IsEmpty() {
			continue
		}
		m, err := move.NewSimpleMove(p.Loc, t)
		if err != nil {
			// templates are always one diagonal step
			panic(err)
		}
		moves = append(moves, m)
	}
	return moves
}

// jumpChainsFrom extends prefix depth-first from loc on a scratch copy of
// the board. A chain ends when no further capture exists or when the
// piece is crowned on this landing.
func jumpChainsFrom(b *board.Board, loc board.Location, c board.Color, king bool,
	prefix *move.Move) []*move.Move {

	var chains []*move.Move
	for _, t := range b.TemplatesAt(loc).Jump {
		if !canJump(b, c, king, loc, t) {
			continue
		}
		var m *move.Move
		var err error
		if prefix == nil {
			m, err = move.NewJumpMove(loc, t)
		} else {
			m, err = prefix.Extend(t)
		}
		if err != nil {
			// a piece captured earlier in the chain is gone from the
			// scratch board, so this cannot happen
			panic(err)
		}
		scratch := b.Clone()
		crowned, err := scratch.MovePiece(loc, t)
		if err != nil {
			panic(err)
		}
		scratch.Capture(loc.Mid(t))
		if crowned {
			chains = append(chains, m)
			continue
		}
		longer := jumpChainsFrom(scratch, t, c, king, m)
		if len(longer) == 0 {
			chains = append(chains, m)
		} else {
			chains = append(chains, longer...)
		}
	}
	return chains
}

func canJump(b *board.Board, c board.Color, king bool, from, to board.Location) bool {
	return directionOK(b, c, king, from, to) &&
		b.SquareAt(to).IsEmpty() &&
		b.SquareAt(from.Mid(to)).Holds(c.Opponent())
}

func directionOK(b *board.Board, c board.Color, king bool, from, to board.Location) bool {
	dr := to.Row - from.Row
	if dr == 0 {
		return false
	}
	if king {
		return true
	}
	return (dr < 0) == b.MovesUp(c)
}

func pieceHasMove(b *board.Board, p board.Piece) bool {
	t := b.TemplatesAt(p.Loc)
	for _, s := range t.Simple {
		if directionOK(b, p.Color, p.King, p.Loc, s) && b.SquareAt(s).IsEmpty() {
			return true
		}
	}
	for _, j := range t.Jump {
		if canJump(b, p.Color, p.King, p.Loc, j) {
			return true
		}
	}
	return false
}

// Validate checks m against b without changing b. A multi-segment jump is
// checked one segment at a time against a scratch copy that reflects the
// earlier segments.
func Validate(b *board.Board, m *move.Move) error {
	start := b.SquareAt(m.Start())
	c, ok := start.PieceColor()
	if !ok {
		return fmt.Errorf("%w: no piece at %v", ErrIllegalMove, m.Start())
	}
	king := start.IsKing()
	if m.Type() == move.MoveTypeSimple {
		if !directionOK(b, c, king, m.Start(), m.Target()) {
			return fmt.Errorf("%w: %v cannot move backward", ErrIllegalMove, m.Start())
		}
		if !b.SquareAt(m.Target()).IsEmpty() {
			return fmt.Errorf("%w: %v is not empty", ErrIllegalMove, m.Target())
		}
		return nil
	}
	scratch := b
	if m.Len() > 1 {
		scratch = b.Clone()
	}
	for i, seg := range m.Segments() {
		if !canJump(scratch, c, king, seg.From, seg.To) {
			return fmt.Errorf("%w: segment %d (%v -> %v) is not a capture",
				ErrIllegalMove, i, seg.From, seg.To)
		}
		if i == m.Len()-1 {
			break
		}
		crowned, err := scratch.MovePiece(seg.From, seg.To)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIllegalMove, err)
		}
		if crowned {
			return fmt.Errorf("%w: piece is crowned at %v and the move ends there",
				ErrIllegalMove, seg.To)
		}
		scratch.Capture(seg.From.Mid(seg.To))
	}
	return nil
}

// IsValidMove returns true if m is legal on b, ignoring the forced capture
// rule. Use PossibleMoves to enforce that.
func IsValidMove(b *board.Board, m *move.Move) bool {
	return Validate(b, m) == nil
}

package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/checkers/board"
)

func TestHashIsStableAcrossClones(t *testing.T) {
	is := is.New(t)
	z := New()
	b := board.NewStartingBoard(board.Red)
	is.Equal(z.Hash(b, board.Black), z.Hash(b.Clone(), board.Black))
	is.True(z.Hash(b, board.Black) != z.Hash(b, board.Red))
}

func TestBoardOrientationHashes(t *testing.T) {
	is := is.New(t)
	z := New()
	// same squares, but black moves the other way
	b := board.MustBoard(board.SingleJump)
	flipped, err := board.NewFromPlaintext(string(board.SingleJump), false)
	is.NoErr(err)
	is.Equal(b.Squares(), flipped.Squares())
	is.True(z.Hash(b, board.Black) != z.Hash(flipped, board.Black))
}

func TestKingsHashDifferently(t *testing.T) {
	is := is.New(t)
	z := New()
	b := board.New()
	is.NoErr(b.SetPiece(board.Loc(4, 3), board.Black, false))
	h := z.Hash(b, board.Black)
	is.NoErr(b.SetPiece(board.Loc(4, 3), board.Black, true))
	is.True(h != z.Hash(b, board.Black))
}

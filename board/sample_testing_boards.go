package board

// This file contains some sample positions, used solely for testing.
// Black moves up (toward row 0) in all of them.

// SampleBoard is a plaintext representation of a position.
type SampleBoard string

const (
	// StartingPosition is a standard new game with red on top.
	StartingPosition SampleBoard = `
   0 1 2 3 4 5 6 7
 0|- r - r - r - r|
 1|r - r - r - r -|
 2|- r - r - r - r|
 3|. - . - . - . -|
 4|- . - . - . - .|
 5|b - b - b - b -|
 6|- b - b - b - b|
 7|b - b - b - b -|
`
	// SingleJump has one black piece that must capture the lone red piece.
	// It is the only legal move for black.
	SingleJump SampleBoard = `
 0|- . - . - . - .|
 1|. - . - . - . -|
 2|- . - r - . - .|
 3|. - . - b - . -|
 4|- . - . - . - .|
 5|. - . - . - . -|
 6|- . - . - . - .|
 7|. - . - . - . -|
`
	// KingDoubleChain has a black king with two capture chains of two
	// pieces each, going up-left and up-right.
	KingDoubleChain SampleBoard = `
 0|- . - . - . - .|
 1|. - r - . - r -|
 2|- . - . - . - .|
 3|. - r - r - . -|
 4|- . - B - . - .|
 5|. - . - . - . -|
 6|- . - . - . - .|
 7|. - . - . - . -|
`
	// LastPieceFrozen: black must capture at 4,3 and the remaining red
	// piece at 6,7 is then stuck behind the black piece at 7,6.
	LastPieceFrozen SampleBoard = `
 0|- . - . - . - .|
 1|. - . - . - . -|
 2|- . - . - . - .|
 3|. - . - . - . -|
 4|- . - r - . - .|
 5|. - . - b - . -|
 6|- . - . - . - r|
 7|. - . - . - b -|
`
	// JumpAmongSimpleMoves: only the black piece at 4,3 can capture; the
	// others have simple moves that the capture rule takes away.
	JumpAmongSimpleMoves SampleBoard = `
 0|- r - . - . - .|
 1|. - . - . - . -|
 2|- . - . - . - .|
 3|. - . - r - . -|
 4|- . - b - . - .|
 5|b - . - . - b -|
 6|- . - b - . - .|
 7|. - . - . - . -|
`
	// PromotionMidChain: the black piece at 2,5 captures 1,4 and lands on
	// its king row at 0,3. As a king it could go on to capture 1,2.
	PromotionMidChain SampleBoard = `
 0|- . - . - . - .|
 1|. - r - r - . -|
 2|- . - . - b - .|
 3|. - . - . - . -|
 4|- . - . - . - .|
 5|. - . - . - . -|
 6|- . - . - . - .|
 7|. - . - . - . -|
`
	// PinnedPieces has black pieces on the left edge and in the corner
	// that are pinned down by red.
	PinnedPieces SampleBoard = `
 0|- . - . - . - .|
 1|. - . - . - . -|
 2|- . - . - . - .|
 3|. - . - . - . -|
 4|- r - . - . - .|
 5|b - . - . - . -|
 6|- . - . - . - .|
 7|. - . - . - . -|
`
)

// MustBoard builds a board from a sample position, with black moving up.
func MustBoard(s SampleBoard) *Board {
	b, err := NewFromPlaintext(string(s), true)
	if err != nil {
		panic(err)
	}
	return b
}

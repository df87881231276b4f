package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/checkers/board"
)

const bignum = 1<<63 - 2

// piece kinds, indexed by (color * 2) + king
const numPieceKinds = 4

// Zobrist generates 64-bit keys for checkers positions.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	posTable     [board.NumSquares][numPieceKinds]uint64
	redToMove    uint64
	blackMovesUp uint64
}

func (z *Zobrist) Initialize() {
	for i := 0; i < board.NumSquares; i++ {
		for j := 0; j < numPieceKinds; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.redToMove = frand.Uint64n(bignum) + 1
	z.blackMovesUp = frand.Uint64n(bignum) + 1
}

// New returns an initialized Zobrist.
func New() *Zobrist {
	z := &Zobrist{}
	z.Initialize()
	return z
}

func pieceKind(c board.Color, king bool) int {
	k := int(c) * 2
	if king {
		k++
	}
	return k
}

// Hash computes the key of a position from scratch. toMove is folded in so
// the same squares with a different side to move hash differently.
func (z *Zobrist) Hash(b *board.Board, toMove board.Color) uint64 {
	key := uint64(0)
	sqs := b.Squares()
	for i, sq := range sqs {
		c, ok := sq.PieceColor()
		if !ok {
			continue
		}
		key ^= z.posTable[i][pieceKind(c, sq.IsKing())]
	}
	if toMove == board.Red {
		key ^= z.redToMove
	}
	if b.BlackMovesUp() {
		key ^= z.blackMovesUp
	}
	return key
}

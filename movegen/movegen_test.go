package movegen

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func mustParse(s string) *move.Move {
	m, err := move.Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func TestStartingMoves(t *testing.T) {
	is := is.New(t)
	b := board.NewStartingBoard(board.Red)
	moves := PossibleMoves(b, board.Black)
	is.Equal(len(moves), 7)
	for _, m := range moves {
		is.Equal(m.Type(), move.MoveTypeSimple)
		is.Equal(m.Start().Row, 5)
		is.Equal(m.Target().Row, 4)
	}
	is.Equal(len(PossibleMoves(b, board.Red)), 7)
	is.True(HasMoves(b, board.Red))
	is.Equal(len(ForcedJumps(b, board.Black)), 0)
}

func TestForcedSingleJump(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.SingleJump)
	moves := PossibleMoves(b, board.Black)
	is.Equal(len(moves), 1)
	is.True(moves[0].Equal(mustParse("3,4-1,2")))
	is.Equal(moves[0].CapturedLocations(), []board.Location{board.Loc(2, 3)})

	// A simple move is still a valid move on its own, the forced capture
	// rule is applied by generation.
	is.True(IsValidMove(b, mustParse("3,4-2,5")))
}

func TestForcedCaptureAmongSimpleMoves(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.JumpAmongSimpleMoves)
	moves := PossibleMoves(b, board.Black)
	is.Equal(len(moves), 1)
	is.True(moves[0].Equal(mustParse("4,3-2,5")))
	is.Equal(ForcedJumps(b, board.Black), moves)
	// the other pieces could move if there were no capture
	is.True(IsValidMove(b, mustParse("5,0-4,1")))
	is.True(IsValidMove(b, mustParse("6,3-5,2")))

	is.NoErr(b.ClearPiece(board.Loc(3, 4)))
	moves = PossibleMoves(b, board.Black)
	is.Equal(len(moves), 7)
	for _, m := range moves {
		is.Equal(m.Type(), move.MoveTypeSimple)
	}
	is.Equal(len(ForcedJumps(b, board.Black)), 0)
}

func TestKingChainsAreMaximal(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.KingDoubleChain)
	moves := PossibleMoves(b, board.Black)
	is.Equal(len(moves), 2)
	is.True(moves[0].Equal(mustParse("4,3-2,1-0,3")))
	is.True(moves[1].Equal(mustParse("4,3-2,5-0,7")))
	for _, m := range moves {
		is.Equal(m.Len(), 2)
	}
	// the single captures are not offered on their own
	for _, m := range moves {
		is.True(!m.Equal(mustParse("4,3-2,1")))
		is.True(!m.Equal(mustParse("4,3-2,5")))
	}
}

func TestPromotionEndsChain(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.PromotionMidChain)
	moves := PossibleMoves(b, board.Black)
	is.Equal(len(moves), 1)
	is.True(moves[0].Equal(mustParse("2,5-0,3")))

	// As a king it could keep going, but the move ends when it is crowned.
	err := Validate(b, mustParse("2,5-0,3-2,1"))
	is.True(errors.Is(err, ErrIllegalMove))

	before := b.Hash()
	u, err := Execute(b, moves[0])
	is.NoErr(err)
	is.True(u.Crowned)
	is.True(b.At(0, 3).IsKing())
	is.NoErr(Unexecute(b, moves[0], u))
	is.Equal(b.Hash(), before)
	is.True(!b.At(2, 5).IsKing())
}

func TestValidate(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.SingleJump)
	cases := []struct {
		mv    string
		valid bool
	}{
		{"3,4-1,2", true},
		{"3,4-2,5", true},
		{"3,4-4,5", false}, // backward
		{"3,4-4,3", false},
		{"3,4-1,6", false}, // nothing to capture
		{"2,3-3,2", true},  // red moves down
		{"2,3-1,2", false},
		{"4,5-3,6", false}, // no piece
	}
	for _, tc := range cases {
		is.Equal(IsValidMove(b, mustParse(tc.mv)), tc.valid)
	}
}

func TestExecuteIllegalLeavesBoard(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.SingleJump)
	before := b.Hash()
	_, err := Execute(b, mustParse("3,4-4,5"))
	is.True(errors.Is(err, ErrIllegalMove))
	is.Equal(b.Hash(), before)

	// second segment is invalid, the first must not be applied either
	b = board.MustBoard(board.KingDoubleChain)
	before = b.Hash()
	_, err = Execute(b, mustParse("4,3-2,1-0,3-2,5"))
	is.True(errors.Is(err, ErrIllegalMove))
	is.Equal(b.Hash(), before)
}

func TestExecuteAndUndo(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.KingDoubleChain)
	before := b.Clone()
	m := mustParse("4,3-2,1-0,3")
	u, err := Execute(b, m)
	is.NoErr(err)
	is.True(!u.Crowned)
	is.Equal(len(u.Captured), 2)
	is.Equal(u.Captured[0], CapturedPiece{Loc: board.Loc(3, 2), Color: board.Red})
	is.Equal(b.PieceCount(board.Red), 2)
	is.True(b.At(0, 3).IsKing())

	is.NoErr(Unexecute(b, m, u))
	is.True(b.Equal(before))
}

func TestUndoRestoresCapturedKing(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.SingleJump)
	is.NoErr(b.SetPiece(board.Loc(2, 3), board.Red, true))
	before := b.Clone()
	m := mustParse("3,4-1,2")
	u, err := Execute(b, m)
	is.NoErr(err)
	is.True(u.Captured[0].King)
	is.NoErr(Unexecute(b, m, u))
	is.True(b.Equal(before))
}

func TestFrozenAfterCapture(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.LastPieceFrozen)
	moves := PossibleMoves(b, board.Black)
	is.Equal(len(moves), 1)
	is.Equal(FrozenPieces(b, board.Red), 1)
	_, err := Execute(b, moves[0])
	is.NoErr(err)
	is.Equal(b.PieceCount(board.Red), 1)
	is.True(!HasMoves(b, board.Red))
	is.Equal(FrozenPieces(b, board.Red), 1)
	is.Equal(len(PossibleMoves(b, board.Red)), 0)
}

func TestPinnedDown(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.PinnedPieces)
	is.Equal(PinnedDownPieces(b, board.Black), 1)
	is.Equal(PinnedDownPieces(b, board.Red), 0)
	is.Equal(FrozenPieces(b, board.Black), 0)

	// a lone king in the middle of the board is free
	b = board.New()
	is.NoErr(b.SetPiece(board.Loc(4, 3), board.Black, true))
	p, _ := b.PieceAt(board.Loc(4, 3))
	is.True(!IsPinnedDown(b, p))

	// in the corner with an opponent on its only diagonal
	b = board.New()
	is.NoErr(b.SetPiece(board.Loc(7, 0), board.Black, true))
	is.NoErr(b.SetPiece(board.Loc(6, 1), board.Red, false))
	p, _ = b.PieceAt(board.Loc(7, 0))
	is.True(IsPinnedDown(b, p))
}

func anyCapture(b *board.Board, c board.Color) bool {
	for _, p := range b.Pieces(c) {
		for _, t := range b.TemplatesAt(p.Loc).Jump {
			if canJump(b, c, p.King, p.Loc, t) {
				return true
			}
		}
	}
	return false
}

func isStrictPrefix(a, b *move.Move) bool {
	pa, pb := a.Path(), b.Path()
	if len(pa) >= len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

// checkPly checks every generated move for c on b, leaving b unchanged.
func checkPly(t *testing.T, b *board.Board, c board.Color, moves []*move.Move) {
	is := is.New(t)
	is.Equal(len(moves) > 0, HasMoves(b, c))

	captures := anyCapture(b, c)
	for _, m := range moves {
		is.Equal(m.CapturesPieces(), captures) // forced capture
		is.NoErr(Validate(b, m))

		data, err := json.Marshal(m)
		is.NoErr(err)
		var back move.Move
		is.NoErr(json.Unmarshal(data, &back))
		is.True(back.Equal(m))

		before := b.Clone()
		start, _ := b.PieceAt(m.Start())
		u, err := Execute(b, m)
		is.NoErr(err)
		if m.CapturesPieces() && !u.Crowned {
			// maximal: the piece cannot capture again from where it stopped
			for _, t := range b.TemplatesAt(m.FinalTarget()).Jump {
				is.True(!canJump(b, c, start.King, m.FinalTarget(), t))
			}
		}
		is.Equal(len(u.Captured), len(m.CapturedLocations()))
		is.NoErr(Unexecute(b, m, u))
		is.True(b.Equal(before)) // undo is the inverse of execute
	}
	for i, m := range moves {
		for j, o := range moves {
			if i != j {
				is.True(!m.Equal(o))
				is.True(!isStrictPrefix(m, o))
			}
		}
	}

	data, err := b.Serialize()
	is.NoErr(err)
	back, err := board.Deserialize(data)
	is.NoErr(err)
	is.True(back.Equal(b))
	is.Equal(back.Hash(), b.Hash())
}

func TestRandomPlayoutInvariants(t *testing.T) {
	games, maxPlies := 200, 150
	if testing.Short() {
		games = 20
	}
	var seed [32]byte
	copy(seed[:], "random-playout-invariants")
	rng := frand.NewCustom(seed[:], 1024, 12)
	plies := 0
	for g := 0; g < games; g++ {
		top := board.Red
		if g%2 == 1 {
			top = board.Black
		}
		b := board.NewStartingBoard(top)
		c := board.Black
		for n := 0; n < maxPlies; n++ {
			moves := PossibleMoves(b, c)
			checkPly(t, b, c, moves)
			if len(moves) == 0 {
				break
			}
			m := moves[rng.Intn(len(moves))]
			if _, err := Execute(b, m); err != nil {
				t.Fatalf("game %d ply %d: %v", g, n, err)
			}
			// replaying the move is illegal, and must not touch the board
			before := b.Hash()
			if _, err := Execute(b, m); !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("game %d ply %d: replayed %v: %v", g, n, m, err)
			}
			if b.Hash() != before {
				t.Fatalf("game %d ply %d: illegal execute changed the board", g, n)
			}
			plies++
			c = c.Opponent()
			if b.PieceCount(c) == 0 {
				break
			}
		}
	}
	t.Logf("%d games, %d plies", games, plies)
}

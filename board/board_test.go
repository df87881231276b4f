package board

import (
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestInitializePieces(t *testing.T) {
	is := is.New(t)
	b := NewStartingBoard(Red)
	is.Equal(b.PieceCount(Black), 12)
	is.Equal(b.PieceCount(Red), 12)
	is.Equal(b.KingCount(Black), 0)
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			sq := b.At(r, c)
			if !IsDark(r, c) {
				is.True(!sq.Playable())
				continue
			}
			switch {
			case r <= 2:
				is.True(sq.Holds(Red))
			case r >= 5:
				is.True(sq.Holds(Black))
			default:
				is.True(sq.IsEmpty())
			}
		}
	}
	is.True(b.Equal(MustBoard(StartingPosition)))
}

func TestSetTopPlayer(t *testing.T) {
	is := is.New(t)
	b := NewStartingBoard(Black)
	is.True(!b.BlackMovesUp())
	is.Equal(b.KingRow(Black), 7)
	is.Equal(b.HomeRow(Black), 0)
	is.Equal(b.KingRow(Red), 0)
	is.Equal(b.ForwardDirection(Red), -1)
	is.True(b.At(0, 1).Holds(Black))
	is.True(b.At(7, 0).Holds(Red))
}

func TestHash(t *testing.T) {
	is := is.New(t)
	b := MustBoard(SingleJump)
	h := b.Hash()
	lines := strings.Split(strings.TrimSuffix(h, "\n"), "\n")
	is.Equal(len(lines), 8)
	is.Equal(lines[2], "_ _r_ _ ")
	is.Equal(lines[3], " _ _b_ _")
}

func TestCloneIsIndependent(t *testing.T) {
	is := is.New(t)
	b := NewStartingBoard(Red)
	c := b.Clone()
	is.Equal(b.Hash(), c.Hash())
	is.True(b.Equal(c))

	_, err := c.MovePiece(Loc(5, 0), Loc(4, 1))
	is.NoErr(err)
	is.True(b.Hash() != c.Hash())
	is.True(b.At(5, 0).Holds(Black))
}

func TestMovePieceCrowns(t *testing.T) {
	is := is.New(t)
	b := New()
	is.NoErr(b.SetPiece(Loc(1, 2), Black, false))
	crowned, err := b.MovePiece(Loc(1, 2), Loc(0, 1))
	is.NoErr(err)
	is.True(crowned)
	is.True(b.At(0, 1).IsKing())

	// already a king, so not crowned again
	crowned, err = b.MovePiece(Loc(0, 1), Loc(1, 0))
	is.NoErr(err)
	is.True(!crowned)

	_, err = b.MovePiece(Loc(3, 4), Loc(2, 3))
	is.True(err != nil)
}

func TestCaptureUncapture(t *testing.T) {
	is := is.New(t)
	b := MustBoard(SingleJump)
	before := b.Hash()
	b.Capture(Loc(2, 3))
	is.True(b.At(2, 3).IsEmpty())
	is.NoErr(b.Uncapture(Red, Loc(2, 3), false))
	is.Equal(b.Hash(), before)
	is.True(b.Uncapture(Red, Loc(3, 4), false) != nil)
}

func TestSetPieceRejectsLightSquare(t *testing.T) {
	is := is.New(t)
	b := New()
	is.Equal(b.SetPiece(Loc(0, 0), Black, false), ErrNotPlayable)
	is.Equal(b.SetPiece(Loc(8, 1), Black, false), ErrOffBoard)
	is.Equal(b.ClearPiece(Loc(3, 3)), ErrNotPlayable)
}

func TestPotentialKingSquares(t *testing.T) {
	is := is.New(t)
	b := NewStartingBoard(Red)
	// black kings on row 0 which is full of red pieces
	is.Equal(len(b.PotentialKingSquares(Black)), 0)
	is.NoErr(b.ClearPiece(Loc(0, 3)))
	is.Equal(b.PotentialKingSquares(Black), []Location{Loc(0, 3)})
	// red kings on row 7, all its own squares are black's
	is.Equal(len(b.PotentialKingSquares(Red)), 0)
}

func TestMovesToLocation(t *testing.T) {
	is := is.New(t)
	p := Piece{Loc: Loc(5, 2), Color: Black}
	n, ok := p.MovesToLocation(Loc(0, 1))
	is.True(ok)
	is.Equal(n, 5)
	_, ok = p.MovesToLocation(Loc(4, 7))
	is.True(!ok)

	p.King = true
	n, ok = p.MovesToLocation(Loc(4, 7))
	is.True(ok)
	is.Equal(n, 5)

	n, ok = Piece{Loc: Loc(5, 2), Color: Black}.ShortestDistanceTo(
		[]Location{Loc(0, 7), Loc(0, 3), Loc(0, 1)})
	is.True(ok)
	is.Equal(n, 5)
}

func TestDistanceFromHomeRow(t *testing.T) {
	is := is.New(t)
	b := MustBoard(SingleJump)
	is.Equal(b.DistanceFromHomeRow(Piece{Loc: Loc(3, 4), Color: Black}), 4)
	is.Equal(b.DistanceFromHomeRow(Piece{Loc: Loc(2, 3), Color: Red}), 2)
}

func TestTemplates(t *testing.T) {
	is := is.New(t)
	b := New()
	tm := b.TemplatesAt(Loc(0, 1))
	is.Equal(tm.Simple, []Location{Loc(1, 0), Loc(1, 2)})
	is.Equal(tm.Jump, []Location{Loc(2, 3)})
	tm = b.TemplatesAt(Loc(4, 3))
	is.Equal(tm.Simple, []Location{Loc(3, 2), Loc(3, 4), Loc(5, 2), Loc(5, 4)})
	is.Equal(tm.Jump, []Location{Loc(2, 1), Loc(2, 5), Loc(6, 1), Loc(6, 5)})
	is.True(b.TemplatesAt(Loc(0, 0)) == nil)
}

func TestSerializeRoundTrip(t *testing.T) {
	is := is.New(t)
	for _, sb := range []SampleBoard{StartingPosition, KingDoubleChain, LastPieceFrozen} {
		b := MustBoard(sb)
		data, err := b.Serialize()
		is.NoErr(err)
		b2, err := Deserialize(data)
		is.NoErr(err)
		is.True(b.Equal(b2))
		is.Equal(b.Hash(), b2.Hash())
	}
}

func TestDeserializeLegacy(t *testing.T) {
	is := is.New(t)
	data := `{"kingRow":[0,7],"pieces":[
		[{"type":0,"_king":false,"row":3,"col":4}],
		[{"type":1,"_king":true,"row":2,"col":3}]]}`
	b, err := Deserialize([]byte(data))
	is.NoErr(err)
	is.True(b.BlackMovesUp())
	is.True(b.At(3, 4).Holds(Black))
	is.True(b.At(2, 3).IsKing())
	is.Equal(b.PieceCount(Red), 1)
}

func TestDeserializeMalformed(t *testing.T) {
	is := is.New(t)
	cases := []string{
		`{}`,
		`{"blackMovesUp":true,"squares":[1,2,3]}`,
		`{"kingRow":[0,7],"pieces":[[{"type":0,"row":0,"col":0}]]}`,
		`{"kingRow":[0,7],"pieces":[[{"type":5,"row":0,"col":1}]]}`,
		`not json`,
	}
	for _, c := range cases {
		_, err := Deserialize([]byte(c))
		is.True(err != nil)
	}
	sqs := make([]string, NumSquares)
	for i := range sqs {
		sqs[i] = "1"
	}
	_, err := Deserialize([]byte(`{"blackMovesUp":true,"squares":[` + strings.Join(sqs, ",") + `]}`))
	is.True(err != nil) // light squares must be 0
}

func TestDisplayTextRoundTrip(t *testing.T) {
	is := is.New(t)
	b := MustBoard(KingDoubleChain)
	b2, err := NewFromPlaintext(b.ToDisplayText(), true)
	is.NoErr(err)
	is.True(b.Equal(b2))
}

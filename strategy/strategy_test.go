package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
	"github.com/domino14/checkers/movegen"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

type ply struct {
	post *Assessment
	d    Disposition
}

type fakeFuture struct {
	player board.Color
	pre    *Assessment
	plies  []ply
	score  float64
	notes  string
}

func (f *fakeFuture) Player() board.Color            { return f.player }
func (f *fakeFuture) PreMoveAssessment() *Assessment { return f.pre }
func (f *fakeFuture) Trace() bool                    { return false }
func (f *fakeFuture) Score() float64                 { return f.score }
func (f *fakeFuture) SetScore(s float64)             { f.score = s }
func (f *fakeFuture) SetNotes(n string)              { f.notes = n }

func (f *fakeFuture) ForEachAssessment(fn func(pre, post *Assessment, d Disposition)) {
	pre := f.pre
	for _, p := range f.plies {
		fn(pre, p.post, p.d)
		pre = p.post
	}
}

// counts builds an assessment with only piece and king counts set.
func counts(black, blackKings, red, redKings int, next board.Color) *Assessment {
	return &Assessment{
		BlackStats: BoardStats{Pieces: black, Kings: blackKings},
		RedStats:   BoardStats{Pieces: red, Kings: redKings},
		NextMover:  next,
	}
}

// line builds a future for black where plies alternate black and red.
func line(pre *Assessment, posts ...*Assessment) *fakeFuture {
	f := &fakeFuture{player: board.Black, pre: pre}
	prev := pre
	for _, post := range posts {
		f.plies = append(f.plies, ply{post: post, d: CalculateDisposition(board.Black, prev, post)})
		prev = post
	}
	return f
}

func TestGetStatsStartingBoard(t *testing.T) {
	is := is.New(t)
	b := board.NewStartingBoard(board.Red)
	s := GetStats(b, board.Black)
	is.Equal(s.Pieces, 12)
	is.Equal(s.Kings, 0)
	is.Equal(s.PiecesOnHomeRow, 4)
	assert.InDelta(t, 12.0/7, s.Penetration, 1e-9)
	is.Equal(s.FrozenPieces, 8)
	is.Equal(s.PiecesWithAccessToKingRow, 0)
	is.True(!s.Lost())
	is.Equal(s, GetStats(b.Clone(), board.Black))
}

func TestStatsLostWhenFrozen(t *testing.T) {
	is := is.New(t)
	b := board.MustBoard(board.LastPieceFrozen)
	moves := movegen.PossibleMoves(b, board.Black)
	_, err := movegen.Execute(b, moves[0])
	is.NoErr(err)
	s := GetStats(b, board.Red)
	is.Equal(s.Pieces, 1)
	is.True(s.Lost())
	is.True(GetStats(board.New(), board.Red).Lost())
}

func TestMaxPenetration(t *testing.T) {
	assert.InDelta(t, 4+24.0/7+20.0/7, MaxPenetration, 1e-9)
	assert.InDelta(t, 3.0, maxPenetration(3), 1e-9)
}

func TestDispositionString(t *testing.T) {
	is := is.New(t)
	is.Equal(Disposition{}.String(), "no change")
	d := Disposition{PiecesCaptured: 2, OpponentKingsMade: -1, KingsMade: 1}
	is.Equal(d.String(), "cap'd 2 (1K) kinged 1 ")
	d = Disposition{PiecesLost: 1, NoOpponentMoves: true}
	is.Equal(d.String(), "lost 1 NO OPPONENT MOVES ")
	is.True(d.HasChange())
	is.True(!Disposition{NoMoves: true}.HasChange())
}

func TestCalculateDisposition(t *testing.T) {
	is := is.New(t)
	pre := counts(12, 0, 12, 1, board.Black)
	post := counts(11, 1, 10, 0, board.Red)
	d := CalculateDisposition(board.Black, pre, post)
	is.Equal(d, Disposition{PiecesLost: 1, PiecesCaptured: 2, KingsMade: 1, OpponentKingsMade: -1})
	d = CalculateDisposition(board.Red, pre, post)
	is.Equal(d, Disposition{PiecesLost: 2, PiecesCaptured: 1, KingsMade: -1, OpponentKingsMade: 1})
}

func TestFactory(t *testing.T) {
	is := is.New(t)
	is.Equal(New("", nil).Name(), Strategy001Name)
	is.Equal(New("default", nil).Name(), Strategy001Name)
	is.Equal(New("no-such-strategy", nil).Name(), Strategy001Name)
	for _, n := range Names {
		is.Equal(New(n, nil).Name(), n)
	}
}

func TestWinAndLossAreClamped(t *testing.T) {
	is := is.New(t)
	pre := counts(3, 0, 1, 0, board.Black)
	noPieces := counts(3, 0, 0, 0, board.Red)

	stuck := counts(3, 0, 1, 0, board.Red)
	stuck.RedStats.FrozenPieces = 1

	wiped := counts(0, 0, 1, 0, board.Black)

	for _, n := range Names {
		s := New(n, nil)
		won := line(pre, noPieces)
		s.ScoreFutures([]Future{won})
		is.Equal(won.score, 1000.0)

		blocked := line(pre, stuck)
		blocked.plies[0].d.NoOpponentMoves = true
		s.ScoreFutures([]Future{blocked})
		is.Equal(blocked.score, 1000.0)

		lost := line(pre, counts(3, 0, 1, 0, board.Red), wiped)
		s.ScoreFutures([]Future{lost})
		is.Equal(lost.score, -1000.0)
	}
}

func TestStrategy001PrefersEarlierGain(t *testing.T) {
	is := is.New(t)
	pre := counts(12, 0, 12, 0, board.Black)
	early := line(pre,
		counts(12, 0, 11, 0, board.Red),
		counts(12, 0, 11, 0, board.Black))
	late := line(pre,
		counts(12, 0, 12, 0, board.Red),
		counts(12, 0, 12, 0, board.Black),
		counts(12, 0, 11, 0, board.Red))
	s := New(Strategy001Name, nil)
	for i := 0; i < 20; i++ {
		is.Equal(s.PickBestFuture([]Future{late, early}), early)
	}
	is.Equal(early.score, 1.0)
	is.Equal(late.score, 1.0)

	// a king is worth a bit less than a piece
	king := line(pre, counts(12, 1, 12, 0, board.Red))
	is.Equal(s.PickBestFuture([]Future{king, early}), early)
	assert.InDelta(t, 0.9, king.score, 1e-9)
}

func TestFirstBestWins(t *testing.T) {
	is := is.New(t)
	pre := counts(12, 0, 12, 0, board.Black)
	a := line(pre, counts(12, 0, 12, 0, board.Red))
	b := line(pre, counts(12, 0, 12, 0, board.Red))
	for _, n := range []string{Strategy002Name, Strategy003Name, Strategy004Name} {
		is.Equal(New(n, nil).PickBestFuture([]Future{a, b}), a)
	}
}

func TestStrategy004PrefersCapture(t *testing.T) {
	is := is.New(t)
	pre := counts(12, 0, 12, 0, board.Black)
	capture := line(pre, counts(12, 0, 11, 0, board.Red), counts(12, 0, 11, 0, board.Black))
	quiet := line(pre, counts(12, 0, 12, 0, board.Red), counts(12, 0, 12, 0, board.Black))
	s := New(Strategy004Name, nil)
	is.Equal(s.PickBestFuture([]Future{quiet, capture}), capture)
	is.True(capture.score > quiet.score)
	is.True(capture.notes != "")
}

func TestStrategy004Certainty(t *testing.T) {
	pre := counts(12, 0, 12, 0, board.Black)
	reply := counts(12, 0, 12, 0, board.Red)
	reply.PossibleMoves = 4
	f := line(pre, reply, counts(12, 0, 12, 0, board.Black))
	s := &Strategy004{weights: DefaultWeights()}
	sc := s.components(f)
	assert.InDelta(t, 0.25, sc.Certainty, 1e-9)

	// forced replies are certain
	reply.PossibleMovesAreJumps = true
	sc = s.components(f)
	assert.InDelta(t, 1.0, sc.Certainty, 1e-9)
}

func TestStrategy005SeekAndDestroy(t *testing.T) {
	is := is.New(t)
	s := NewStrategy005(DefaultWeights())
	s.AssessBoard(board.NewStartingBoard(board.Red), board.Black)
	is.True(!s.SeekAndDestroy())

	// decided once
	b := board.New()
	is.NoErr(b.SetPiece(board.Loc(4, 3), board.Black, true))
	is.NoErr(b.SetPiece(board.Loc(0, 1), board.Red, false))
	s.AssessBoard(b, board.Black)
	is.True(!s.SeekAndDestroy())

	s = NewStrategy005(DefaultWeights())
	a := s.AssessBoard(b, board.Black)
	is.True(s.SeekAndDestroy())
	// four moves away from the only target
	assert.InDelta(t, 3.0/7, a.BlackStats.UserField0, 1e-9)
	is.Equal(a.RedStats.UserField0, 0.0)
}

func TestStrategy005KingsMoveTogether(t *testing.T) {
	b := board.New()
	assert.NoError(t, b.SetPiece(board.Loc(4, 3), board.Black, true))
	assert.NoError(t, b.SetPiece(board.Loc(2, 1), board.Black, true))
	assert.NoError(t, b.SetPiece(board.Loc(0, 1), board.Red, true))
	var st BoardStats
	augmentForSeekAndDestroy(b, &st, board.Black)
	// proximities 3/7 and 5/7, straggle 2/7
	assert.InDelta(t, 4.0/7-(1.0/7)/2, st.UserField0, 1e-9)
}

func TestCompanionship(t *testing.T) {
	b := board.New()
	assert.NoError(t, b.SetPiece(board.Loc(4, 3), board.Black, false))
	p, _ := b.PieceAt(board.Loc(4, 3))
	assert.Equal(t, 1.0, isolation(b, p))
	assert.NoError(t, b.SetPiece(board.Loc(5, 4), board.Black, false))
	// the neighbour is inside all three rings
	assert.InDelta(t, 1-(1+0.5+1.0/3)/12, isolation(b, p), 1e-9)
}

func TestStatsCache(t *testing.T) {
	is := is.New(t)
	GlobalStatsCache.Reset(0.0000001)
	t.Cleanup(func() { GlobalStatsCache.Reset(0) })

	b := board.NewStartingBoard(board.Red)
	black, red := GlobalStatsCache.Stats(b)
	black2, red2 := GlobalStatsCache.Stats(b.Clone())
	is.Equal(black, black2)
	is.Equal(red, red2)
	is.Equal(black, GetStats(b, board.Black))
	lookups, hits, created := GlobalStatsCache.Counters()
	is.Equal(lookups, uint64(2))
	is.Equal(hits, uint64(1))
	is.Equal(created, uint64(1))

	// augmenting an assessment does not write through to the cache
	a := NewAssessment(b, board.Black)
	a.BlackStats.UserField0 = 5
	black3, _ := GlobalStatsCache.Stats(b)
	is.Equal(black3.UserField0, 0.0)

	GlobalStatsCache.Reset(0)
	black4, _ := GlobalStatsCache.Stats(b)
	is.Equal(black4, black)
	lookups, _, _ = GlobalStatsCache.Counters()
	is.Equal(lookups, uint64(0))
}

func TestWeightsFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "weights.yaml")
	is.NoErr(os.WriteFile(path, []byte("strategy004:\n  king: 2.5\nwin_score: 500\n"), 0644))

	w, err := ReadWeights(path)
	is.NoErr(err)
	is.Equal(w.Strategy004.King, 2.5)
	is.Equal(w.WinScore, 500.0)
	is.Equal(w.OpponentPenetration, 0.7)

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigStrategyParamsPath, path)
	w1, err := LoadWeights(cfg)
	is.NoErr(err)
	w2, err := LoadWeights(cfg)
	is.NoErr(err)
	is.True(w1 == w2)

	_, err = WeightsCacheLoadFunc(cfg, "leavefile:foo")
	is.True(err != nil)

	w, err = LoadWeights(config.DefaultConfig())
	is.NoErr(err)
	is.Equal(*w, *DefaultWeights())
}

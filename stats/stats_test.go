package stats

import (
	"math"
	"strings"
	"testing"

	"github.com/matryer/is"
)

const epsilon = 1e-6

func fuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestMoveScores(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores   []float64
		mean     float64
		stdev    float64
		min, max float64
	}
	cases := []tc{
		{[]float64{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638, 10, 23},
		{[]float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891, 10, 124},
		{[]float64{1}, 1, 0, 1, 1},
		{[]float64{}, 0, 0, 0, 0},
		{[]float64{-1, -1}, -1, 0, -1, -1},
	}
	for _, c := range cases {
		s := NewMoveScores(1000)
		for _, score := range c.scores {
			s.Add(score)
		}
		is.Equal(s.N(), len(c.scores))
		is.True(fuzzyEqual(s.Mean(), c.mean))
		is.True(fuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Min(), c.min)
		is.Equal(s.Max(), c.max)
	}
}

func TestMoveScoresDecided(t *testing.T) {
	is := is.New(t)
	s := NewMoveScores(1000)
	for _, score := range []float64{0.5, 1000, 1500, -1000, -0.5} {
		s.Add(score)
	}
	is.Equal(s.N(), 2)
	is.Equal(s.Won(), 2)
	is.Equal(s.Lost(), 1)
	is.True(fuzzyEqual(s.Mean(), 0))
	is.Equal(s.Max(), 0.5)
	is.True(strings.HasSuffix(s.String(), "over 2 moves; saw a win 2 times, a loss 1 times"))

	// without a threshold every score counts
	all := NewMoveScores(0)
	all.Add(1000)
	all.Add(-1000)
	is.Equal(all.N(), 2)
	is.Equal(all.Won(), 0)
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(TwoTailedP(1.959964)-0.05) < 1e-5)
	is.True(fuzzyEqual(TwoTailedP(0), 1))
}

func TestRecord(t *testing.T) {
	is := is.New(t)
	r := Record{Wins: 60, Losses: 30, Draws: 10}
	is.Equal(r.Games(), 100)
	is.True(fuzzyEqual(r.Score(), 0.65))
	is.True(fuzzyEqual(r.Z(), 3))
	is.True(r.Significant(99))
	lo, hi := r.Interval(95)
	is.True(lo < 0.65 && hi > 0.65)

	even := Record{Wins: 5, Losses: 5}
	is.True(!even.Significant(90))
	is.Equal(Record{}.Score(), 0.0)
	is.True(!Record{}.Significant(95))
}

func TestSummarizeLengths(t *testing.T) {
	is := is.New(t)
	l := SummarizeLengths([]float64{40, 10, 30, 20})
	is.Equal(l.N, 4)
	is.True(fuzzyEqual(l.Mean, 25))
	is.Equal(l.Median, 20.0)
	is.Equal(l.P90, 40.0)
	is.Equal(SummarizeLengths(nil), Lengths{})
}

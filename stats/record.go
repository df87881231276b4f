package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Record is a win/loss/draw tally from one side's point of view.
type Record struct {
	Wins   int
	Losses int
	Draws  int
}

func (r Record) Games() int {
	return r.Wins + r.Losses + r.Draws
}

// Score counts a draw as half a win.
func (r Record) Score() float64 {
	n := r.Games()
	if n == 0 {
		return 0
	}
	return (float64(r.Wins) + float64(r.Draws)/2) / float64(n)
}

// Z tests the score against an even match, using the normal
// approximation.
func (r Record) Z() float64 {
	n := r.Games()
	if n == 0 {
		return 0
	}
	return (r.Score() - 0.5) / math.Sqrt(0.25/float64(n))
}

// Interval is the confidence interval of the score, confidence being a
// percentage.
func (r Record) Interval(confidence float64) (float64, float64) {
	n := r.Games()
	if n == 0 {
		return 0, 1
	}
	p := r.Score()
	half := ZVal(confidence) * math.Sqrt(p*(1-p)/float64(n))
	return math.Max(0, p-half), math.Min(1, p+half)
}

// Significant returns true if the score differs from an even match at the
// given confidence.
func (r Record) Significant(confidence float64) bool {
	return r.Games() > 0 && math.Abs(r.Z()) > ZVal(confidence)
}

func (r Record) String() string {
	return fmt.Sprintf("+%d -%d =%d (%.1f%%, p=%.4f)", r.Wins, r.Losses, r.Draws,
		100*r.Score(), TwoTailedP(r.Z()))
}

// Lengths summarizes a sample such as game lengths in plies.
type Lengths struct {
	N      int
	Mean   float64
	Stdev  float64
	Median float64
	P90    float64
}

func SummarizeLengths(xs []float64) Lengths {
	if len(xs) == 0 {
		return Lengths{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mean, sd := stat.MeanStdDev(sorted, nil)
	return Lengths{
		N:      len(sorted),
		Mean:   mean,
		Stdev:  sd,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}

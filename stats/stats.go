// Package stats summarizes autoplay runs: the scores the engine gave its
// moves, win/loss records, and game lengths.
package stats

import (
	"fmt"
	"math"
)

// MoveScores accumulates the scores the engine gave the moves it chose.
// Scores at or past Decided in magnitude mean the search saw a won or lost
// game; they are counted apart so they do not swamp the mean of ordinary
// positions.
type MoveScores struct {
	Decided float64

	n        int
	mean, m2 float64
	min, max float64
	won      int
	lost     int
}

func NewMoveScores(decided float64) *MoveScores {
	return &MoveScores{Decided: decided}
}

func (s *MoveScores) Add(score float64) {
	switch {
	case s.Decided > 0 && score >= s.Decided:
		s.won++
		return
	case s.Decided > 0 && score <= -s.Decided:
		s.lost++
		return
	}
	s.n++
	if s.n == 1 {
		s.min, s.max = score, score
	} else {
		s.min = math.Min(s.min, score)
		s.max = math.Max(s.max, score)
	}
	// Welford
	d := score - s.mean
	s.mean += d / float64(s.n)
	s.m2 += d * (score - s.mean)
}

// N is the number of ordinary (undecided) scores.
func (s *MoveScores) N() int    { return s.n }
func (s *MoveScores) Won() int  { return s.won }
func (s *MoveScores) Lost() int { return s.lost }

func (s *MoveScores) Mean() float64 { return s.mean }
func (s *MoveScores) Min() float64  { return s.min }
func (s *MoveScores) Max() float64  { return s.max }

// Stdev is the sample standard deviation of the ordinary scores.
func (s *MoveScores) Stdev() float64 {
	if s.n < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.n-1))
}

func (s *MoveScores) String() string {
	return fmt.Sprintf("mean %.4f  stdev %.4f  range [%.4f, %.4f]  over %d moves; saw a win %d times, a loss %d times",
		s.mean, s.Stdev(), s.min, s.max, s.n, s.won, s.lost)
}

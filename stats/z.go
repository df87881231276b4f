package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var unitNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	area := (1 + (confidenceInterval / 100)) / 2
	return unitNormal.Quantile(area)
}

// TwoTailedP is the probability of a standard normal value at least as far
// from zero as z.
func TwoTailedP(z float64) float64 {
	return 2 * unitNormal.Survival(math.Abs(z))
}

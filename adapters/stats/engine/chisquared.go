package engine

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquared evaluates chi-square quantiles and tails for any df >= 0.
type ChiSquared struct{}

// Quantile computes the inverse CDF. A zero-df chi-square is the point mass
// at zero, so every quantile is 0.
func (ChiSquared) Quantile(p, df float64) float64 {
	if df == 0 {
		return 0
	}
	return distuv.ChiSquared{K: df}.Quantile(p)
}

// Survival computes P(X > x).
func (ChiSquared) Survival(x, df float64) float64 {
	if df == 0 {
		if x < 0 {
			return 1
		}
		return 0
	}
	return distuv.ChiSquared{K: df}.Survival(x)
}

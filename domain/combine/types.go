package combine

import (
	"cdpvals/domain/core"
	"cdpvals/domain/pvalue"
)

// SelfContainedResult is the outcome of combining dependent p-values with the
// Satterthwaite-corrected Lancaster statistic.
// INVARIANTS:
// - Correlation is square with one row per test
// - DegreesOfFreedom and Scale are finite and > 0
type SelfContainedResult struct {
	PValue           float64       `json:"pval"`               // Upper-tail probability of Statistic/Scale, not re-clamped
	Correlation      pvalue.Matrix `json:"cor"`                // Identity without a reference matrix, Pearson otherwise
	Statistic        float64       `json:"statistic"`          // Lancaster T
	Expectation      float64       `json:"expectation"`        // E(T) = sum of weights
	Variance         float64       `json:"variance"`           // Var(T), independent or reference-estimated
	DegreesOfFreedom float64       `json:"degrees_of_freedom"` // Satterthwaite v = 2E^2/Var
	Scale            float64       `json:"scale"`              // c = Var/(2E)
}

// CompetitiveResult is the empirical tail probability of the combined p-value
// against a null distribution of two-test combinations.
type CompetitiveResult struct {
	RunID      core.RunID `json:"run_id"`
	PValue     float64    `json:"pval"`       // Fraction of null p-values strictly greater than Observed
	Observed   float64    `json:"observed"`   // Combined p-value of the real input, independence assumed
	Iterations int        `json:"iterations"` // Null draws, equal to the reference matrix column count
}

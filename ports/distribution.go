package ports

// ChiSquaredPort evaluates the chi-square distribution for real-valued
// (possibly fractional) degrees of freedom.
type ChiSquaredPort interface {
	// Quantile returns x such that P(X <= x) = p. df == 0 is the point mass at zero.
	Quantile(p, df float64) float64

	// Survival returns the upper tail P(X > x).
	Survival(x, df float64) float64
}

package ports

// MatrixStatsPort computes second moments across the columns of a matrix,
// treating each row as one variable and each column as one observation.
type MatrixStatsPort interface {
	// CovarianceSum returns the sum of every entry of the unbiased covariance
	// matrix of the rows, i.e. the variance of the row sum.
	CovarianceSum(rows [][]float64) (float64, error)

	// CorrelationMatrix returns the Pearson correlation matrix of the rows.
	CorrelationMatrix(rows [][]float64) ([][]float64, error)
}

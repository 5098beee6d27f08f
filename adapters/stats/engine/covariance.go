package engine

import (
	"fmt"
	"math"

	"cdpvals/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MatrixStats computes covariance and correlation with rows as variables,
// matching the layout of a reference matrix (one row per test).
type MatrixStats struct{}

// degenerateTolerance scales the smallest variance CovarianceSum reports as
// nonzero. Rows that are constant in exact arithmetic leave a rounding residue
// near eps² times their squared means.
const degenerateTolerance = 1e-12

// CovarianceSum returns Var(sum of rows) estimated from the columns. A sum at
// or below degenerateTolerance·max(1, Σ mean²) is reported as exactly 0.
func (MatrixStats) CovarianceSum(rows [][]float64) (float64, error) {
	obs, err := observations(rows)
	if err != nil {
		return 0, err
	}
	if r, _ := obs.Dims(); r < 2 {
		return 0, core.NewComputationError(core.ErrDegenerateVariance, "replicates", float64(r))
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, obs, nil)

	n := cov.SymmetricDim()
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += cov.At(i, j)
		}
	}

	meanSquares := 0.0
	for _, row := range rows {
		m := stat.Mean(row, nil)
		meanSquares += m * m
	}
	if sum <= degenerateTolerance*math.Max(1, meanSquares) {
		return 0, nil
	}
	return sum, nil
}

// CorrelationMatrix returns the Pearson correlation of the rows. Constant rows
// yield NaN entries, as the coefficient is undefined for them.
func (MatrixStats) CorrelationMatrix(rows [][]float64) ([][]float64, error) {
	obs, err := observations(rows)
	if err != nil {
		return nil, err
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, obs, nil)

	n := corr.SymmetricDim()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = corr.At(i, j)
		}
	}
	return out, nil
}

// observations lays rows out as gonum expects: one column per variable, one
// row per observation.
func observations(rows [][]float64) (mat.Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: matrix has no cells", core.ErrEmptyInput)
	}
	vars, cols := len(rows), len(rows[0])
	data := make([]float64, 0, vars*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, core.NewDimensionError(fmt.Sprintf("row %d length", i), cols, len(row))
		}
		data = append(data, row...)
	}
	return mat.NewDense(vars, cols, data).T(), nil
}

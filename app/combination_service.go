package app

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"cdpvals/domain/combine"
	"cdpvals/domain/core"
	"cdpvals/domain/pvalue"
	"cdpvals/internal"
	"cdpvals/internal/config"
	"cdpvals/internal/errors"
	"cdpvals/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// referenceStream names the RNG stream behind synthetic reference matrices.
const referenceStream = "competitive-reference"

// cancelCheckEvery is how many null draws a worker computes between context checks.
const cancelCheckEvery = 1024

// CombinationService combines p-values from dependent tests with the modified
// generalized Fisher method: a weighted Lancaster statistic referred to a
// scaled chi-square whose degrees of freedom follow Satterthwaite.
type CombinationService struct {
	chiSquared  ports.ChiSquaredPort
	matrixStats ports.MatrixStatsPort
	rngPort     ports.RNGPort
	settings    config.CompetitiveConfig
	logger      *internal.Logger
}

// NewCombinationService creates a new combination service
func NewCombinationService(
	chiSquared ports.ChiSquaredPort,
	matrixStats ports.MatrixStatsPort,
	rngPort ports.RNGPort,
	settings config.CompetitiveConfig,
	logger *internal.Logger,
) *CombinationService {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	if settings.Iterations < 1 {
		settings.Iterations = config.DefaultIterations
	}
	return &CombinationService{
		chiSquared:  chiSquared,
		matrixStats: matrixStats,
		rngPort:     rngPort,
		settings:    settings,
		logger:      logger,
	}
}

// SelfContained combines pvals into one p-value. pmat (one row per test,
// one column per replicate) estimates the dependence between tests; nil means
// independent tests. weights are per-test chi-square degrees of freedom; nil
// means 2 for every test. Inputs are not modified.
func (s *CombinationService) SelfContained(pvals pvalue.Vector, pmat pvalue.Matrix, weights pvalue.Vector) (*combine.SelfContainedResult, error) {
	res, err := s.selfContained(pvals, pmat, weights)
	if err != nil {
		return nil, errors.Wrap(err, "self-contained combination")
	}
	return res, nil
}

// selfContained returns the domain errors unwrapped; the null loop calls it
// once per draw.
func (s *CombinationService) selfContained(pvals pvalue.Vector, pmat pvalue.Matrix, weights pvalue.Vector) (*combine.SelfContainedResult, error) {
	if len(pvals) == 0 {
		return nil, fmt.Errorf("%w: pvals", core.ErrEmptyInput)
	}
	p, err := pvalue.Sanitize(pvals, "pvals")
	if err != nil {
		return nil, err
	}

	var ref pvalue.Matrix
	if pmat != nil {
		if pmat.Rows() != len(p) {
			return nil, core.NewDimensionError("pmat rows", len(p), pmat.Rows())
		}
		if err := pmat.CheckRectangular("pmat"); err != nil {
			return nil, err
		}
		if ref, err = pvalue.SanitizeMatrix(pmat, "pmat"); err != nil {
			return nil, err
		}
	}

	w, err := resolveWeights(weights, len(p))
	if err != nil {
		return nil, err
	}

	// E(T)
	e, _ := stats.Sum(stats.Float64Data(w))
	if e == 0 {
		return nil, core.NewComputationError(core.ErrZeroExpectation, "E", e)
	}

	// Var(T)
	variance := 2 * e
	if ref != nil {
		variance, err = s.matrixStats.CovarianceSum(s.quantiles(ref, w))
		if err != nil {
			return nil, err
		}
	}
	if !(variance > 0) || math.IsInf(variance, 0) {
		return nil, core.NewComputationError(core.ErrDegenerateVariance, "Var", variance)
	}

	// Satterthwaite degrees of freedom and scale
	v := 2 * e * e / variance
	c := variance / (2 * e)

	// Lancaster statistic
	terms := make([]float64, len(p))
	for i, x := range p {
		terms[i] = s.chiSquared.Quantile(1-x, w[i])
	}
	t, _ := stats.Sum(terms)

	cor := identity(len(p))
	if ref != nil {
		if cor, err = s.matrixStats.CorrelationMatrix(ref); err != nil {
			return nil, err
		}
	}

	return &combine.SelfContainedResult{
		PValue:           s.chiSquared.Survival(t/c, v),
		Correlation:      cor,
		Statistic:        t,
		Expectation:      e,
		Variance:         variance,
		DegreesOfFreedom: v,
		Scale:            c,
	}, nil
}

// Competitive compares the combined p-value of pvals against a null
// distribution of two-test combinations taken from rows 0 and 1 of every
// column of pmat. When pmat is nil, n standard normal draws per row are
// synthesized and mapped to upper-tail p-values; only the two rows the null
// reads are generated, not all len(pvals). n <= 0 selects the configured
// iteration count. When pmat is given, n is ignored and the column
// count sets the number of null draws.
//
// The null always combines exactly two tests, whatever len(pvals) is, and
// uses the first two weights when weights are given.
func (s *CombinationService) Competitive(ctx context.Context, pvals pvalue.Vector, pmat pvalue.Matrix, weights pvalue.Vector, n int) (*combine.CompetitiveResult, error) {
	runID := core.NewRunID()
	log := s.logger.With("competitive " + runID.String())

	if len(pvals) == 0 {
		return nil, errors.Wrap(fmt.Errorf("%w: pvals", core.ErrEmptyInput), "competitive input")
	}
	if err := pvals.Validate("pvals"); err != nil {
		return nil, errors.Wrap(err, "competitive input")
	}
	if weights != nil {
		if err := pvalue.ValidateWeights(weights, len(pvals)); err != nil {
			return nil, errors.Wrap(err, "competitive input")
		}
	}

	ref := pmat
	if ref != nil {
		if ref.Rows() != len(pvals) {
			return nil, errors.Wrap(core.NewDimensionError("pmat rows", len(pvals), ref.Rows()), "competitive input")
		}
		if err := ref.CheckRectangular("pmat"); err != nil {
			return nil, errors.Wrap(err, "competitive input")
		}
	}
	if len(pvals) < 2 {
		return nil, errors.Wrap(core.NewDimensionError("tests in the two-test null", 2, len(pvals)), "competitive input")
	}
	if ref == nil {
		if n <= 0 {
			n = s.settings.Iterations
		}
		var err error
		if ref, err = s.referenceDraws(ctx, n); err != nil {
			return nil, errors.Wrap(err, "synthesize reference matrix")
		}
	}
	if ref.Cols() == 0 {
		return nil, errors.Wrap(fmt.Errorf("%w: pmat has no columns", core.ErrEmptyInput), "competitive input")
	}

	log.Debug("%d tests, %d null draws, %d workers", len(pvals), ref.Cols(), s.settings.Workers)

	null, err := s.nullDistribution(ctx, ref, nullWeights(weights))
	if err != nil {
		return nil, errors.Wrap(err, "competitive null distribution")
	}

	observed, err := s.selfContained(pvals, nil, weights)
	if err != nil {
		return nil, errors.Wrap(err, "competitive observed combination")
	}

	exceed := make([]float64, len(null))
	for i, x := range null {
		if x > observed.PValue {
			exceed[i] = 1
		}
	}
	pval, _ := stats.Mean(exceed)

	if s.logger.GetLevel() >= internal.LogLevelTrace {
		nullMedian, _ := stats.Median(null)
		log.Trace("null median %.6g, observed %.6g", nullMedian, observed.PValue)
	}
	log.Debug("empirical p-value %.6g", pval)

	return &combine.CompetitiveResult{
		RunID:      runID,
		PValue:     pval,
		Observed:   observed.PValue,
		Iterations: len(null),
	}, nil
}

// nullDistribution runs the two-test combination for every column of ref in
// contiguous chunks. Each chunk owns its index range, so the output does not
// depend on the worker count.
func (s *CombinationService) nullDistribution(ctx context.Context, ref pvalue.Matrix, weights pvalue.Vector) ([]float64, error) {
	cols := ref.Cols()
	null := make([]float64, cols)

	workers := min(s.settings.Workers, cols)
	chunk := (cols + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < cols; lo += chunk {
		hi := min(lo+chunk, cols)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				res, err := s.selfContained(pvalue.Vector{ref[0][i], ref[1][i]}, nil, weights)
				if err != nil {
					return errors.Wrapf(err, "null draw %d", i)
				}
				null[i] = res.PValue
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return null, nil
}

// referenceDraws builds a 2×n matrix of standard normal draws, row 0 first,
// each mapped to its upper-tail probability so the columns are independent
// null p-values.
func (s *CombinationService) referenceDraws(ctx context.Context, n int) (pvalue.Matrix, error) {
	src, err := s.rngPort.SeededStream(ctx, referenceStream, s.settings.Seed)
	if err != nil {
		return nil, err
	}
	r := rand.New(src)

	m := make(pvalue.Matrix, 2)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = distuv.UnitNormal.Survival(r.NormFloat64())
		}
	}
	return m, nil
}

// quantiles maps each cell q of row i to the chi-square quantile at 1-q with
// w[i] degrees of freedom.
func (s *CombinationService) quantiles(ref pvalue.Matrix, w pvalue.Vector) [][]float64 {
	out := make([][]float64, len(ref))
	for i, row := range ref {
		out[i] = make([]float64, len(row))
		for j, q := range row {
			out[i][j] = s.chiSquared.Quantile(1-q, w[i])
		}
	}
	return out
}

func resolveWeights(weights pvalue.Vector, k int) (pvalue.Vector, error) {
	if weights == nil {
		return pvalue.DefaultWeights(k), nil
	}
	if err := pvalue.ValidateWeights(weights, k); err != nil {
		return nil, err
	}
	return weights.Clone(), nil
}

// nullWeights keeps the weights of the two tests the null combines.
func nullWeights(weights pvalue.Vector) pvalue.Vector {
	if weights == nil {
		return nil
	}
	return weights[:2:2].Clone()
}

func identity(k int) pvalue.Matrix {
	m := make(pvalue.Matrix, k)
	for i := range m {
		m[i] = make([]float64, k)
		m[i][i] = 1
	}
	return m
}

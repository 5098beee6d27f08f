// Package cdpvals combines p-values from dependent tests with the modified
// generalized Fisher method of Dai, Leeder and Cui (2014): Lancaster's weighted
// chi-square combination with a Satterthwaite correction for the dependence
// between tests.
//
// # Quick Start
//
// Combine p-values, estimating their dependence from reference replicates
// (one row per test, one column per replicate):
//
//	res, err := cdpvals.SelfContained(pvals, pmat, nil)
//	fmt.Println(res.PValue, res.Correlation)
//
// Compare against a null of two-test combinations:
//
//	res, err := cdpvals.Competitive(ctx, pvals, nil, nil, 100000)
//
// Both operations return *errors.AppError values from internal/errors carrying
// a VALIDATION_ERROR, COMPUTATION_ERROR or CANCELLED code; the sentinels in
// domain/core still match through errors.Is.
package cdpvals

import (
	"context"
	"sync"

	"cdpvals/adapters/rng"
	"cdpvals/adapters/stats/engine"
	"cdpvals/app"
	"cdpvals/domain/combine"
	"cdpvals/domain/pvalue"
	"cdpvals/internal"
	"cdpvals/internal/config"
)

// Config is the library configuration; see DefaultConfig and NewServiceFromEnv.
type Config = config.Config

// DefaultConfig returns 100000 iterations, seed 42, one worker per CPU.
func DefaultConfig() *Config {
	return config.Default()
}

// NewService wires the gonum-backed engine and seeded RNG streams into a
// combination service.
func NewService(cfg *Config) *app.CombinationService {
	if cfg == nil {
		cfg = config.Default()
	}
	stats := engine.NewStatsEngine()
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level)).With("cdpvals")
	return app.NewCombinationService(stats, stats, rng.NewStreamAdapter(), cfg.Competitive, logger)
}

// NewServiceFromEnv builds a service from .env and CDPVALS_* variables.
func NewServiceFromEnv() (*app.CombinationService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewService(cfg), nil
}

var defaultService = sync.OnceValue(func() *app.CombinationService {
	return NewService(config.Default())
})

// SelfContained combines pvals with the default service. pmat and weights may be nil.
func SelfContained(pvals []float64, pmat [][]float64, weights []float64) (*combine.SelfContainedResult, error) {
	return defaultService().SelfContained(pvalue.Vector(pvals), pvalue.Matrix(pmat), pvalue.Vector(weights))
}

// Competitive runs the empirical test with the default service. n is the
// number of synthetic null draws when pmat is nil; n <= 0 means 100000.
func Competitive(ctx context.Context, pvals []float64, pmat [][]float64, weights []float64, n int) (*combine.CompetitiveResult, error) {
	return defaultService().Competitive(ctx, pvalue.Vector(pvals), pvalue.Matrix(pmat), pvalue.Vector(weights), n)
}

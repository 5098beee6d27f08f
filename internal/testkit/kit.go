package testkit

import (
	"context"
	"math"
	"math/rand/v2"

	"cdpvals/adapters/rng"
	"cdpvals/adapters/stats/engine"
	"cdpvals/app"
	"cdpvals/domain/pvalue"
	"cdpvals/internal"
	"cdpvals/internal/config"
	"cdpvals/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	engine *engine.StatsEngine
	rng    *rng.StreamAdapter
	logger *internal.Logger
}

// NewTestKit creates a new test kit with real adapters and a quiet logger
func NewTestKit() *TestKit {
	return &TestKit{
		engine: engine.NewStatsEngine(),
		rng:    rng.NewStreamAdapter(),
		logger: internal.NewLogger(internal.LogLevelError),
	}
}

// RNGAdapter returns the seeded stream adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return t.rng
}

// Service returns a combination service with the given competitive settings
func (t *TestKit) Service(settings config.CompetitiveConfig) *app.CombinationService {
	return t.ServiceWithRNG(settings, t.rng)
}

// ServiceWithRNG swaps in a custom RNG port, e.g. a mock
func (t *TestKit) ServiceWithRNG(settings config.CompetitiveConfig, rngPort ports.RNGPort) *app.CombinationService {
	return app.NewCombinationService(t.engine, t.engine, rngPort, settings, t.logger)
}

// UniformPValues draws k independent null p-values.
func (t *TestKit) UniformPValues(seed uint64, k int) pvalue.Vector {
	r := t.stream(seed, "uniform-pvalues")
	out := make(pvalue.Vector, k)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

// EquicorrelatedReference builds a tests×replicates reference matrix whose
// underlying z-scores share pairwise correlation rho, mapped to upper-tail
// p-values. rho=0 gives independent rows, rho=1 identical rows.
func (t *TestKit) EquicorrelatedReference(seed uint64, tests, replicates int, rho float64) pvalue.Matrix {
	r := t.stream(seed, "equicorrelated-reference")
	shared, own := math.Sqrt(rho), math.Sqrt(1-rho)

	m := make(pvalue.Matrix, tests)
	for i := range m {
		m[i] = make([]float64, replicates)
	}
	for j := 0; j < replicates; j++ {
		common := r.NormFloat64()
		for i := range m {
			z := shared*common + own*r.NormFloat64()
			m[i][j] = distuv.UnitNormal.Survival(z)
		}
	}
	return m
}

func (t *TestKit) stream(seed uint64, name string) *rand.Rand {
	src, err := t.rng.SeededStream(context.Background(), name, seed)
	if err != nil {
		panic(err) // background context never cancels
	}
	return rand.New(src)
}

package engine

import (
	"cdpvals/ports"
)

// StatsEngine provides the distribution and matrix moments the combination
// service consumes, backed by gonum.
type StatsEngine struct {
	ChiSquared
	MatrixStats
}

var (
	_ ports.ChiSquaredPort  = (*StatsEngine)(nil)
	_ ports.MatrixStatsPort = (*StatsEngine)(nil)
)

// NewStatsEngine creates a new statistical engine
func NewStatsEngine() *StatsEngine {
	return &StatsEngine{}
}

package rng

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"cdpvals/ports"
)

// StreamAdapter implements ports.RNGPort with PCG sources keyed by name and seed.
type StreamAdapter struct{}

var _ ports.RNGPort = (*StreamAdapter)(nil)

// NewStreamAdapter creates a new RNG adapter
func NewStreamAdapter() *StreamAdapter {
	return &StreamAdapter{}
}

// SeededStream creates a deterministic source for a named operation. Distinct
// names under the same seed give independent streams.
func (a *StreamAdapter) SeededStream(ctx context.Context, name string, seed uint64) (rand.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.NewPCG(seed, h.Sum64()), nil
}

package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleStreamsAreDeterministic(t *testing.T) {
	reg := NewRegistry(42)
	a := reg.Module("labour")
	b := reg.Module("labour")
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Int63(), b.Int63(), "draw %d diverged", i)
	}
}

func TestModuleStreamsAreIndependent(t *testing.T) {
	reg := NewRegistry(42)
	a := reg.Module("labour")
	b := reg.Module("pregnancy")
	same := 0
	for i := 0; i < 100; i++ {
		if a.Int63() == b.Int63() {
			same++
		}
	}
	assert.Zero(t, same, "differently named streams should not track each other")
}

func TestDifferentSeedsDifferentStreams(t *testing.T) {
	a := NewRegistry(1).Module("labour")
	b := NewRegistry(2).Module("labour")
	assert.NotEqual(t, a.Int63(), b.Int63())
}

func TestBernoulliEdges(t *testing.T) {
	r := NewRegistry(7).Module("test")
	for i := 0; i < 50; i++ {
		assert.False(t, Bernoulli(r, 0))
		assert.False(t, Bernoulli(r, -0.5))
		assert.True(t, Bernoulli(r, 1))
		assert.True(t, Bernoulli(r, 1.5))
	}
}

func TestChoiceRespectsWeights(t *testing.T) {
	r := NewRegistry(7).Module("test")

	// A degenerate distribution always picks the only positive weight.
	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, Choice(r, []float64{0, 5, 0}))
	}

	// Weights need not sum to one.
	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		counts[Choice(r, []float64{3, 1})]++
	}
	assert.Greater(t, counts[0], counts[1])
	assert.Greater(t, counts[1], 0)
}

func TestChoicePanicsOnDegenerateInput(t *testing.T) {
	r := NewRegistry(7).Module("test")
	assert.Panics(t, func() { Choice(r, nil) })
	assert.Panics(t, func() { Choice(r, []float64{0, 0}) })
}

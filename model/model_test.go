package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0madic/go-bayesfit/prior"
)

func mustUniform(t *testing.T, min, max float64) *prior.Uniform {
	t.Helper()
	u, err := prior.NewUniform(min, max)
	require.NoError(t, err)
	return u
}

func TestParameterSetOrder(t *testing.T) {
	u := mustUniform(t, 0, 10)
	set, err := NewParameterSet(
		NewParameter("b", 1, u),
		NewParameter("a", 2, u),
		NewParameter("c", 3, u),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"b", "a", "c"}, set.Names())
	assert.Equal(t, []float64{1, 2, 3}, set.Values())
	assert.Equal(t, "a", set.At(1).Name())

	p, ok := set.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3.0, p.Value())
}

func TestParameterSetDuplicate(t *testing.T) {
	u := mustUniform(t, 0, 10)
	_, err := NewParameterSet(
		NewParameter("a", 1, u),
		NewParameter("a", 2, u),
	)
	assert.ErrorIs(t, err, ErrDuplicateParameter)
}

func TestParameterSetValue(t *testing.T) {
	u := mustUniform(t, 0, 10)
	p := NewParameter("a", 5, u)
	p.SetValue(7)
	assert.Equal(t, 7.0, p.Value())
}

func TestRandomizedValueWithinSupport(t *testing.T) {
	u := mustUniform(t, 0, 10)
	p := NewParameter("a", 5, u)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		v := p.RandomizedValue(0.1, rng)
		assert.Greater(t, u.Density(v), 0.0, "randomized value must stay inside the prior support")
	}
}

func TestRandomizedValueDeterministic(t *testing.T) {
	u := mustUniform(t, 0, 10)
	p := NewParameter("a", 5, u)

	first := make([]float64, 20)
	second := make([]float64, 20)
	rng := rand.New(rand.NewSource(7))
	for i := range first {
		first[i] = p.RandomizedValue(0.1, rng)
	}
	rng = rand.New(rand.NewSource(7))
	for i := range second {
		second[i] = p.RandomizedValue(0.1, rng)
	}
	assert.Equal(t, first, second)
}

func TestRandomizedValueZeroCurrent(t *testing.T) {
	// A parameter sitting at zero still has to move.
	g, err := prior.NewGaussian(0, 1)
	require.NoError(t, err)
	p := NewParameter("a", 0, g)
	rng := rand.New(rand.NewSource(1))

	v := p.RandomizedValue(0.1, rng)
	assert.NotEqual(t, 0.0, v)
}

func TestSimpleModel(t *testing.T) {
	u := mustUniform(t, 0, 10)
	m, err := NewSimple(NewParameter("a", 1, u), NewParameter("b", 2, u))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.FreeParameters().Names())
}

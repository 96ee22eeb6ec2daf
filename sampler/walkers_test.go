package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartingPointsShapeAndSupport(t *testing.T) {
	a, m := twoParamAnalysis(t, WithSeed(42))

	points := a.StartingPoints(50, DefaultVariance)
	require.Len(t, points, 50)
	for _, p := range points {
		require.Len(t, p, 2)
		for i, v := range p {
			par := m.FreeParameters().At(i)
			assert.Greater(t, par.Prior().Density(v), 0.0)
		}
	}
}

func TestStartingPointsReproducible(t *testing.T) {
	a1, _ := twoParamAnalysis(t, WithSeed(42))
	a2, _ := twoParamAnalysis(t, WithSeed(42))

	assert.Equal(t, a1.StartingPoints(50, DefaultVariance), a2.StartingPoints(50, DefaultVariance))
}

func TestStartingPointsDistinct(t *testing.T) {
	a, _ := twoParamAnalysis(t, WithSeed(7))

	points := a.StartingPoints(50, DefaultVariance)
	seen := make(map[[2]float64]bool, len(points))
	for _, p := range points {
		key := [2]float64{p[0], p[1]}
		assert.False(t, seen[key], "walker starting points must be pairwise distinct")
		seen[key] = true
	}
}

func TestStartingPointsIndependentStorage(t *testing.T) {
	a, _ := twoParamAnalysis(t, WithSeed(42))

	points := a.StartingPoints(2, DefaultVariance)
	points[0][0] = -999
	assert.NotEqual(t, -999.0, points[1][0])
	refreshed := a.StartingPoints(1, DefaultVariance)
	assert.NotEqual(t, -999.0, refreshed[0][0])
}

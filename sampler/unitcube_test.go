package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0madic/go-bayesfit/model"
	"github.com/n0madic/go-bayesfit/plugin"
	"github.com/n0madic/go-bayesfit/prior"
)

// opaquePrior has a density but no inverse-CDF transform.
type opaquePrior struct{}

func (opaquePrior) Density(x float64) float64 { return 1 }

func TestUnitCubePriorTransform(t *testing.T) {
	a, _ := twoParamAnalysis(t)
	cube, err := NewUnitCube(a)
	require.NoError(t, err)

	values := []float64{0.25, 0.75}
	require.NoError(t, cube.PriorTransform(values))
	assert.InDelta(t, 2.5, values[0], tol)
	assert.InDelta(t, 7.5, values[1], tol)
}

func TestUnitCubePriorTransformCopy(t *testing.T) {
	a, _ := twoParamAnalysis(t)
	cube, err := NewUnitCube(a)
	require.NoError(t, err)

	in := []float64{0.1, 0.9}
	out, err := cube.PriorTransformCopy(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.9}, in, "input cube must stay untouched")
	assert.InDelta(t, 1.0, out[0], tol)
	assert.InDelta(t, 9.0, out[1], tol)
}

func TestUnitCubeDryRunRejectsOpaquePrior(t *testing.T) {
	m, err := model.NewSimple(
		model.NewParameter("good", 5, mustTransformable(t)),
		model.NewParameter("stuck", 5, opaquePrior{}),
	)
	require.NoError(t, err)
	data, err := plugin.NewDataList(&flatData{name: "det1", logLike: -10, nPoints: 10})
	require.NoError(t, err)
	a, err := NewAnalysis(m, data)
	require.NoError(t, err)

	_, err = NewUnitCube(a)
	require.ErrorIs(t, err, ErrPriorNotInvertible)
	assert.Contains(t, err.Error(), "stuck", "error names the offending parameter")
}

func mustTransformable(t *testing.T) prior.Prior {
	t.Helper()
	u, err := prior.NewUniform(0, 10)
	require.NoError(t, err)
	return u
}

func TestUnitCubeLogLikeSkipsPriors(t *testing.T) {
	a, m := twoParamAnalysis(t)
	cube, err := NewUnitCube(a)
	require.NoError(t, err)

	// Two flat datasets at -10: the result is exactly -20, with no
	// log-prior contribution.
	got, err := cube.LogLike([]float64{5, 5})
	require.NoError(t, err)
	assert.InDelta(t, -20.0, got, tol)

	// The physical values were written through to the model.
	_, err = cube.LogLike([]float64{2, 8})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 8}, m.FreeParameters().Values())
}

func TestUnitCubeLengthMismatch(t *testing.T) {
	a, _ := twoParamAnalysis(t)
	cube, err := NewUnitCube(a)
	require.NoError(t, err)

	assert.ErrorIs(t, cube.PriorTransform([]float64{0.5}), ErrParameterMismatch)
	_, err = cube.PriorTransformCopy([]float64{0.5, 0.5, 0.5})
	assert.ErrorIs(t, err, ErrParameterMismatch)
	_, err = cube.LogLike([]float64{0.5})
	assert.ErrorIs(t, err, ErrParameterMismatch)
}

func TestUnitCubeRejectionPath(t *testing.T) {
	u, err := prior.NewUniform(0, 10)
	require.NoError(t, err)
	m, err := model.NewSimple(model.NewParameter("a", 5, u))
	require.NoError(t, err)
	data, err := plugin.NewDataList(
		&flatData{name: "det1", nPoints: 10, err: plugin.ErrInvalidParameterRegion},
	)
	require.NoError(t, err)
	a, err := NewAnalysis(m, data)
	require.NoError(t, err)

	cube, err := NewUnitCube(a)
	require.NoError(t, err)

	got, err := cube.LogLike([]float64{5})
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, -1))
}

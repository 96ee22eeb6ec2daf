package sampler

import (
	"errors"
	"fmt"

	"github.com/n0madic/go-bayesfit/prior"
)

// ErrPriorNotInvertible signals that a parameter's prior cannot map a
// unit-cube coordinate to a physical value, which a cube-based sampler
// requires. Detected at adapter construction, before sampling starts.
var ErrPriorNotInvertible = errors.New("sampler: prior is not compatible with unit-cube sampling")

// UnitCube adapts an Analysis for sampler backends that propose points
// on the unit hypercube (nested sampling and friends). PriorTransform
// maps cube coordinates to physical values through each prior's inverse
// CDF; LogLike assigns already-transformed values and evaluates the
// likelihood only. Priors are deliberately not re-evaluated inside
// LogLike: the cube transform already encodes them.
type UnitCube struct {
	analysis *Analysis
}

// NewUnitCube builds the adapter, refreshing the free-parameter set and
// dry-running the transform on the cube midpoint so that an
// incompatible prior surfaces immediately instead of deep into a long
// sampling run.
func NewUnitCube(a *Analysis) (*UnitCube, error) {
	a.UpdateFreeParameters()
	c := &UnitCube{analysis: a}

	mid := make([]float64, a.free.Len())
	for i := range mid {
		mid[i] = 0.5
	}
	if _, err := c.PriorTransformCopy(mid); err != nil {
		return nil, err
	}
	return c, nil
}

// PriorTransform replaces every cube[i] in place with the physical value
// obtained from parameter i's inverse-CDF prior transform.
func (c *UnitCube) PriorTransform(cube []float64) error {
	free := c.analysis.free
	if len(cube) != free.Len() {
		return fmt.Errorf("%w: got %d values for %d parameters",
			ErrParameterMismatch, len(cube), free.Len())
	}
	for i := 0; i < free.Len(); i++ {
		p := free.At(i)
		t, ok := p.Prior().(prior.CubeTransformer)
		if !ok {
			return fmt.Errorf("%w: parameter %q", ErrPriorNotInvertible, p.Name())
		}
		cube[i] = t.FromUnitCube(cube[i])
	}
	return nil
}

// PriorTransformCopy is PriorTransform for backends that forbid in-place
// mutation: the passed cube is left untouched and the transformed vector
// is returned.
func (c *UnitCube) PriorTransformCopy(cube []float64) ([]float64, error) {
	params := make([]float64, len(cube))
	copy(params, cube)
	if err := c.PriorTransform(params); err != nil {
		return nil, err
	}
	return params, nil
}

// LogLike assigns the already-transformed physical values to the free
// parameters and returns the aggregated log-likelihood. Rejections
// (invalid model regions, non-finite results) come back as negative
// infinity with a nil error, like GetPosterior.
func (c *UnitCube) LogLike(values []float64) (float64, error) {
	free := c.analysis.free
	if len(values) != free.Len() {
		return 0, fmt.Errorf("%w: got %d values for %d parameters",
			ErrParameterMismatch, len(values), free.Len())
	}
	for i := 0; i < free.Len(); i++ {
		free.At(i).SetValue(values[i])
	}
	return c.analysis.logLike()
}

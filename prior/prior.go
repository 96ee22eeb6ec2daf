// Package prior provides probability densities used as Bayesian priors
// on model parameters. Every prior can evaluate its density at a point;
// priors that additionally implement CubeTransformer can map a unit-cube
// coordinate to a physical value through their inverse CDF, which is what
// nested-sampling style backends require.
package prior

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidSupport is returned when a prior is constructed with
// inconsistent bounds or scale parameters.
var ErrInvalidSupport = errors.New("prior: invalid support")

// Prior evaluates a probability density. A density of exactly zero marks
// the point as outside the allowed region of parameter space.
type Prior interface {
	Density(x float64) float64
}

// CubeTransformer maps a coordinate u in [0, 1] to a physical parameter
// value through the prior's inverse CDF.
type CubeTransformer interface {
	FromUnitCube(u float64) float64
}

// Uniform is a flat prior on [Min, Max].
type Uniform struct {
	dist distuv.Uniform
}

// NewUniform returns a uniform prior on [min, max].
func NewUniform(min, max float64) (*Uniform, error) {
	if !(min < max) {
		return nil, ErrInvalidSupport
	}
	return &Uniform{dist: distuv.Uniform{Min: min, Max: max}}, nil
}

func (u *Uniform) Density(x float64) float64 {
	return u.dist.Prob(x)
}

func (u *Uniform) FromUnitCube(v float64) float64 {
	return u.dist.Quantile(v)
}

// Gaussian is a normal prior with mean Mu and standard deviation Sigma.
// Its density is never exactly zero, so it cannot reject a trial point
// on its own.
type Gaussian struct {
	dist distuv.Normal
}

// NewGaussian returns a normal prior with the given mean and standard
// deviation.
func NewGaussian(mu, sigma float64) (*Gaussian, error) {
	if sigma <= 0 {
		return nil, ErrInvalidSupport
	}
	return &Gaussian{dist: distuv.Normal{Mu: mu, Sigma: sigma}}, nil
}

func (g *Gaussian) Density(x float64) float64 {
	return g.dist.Prob(x)
}

func (g *Gaussian) FromUnitCube(u float64) float64 {
	return g.dist.Quantile(u)
}

// LogNormal is a log-normal prior: ln(x) is normal with parameters Mu
// and Sigma. The density is zero for x <= 0.
type LogNormal struct {
	dist distuv.LogNormal
}

// NewLogNormal returns a log-normal prior.
func NewLogNormal(mu, sigma float64) (*LogNormal, error) {
	if sigma <= 0 {
		return nil, ErrInvalidSupport
	}
	return &LogNormal{dist: distuv.LogNormal{Mu: mu, Sigma: sigma}}, nil
}

func (l *LogNormal) Density(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return l.dist.Prob(x)
}

func (l *LogNormal) FromUnitCube(u float64) float64 {
	return l.dist.Quantile(u)
}

// LogUniform is a prior flat in ln(x) on [Min, Max], the usual choice
// for strictly positive scale parameters spanning decades.
type LogUniform struct {
	min, max float64
	logRatio float64
}

// NewLogUniform returns a log-uniform prior on [min, max]; min must be
// strictly positive.
func NewLogUniform(min, max float64) (*LogUniform, error) {
	if min <= 0 || !(min < max) {
		return nil, ErrInvalidSupport
	}
	return &LogUniform{min: min, max: max, logRatio: math.Log(max / min)}, nil
}

func (l *LogUniform) Density(x float64) float64 {
	if x < l.min || x > l.max {
		return 0
	}
	return 1 / (x * l.logRatio)
}

func (l *LogUniform) FromUnitCube(u float64) float64 {
	return l.min * math.Exp(u*l.logRatio)
}

// Package model defines the parameter side of a Bayesian fit: named
// parameters carrying a mutable value and a prior, an ordered set of the
// currently free parameters, and the Model interface through which the
// sampler obtains that set.
//
// The iteration order of a ParameterSet is significant: it fixes the
// index-to-name correspondence used by every trial vector and sample
// matrix in the sampler package.
package model

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/n0madic/go-bayesfit/prior"
)

// ErrDuplicateParameter is returned when a parameter name is added twice.
var ErrDuplicateParameter = errors.New("model: duplicate parameter name")

const randomizeAttempts = 100

// Parameter is a single free parameter: a name, a mutable scalar value
// and a prior density.
type Parameter struct {
	name  string
	value float64
	prior prior.Prior
}

// NewParameter returns a parameter with the given name, current value
// and prior.
func NewParameter(name string, value float64, p prior.Prior) *Parameter {
	return &Parameter{name: name, value: value, prior: p}
}

func (p *Parameter) Name() string { return p.name }

func (p *Parameter) Value() float64 { return p.value }

func (p *Parameter) SetValue(v float64) { p.value = v }

func (p *Parameter) Prior() prior.Prior { return p.prior }

// RandomizedValue draws a value close to the current one, scaled by the
// given fractional variance (0.1 means a standard deviation of 10% of
// the current value). Draws falling outside the prior support are
// rejected and retried; after randomizeAttempts failures the current
// value is returned unchanged.
func (p *Parameter) RandomizedValue(variance float64, rng *rand.Rand) float64 {
	scale := variance * p.value
	if scale < 0 {
		scale = -scale
	}
	if scale == 0 {
		scale = variance
	}
	for attempt := 0; attempt < randomizeAttempts; attempt++ {
		candidate := p.value + scale*rng.NormFloat64()
		if p.prior.Density(candidate) > 0 {
			return candidate
		}
	}
	return p.value
}

// ParameterSet is an ordered mapping from parameter name to parameter.
type ParameterSet struct {
	names  []string
	byName map[string]*Parameter
}

// NewParameterSet returns a set containing the given parameters in order.
func NewParameterSet(params ...*Parameter) (*ParameterSet, error) {
	s := &ParameterSet{byName: make(map[string]*Parameter, len(params))}
	for _, p := range params {
		if err := s.Add(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a parameter, keeping insertion order.
func (s *ParameterSet) Add(p *Parameter) error {
	if _, ok := s.byName[p.name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateParameter, p.name)
	}
	s.names = append(s.names, p.name)
	s.byName[p.name] = p
	return nil
}

// Len returns the number of parameters in the set.
func (s *ParameterSet) Len() int { return len(s.names) }

// Names returns the parameter names in insertion order.
func (s *ParameterSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// At returns the i-th parameter in insertion order.
func (s *ParameterSet) At(i int) *Parameter { return s.byName[s.names[i]] }

// Get returns the parameter with the given name.
func (s *ParameterSet) Get(name string) (*Parameter, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Values returns the current parameter values in insertion order.
func (s *ParameterSet) Values() []float64 {
	out := make([]float64, len(s.names))
	for i, name := range s.names {
		out[i] = s.byName[name].value
	}
	return out
}

// Model exposes the ordered set of currently free parameters. The set
// may change between calls if the caller toggles parameters free or
// fixed, so the sampler re-reads it at well defined points.
type Model interface {
	FreeParameters() *ParameterSet
}

// Simple is a minimal Model backed by a fixed ParameterSet.
type Simple struct {
	free *ParameterSet
}

// NewSimple returns a Model with the given free parameters.
func NewSimple(params ...*Parameter) (*Simple, error) {
	set, err := NewParameterSet(params...)
	if err != nil {
		return nil, err
	}
	return &Simple{free: set}, nil
}

func (m *Simple) FreeParameters() *ParameterSet { return m.free }

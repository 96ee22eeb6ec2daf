// Package sampler implements the evaluation core shared by all Bayesian
// sampling backends: conversion of trial parameter vectors into a scalar
// log-posterior, aggregation of per-dataset log-likelihoods with an
// optional shared-spectrum optimization, randomized walker starting
// points for ensemble samplers, a unit-cube adapter for nested-sampling
// style backends, and construction of the final results object with its
// information criteria.
//
// The backends themselves are external: they call GetPosterior (or the
// UnitCube methods) as often as they need, hand the raw samples back via
// SetSamples, and the analysis builds the results once.
package sampler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-bayesfit/config"
	"github.com/n0madic/go-bayesfit/model"
	"github.com/n0madic/go-bayesfit/plugin"
)

var (
	// ErrParameterMismatch signals a desynchronization between the
	// caller and the model: the trial vector length does not match the
	// number of free parameters. This is a configuration error, never a
	// sampling excursion.
	ErrParameterMismatch = errors.New("sampler: number of trial values does not match the number of free parameters")

	// ErrNoSamples is returned by the results path before any samples
	// were stored.
	ErrNoSamples = errors.New("sampler: no posterior samples stored")
)

// ExecutionContext identifies this process within an optional
// multi-process run. The core never coordinates processes; the context
// only tags diagnostics. The zero value is not valid, use
// SingleProcess.
type ExecutionContext struct {
	Rank      int
	WorldSize int
}

// SingleProcess is the default execution context.
var SingleProcess = ExecutionContext{Rank: 0, WorldSize: 1}

// Option configures an Analysis.
type Option func(*Analysis)

// WithShareSpectrum enables the shared-spectrum optimization: datasets
// with identical input energy bin edges reuse one integrated model flux
// per likelihood call instead of each integrating its own.
func WithShareSpectrum() Option {
	return func(a *Analysis) { a.shareSpectrum = true }
}

// WithConfig overrides the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(a *Analysis) { a.cfg = cfg }
}

// WithExecutionContext sets the process rank and world size for
// multi-process runs.
func WithExecutionContext(ec ExecutionContext) Option {
	return func(a *Analysis) { a.exec = ec }
}

// WithSeed seeds the random source used for walker starting points.
// A seed of 0 selects a non-deterministic seed.
func WithSeed(seed int64) Option {
	return func(a *Analysis) { a.seed = seed }
}

// WithLogger sets the logger used for diagnostics; slog.Default is used
// otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analysis) { a.logger = l }
}

// Analysis is the shared evaluation core of a Bayesian fit. It holds
// references to the likelihood model and the datasets, evaluates the
// log-posterior of trial vectors during sampling, and post-processes the
// sampler's raw output into a Results object.
//
// Evaluating a posterior writes the trial values through to the model's
// parameters. This write-through is an intentional, documented side
// effect: datasets read the model state, and the results path relies on
// restoring a sampled row and then re-reading per-dataset likelihoods.
// Evaluation is synchronous and single-threaded; an Analysis must not be
// shared across goroutines.
type Analysis struct {
	model model.Model
	data  *plugin.DataList
	free  *model.ParameterSet

	shareSpectrum bool
	share         *plugin.ShareSpectrum

	cfg    config.Config
	exec   ExecutionContext
	seed   int64
	rng    *rand.Rand
	logger *slog.Logger

	// Per-dataset log-likelihood buffer, reused across calls.
	logLikeBuf []float64

	rawSamples           *mat.Dense
	samples              map[string][]float64
	logLikeValues        []float64
	logProbabilityValues []float64
	marginalLikelihood   *float64
	results              *Results
}

// NewAnalysis creates the evaluation core for the given model and
// datasets.
func NewAnalysis(m model.Model, data *plugin.DataList, opts ...Option) (*Analysis, error) {
	if m == nil {
		return nil, errors.New("sampler: model must not be nil")
	}
	if data == nil || data.Len() == 0 {
		return nil, errors.New("sampler: data list must not be empty")
	}

	a := &Analysis{
		model: m,
		data:  data,
		cfg:   config.Default(),
		exec:  SingleProcess,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.seed == 0 {
		a.rng = rand.New(rand.NewSource(rand.Int63()))
	} else {
		a.rng = rand.New(rand.NewSource(a.seed))
	}

	a.free = m.FreeParameters()
	a.logLikeBuf = make([]float64, data.Len())

	if a.shareSpectrum {
		a.share = plugin.NewShareSpectrum(data)
		a.logger.Debug("shared spectrum initialized",
			"groups", a.share.NumGroups(), "datasets", data.Len())
	}

	return a, nil
}

// UpdateFreeParameters re-reads the model's free-parameter set, picking
// up parameters the user freed or fixed since the last call.
func (a *Analysis) UpdateFreeParameters() {
	a.free = a.model.FreeParameters()
}

// FreeParameters returns the free-parameter set the analysis currently
// evaluates against.
func (a *Analysis) FreeParameters() *model.ParameterSet { return a.free }

// Execution returns the execution context of this process.
func (a *Analysis) Execution() ExecutionContext { return a.exec }

// GetPosterior returns the log-posterior (log-likelihood plus log-prior)
// at the given trial vector. Trial points outside the prior support, or
// inside a region the model or a dataset reports as invalid, yield
// negative infinity with a nil error.
//
// Parameter values are assigned as the prior loop advances; on a
// rejected trial the parameters before the rejecting index keep their
// trial values. Callers never inspect model state after a rejection, so
// the partial update is harmless, but it is observable.
func (a *Analysis) GetPosterior(trial []float64) (float64, error) {
	if len(trial) != a.free.Len() {
		return 0, fmt.Errorf("%w: got %d values for %d parameters",
			ErrParameterMismatch, len(trial), a.free.Len())
	}

	logPrior := 0.0
	for i := 0; i < a.free.Len(); i++ {
		p := a.free.At(i)
		density := p.Prior().Density(trial[i])
		if density == 0 {
			// Outside allowed region of parameter space.
			return math.Inf(-1), nil
		}
		p.SetValue(trial[i])
		logPrior += math.Log(density)
	}

	logLike, err := a.logLike()
	if err != nil {
		return 0, err
	}
	return logLike + logPrior, nil
}

// LogPrior returns the sum of log-prior densities at the given trial
// vector, assigning the values to the parameters as it goes. A point
// outside the prior support yields negative infinity.
func (a *Analysis) LogPrior(trial []float64) (float64, error) {
	if len(trial) != a.free.Len() {
		return 0, fmt.Errorf("%w: got %d values for %d parameters",
			ErrParameterMismatch, len(trial), a.free.Len())
	}

	logPrior := 0.0
	for i := 0; i < a.free.Len(); i++ {
		p := a.free.At(i)
		density := p.Prior().Density(trial[i])
		if density == 0 {
			return math.Inf(-1), nil
		}
		p.SetValue(trial[i])
		logPrior += math.Log(density)
	}
	return logPrior, nil
}

// logLike aggregates the log-likelihood over all datasets at the current
// model state. An ErrInvalidParameterRegion from any dataset converts to
// negative infinity; every other error propagates, since masking it
// could silently corrupt a long sampling run. A non-finite sum is
// reported once as a warning with the parameter values, then treated as
// a rejection.
func (a *Analysis) logLike() (float64, error) {
	var err error
	if !a.shareSpectrum {
		// Every dataset independently. Fine when the model flux is
		// cheap to integrate.
		for i := 0; i < a.data.Len(); i++ {
			a.logLikeBuf[i], err = a.data.At(i).GetLogLike()
			if err != nil {
				return a.rejectOrFail(err)
			}
		}
	} else {
		// Integrate the model flux once per distinct input binning,
		// then hand the result to every dataset of the group.
		precalc := make([][]float64, a.share.NumGroups())
		for g, baseKey := range a.share.BasePluginKeys {
			if a.share.EinEdges[g] == nil {
				continue
			}
			base, _ := a.data.Get(baseKey)
			precalc[g], err = base.(plugin.SpectrumDataSet).IntegralFlux()
			if err != nil {
				return a.rejectOrFail(err)
			}
		}
		for i := 0; i < a.data.Len(); i++ {
			g := a.share.EbinConnect[i]
			if a.share.EinEdges[g] != nil {
				a.logLikeBuf[i], err = a.data.At(i).GetLogLikeWithFlux(precalc[g])
			} else {
				a.logLikeBuf[i], err = a.data.At(i).GetLogLike()
			}
			if err != nil {
				return a.rejectOrFail(err)
			}
		}
	}

	logLike := floats.Sum(a.logLikeBuf)

	if math.IsNaN(logLike) || math.IsInf(logLike, 0) {
		attrs := make([]any, 0, 2*a.free.Len()+2)
		for i := 0; i < a.free.Len(); i++ {
			p := a.free.At(i)
			attrs = append(attrs, p.Name(), p.Value())
		}
		attrs = append(attrs, "rank", a.exec.Rank)
		a.logger.Warn("likelihood value is not finite for current parameters", attrs...)
		return math.Inf(-1), nil
	}

	return logLike, nil
}

// rejectOrFail converts an invalid-parameter-region signal into a
// rejected point and lets everything else escape.
func (a *Analysis) rejectOrFail(err error) (float64, error) {
	if errors.Is(err, plugin.ErrInvalidParameterRegion) {
		return math.Inf(-1), nil
	}
	return 0, err
}

// SetSamples stores the sampler backend's raw output: the sample matrix
// (one row per draw, columns in free-parameter order), the log-posterior
// per draw, and the log-likelihood per draw. It resets any previously
// built results and evidence estimate.
func (a *Analysis) SetSamples(raw *mat.Dense, logProbability, logLike []float64) error {
	if raw == nil {
		return errors.New("sampler: raw sample matrix must not be nil")
	}
	rows, cols := raw.Dims()
	if cols != a.free.Len() {
		return fmt.Errorf("%w: sample matrix has %d columns for %d parameters",
			ErrParameterMismatch, cols, a.free.Len())
	}
	if len(logProbability) != rows || len(logLike) != rows {
		return fmt.Errorf("sampler: %d draws but %d log-probability and %d log-likelihood values",
			rows, len(logProbability), len(logLike))
	}

	a.rawSamples = raw
	a.logProbabilityValues = logProbability
	a.logLikeValues = logLike
	a.marginalLikelihood = nil
	a.results = nil
	a.buildSamplesDictionary()
	return nil
}

// SetMarginalLikelihood records the log-evidence estimate produced by
// the backend, included in the statistical measures as log(Z).
func (a *Analysis) SetMarginalLikelihood(logZ float64) {
	a.marginalLikelihood = &logZ
}

// buildSamplesDictionary slices the raw sample matrix into per-parameter
// columns keyed by name.
func (a *Analysis) buildSamplesDictionary() {
	rows, _ := a.rawSamples.Dims()
	a.samples = make(map[string][]float64, a.free.Len())
	for i, name := range a.free.Names() {
		col := make([]float64, rows)
		mat.Col(col, i, a.rawSamples)
		a.samples[name] = col
	}
}

// Samples returns the posterior samples keyed by parameter name; the
// parameter order is that of FreeParameters.
func (a *Analysis) Samples() map[string][]float64 { return a.samples }

// RawSamples returns the raw sample matrix as stored by the backend.
func (a *Analysis) RawSamples() *mat.Dense { return a.rawSamples }

// LogLikeValues returns the per-draw log-likelihood values.
func (a *Analysis) LogLikeValues() []float64 { return a.logLikeValues }

// LogProbabilityValues returns the per-draw log-posterior values.
func (a *Analysis) LogProbabilityValues() []float64 { return a.logProbabilityValues }

// LogMarginalLikelihood returns the backend's evidence estimate, if one
// was recorded.
func (a *Analysis) LogMarginalLikelihood() (float64, bool) {
	if a.marginalLikelihood == nil {
		return 0, false
	}
	return *a.marginalLikelihood, true
}

// Results returns the results built by BuildResults, or nil.
func (a *Analysis) Results() *Results { return a.results }

package sampler

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-bayesfit/model"
	"github.com/n0madic/go-bayesfit/stats"
)

// ValueMap is an ordered mapping from name to scalar, used for the
// per-dataset log-posteriors and the statistical measures.
type ValueMap struct {
	names  []string
	values map[string]float64
}

// NewValueMap returns an empty ValueMap.
func NewValueMap() *ValueMap {
	return &ValueMap{values: make(map[string]float64)}
}

// Set stores a value, keeping first-insertion order.
func (m *ValueMap) Set(name string, v float64) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = v
}

// Names returns the keys in insertion order.
func (m *ValueMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Value returns the value stored under name.
func (m *ValueMap) Value(name string) (float64, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Len returns the number of entries.
func (m *ValueMap) Len() int { return len(m.names) }

// Results bundles everything a completed sampling run produced: the
// likelihood model snapshot at the representative point, the raw sample
// matrix, the per-dataset log-posteriors at that point, the statistical
// measures (AIC, BIC, DIC, PDIC, optionally log(Z)) and the per-draw
// log-posterior values.
type Results struct {
	model          model.Model
	rawSamples     *mat.Dense
	logPosteriors  *ValueMap
	measures       *ValueMap
	logProbability []float64
}

// Model returns the likelihood model, restored to the representative
// point. Nil for results loaded from a snapshot.
func (r *Results) Model() model.Model { return r.model }

// RawSamples returns the raw posterior sample matrix.
func (r *Results) RawSamples() *mat.Dense { return r.rawSamples }

// LogPosteriors returns the per-dataset log-posterior values at the
// representative point.
func (r *Results) LogPosteriors() *ValueMap { return r.logPosteriors }

// Measures returns the statistical measures.
func (r *Results) Measures() *ValueMap { return r.measures }

// LogProbabilityValues returns the per-draw log-posterior values.
func (r *Results) LogProbabilityValues() []float64 { return r.logProbability }

// argMedian returns the index of the median element. For an even number
// of elements the two middle order statistics both map back to sampled
// rows; the smaller of their first-occurrence indices is returned, so
// the result always points at an actual draw.
func argMedian(a []float64) int {
	sorted := make([]float64, len(a))
	copy(sorted, a)
	sort.Float64s(sorted)

	n := len(a)
	if n%2 == 1 {
		return indexOf(a, sorted[n/2])
	}
	li := indexOf(a, sorted[n/2-1])
	ri := indexOf(a, sorted[n/2])
	return min(li, ri)
}

func indexOf(a []float64, v float64) int {
	for i, x := range a {
		if x == v {
			return i
		}
	}
	return -1
}

func argMax(a []float64) int {
	idx := 0
	for i, x := range a {
		if x > a[idx] {
			idx = i
		}
	}
	return idx
}

// representativeIndex selects the sample row restored into the model:
// the median of the log-posterior when the configuration asks for it,
// the MAP otherwise.
func (a *Analysis) representativeIndex() int {
	if a.cfg.Bayesian.UseMedianFit {
		return argMedian(a.logProbabilityValues)
	}
	return argMax(a.logProbabilityValues)
}

// restoreFit assigns the idx-th sample row to the free parameters in
// order. Restoring the same row twice is idempotent.
func (a *Analysis) restoreFit(idx int) {
	for i := 0; i < a.free.Len(); i++ {
		a.free.At(i).SetValue(a.rawSamples.At(idx, i))
	}
}

// RestoreMedianFit sets the model parameters to the sample at the
// median of the log-posterior.
func (a *Analysis) RestoreMedianFit() error {
	if a.rawSamples == nil {
		return ErrNoSamples
	}
	a.restoreFit(argMedian(a.logProbabilityValues))
	a.logger.Info("fit restored to median of posterior")
	return nil
}

// RestoreMAPFit sets the model parameters to the sample with the
// highest log-posterior.
func (a *Analysis) RestoreMAPFit() error {
	if a.rawSamples == nil {
		return ErrNoSamples
	}
	a.restoreFit(argMax(a.logProbabilityValues))
	a.logger.Info("fit restored to maximum of posterior")
	return nil
}

// BuildResults post-processes the stored samples into a Results object:
// it restores the representative point (median or MAP per
// configuration), recomputes the per-dataset log-posteriors there,
// computes AIC, BIC, DIC and PDIC, attaches the evidence estimate if
// the backend produced one, and leaves the model restored to the
// representative point.
func (a *Analysis) BuildResults() (*Results, error) {
	if a.rawSamples == nil || len(a.logProbabilityValues) == 0 {
		return nil, ErrNoSamples
	}

	idx := a.representativeIndex()
	a.restoreFit(idx)

	point := mat.Row(nil, idx, a.rawSamples)
	logPrior, err := a.LogPrior(point)
	if err != nil {
		return nil, err
	}

	logPosteriors := NewValueMap()
	totalDataPoints := 0
	totalLogPosterior := 0.0
	for i := 0; i < a.data.Len(); i++ {
		ds := a.data.At(i)
		logLike, err := ds.GetLogLike()
		if err != nil {
			return nil, fmt.Errorf("sampler: log-likelihood of dataset %q at the representative point: %w",
				ds.Name(), err)
		}
		logPosterior := logLike + logPrior
		logPosteriors.Set(ds.Name(), logPosterior)
		totalDataPoints += ds.NumberOfDataPoints()
		totalLogPosterior += logPosterior
	}

	measures := NewValueMap()
	measures.Set("AIC", stats.AIC(totalLogPosterior, a.free.Len(), totalDataPoints))
	measures.Set("BIC", stats.BIC(totalLogPosterior, a.free.Len(), totalDataPoints))

	dic, pdic, err := stats.DIC(a)
	if err != nil {
		return nil, err
	}
	measures.Set("DIC", dic)
	measures.Set("PDIC", pdic)

	if a.marginalLikelihood != nil {
		measures.Set("log(Z)", *a.marginalLikelihood)
	}

	// The DIC computation moved the parameters to the posterior mean;
	// leave the model at the representative point.
	a.restoreFit(idx)

	logProbability := make([]float64, len(a.logProbabilityValues))
	copy(logProbability, a.logProbabilityValues)

	a.results = &Results{
		model:          a.model,
		rawSamples:     a.rawSamples,
		logPosteriors:  logPosteriors,
		measures:       measures,
		logProbability: logProbability,
	}
	return a.results, nil
}

// resultsState is the serializable snapshot of a Results. The model is
// not serialized; a loaded Results carries the numeric record only.
type resultsState struct {
	Version        int
	Rows, Cols     int
	RawSamples     []float64
	PosteriorNames []string
	PosteriorVals  []float64
	MeasureNames   []string
	MeasureVals    []float64
	LogProbability []float64
}

// Save serializes the results to gob format.
func (r *Results) Save(w io.Writer) error {
	rows, cols := r.rawSamples.Dims()
	state := resultsState{
		Version:        1,
		Rows:           rows,
		Cols:           cols,
		RawSamples:     make([]float64, rows*cols),
		PosteriorNames: r.logPosteriors.Names(),
		MeasureNames:   r.measures.Names(),
		LogProbability: r.logProbability,
	}
	for i := 0; i < rows; i++ {
		mat.Row(state.RawSamples[i*cols:(i+1)*cols], i, r.rawSamples)
	}
	for _, name := range state.PosteriorNames {
		v, _ := r.logPosteriors.Value(name)
		state.PosteriorVals = append(state.PosteriorVals, v)
	}
	for _, name := range state.MeasureNames {
		v, _ := r.measures.Value(name)
		state.MeasureVals = append(state.MeasureVals, v)
	}
	return gob.NewEncoder(w).Encode(state)
}

// LoadResults deserializes results saved with Save. The model reference
// is not part of the snapshot and is nil on the returned Results.
func LoadResults(r io.Reader) (*Results, error) {
	var state resultsState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, err
	}
	if state.Version != 1 {
		return nil, errors.New("sampler: unsupported results snapshot version")
	}
	if len(state.RawSamples) != state.Rows*state.Cols {
		return nil, errors.New("sampler: invalid raw sample data length")
	}
	if len(state.PosteriorVals) != len(state.PosteriorNames) ||
		len(state.MeasureVals) != len(state.MeasureNames) {
		return nil, errors.New("sampler: invalid snapshot value lengths")
	}

	res := &Results{
		rawSamples:     mat.NewDense(state.Rows, state.Cols, state.RawSamples),
		logPosteriors:  NewValueMap(),
		measures:       NewValueMap(),
		logProbability: state.LogProbability,
	}
	for i, name := range state.PosteriorNames {
		res.logPosteriors.Set(name, state.PosteriorVals[i])
	}
	for i, name := range state.MeasureNames {
		res.measures.Set(name, state.MeasureVals[i])
	}
	return res, nil
}

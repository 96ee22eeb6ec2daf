// Package plugin defines the dataset side of a Bayesian fit: the DataSet
// contract each observational dataset implements, the ordered DataList
// collection the sampler iterates over, and the shared-spectrum grouping
// used to avoid recomputing identical model fluxes across datasets.
//
// Datasets are external collaborators: they read the current state of
// the likelihood model (the sampler assigns parameter values before
// asking for a likelihood) and report a log-likelihood for their data.
package plugin

import (
	"errors"
	"fmt"
)

// ErrInvalidParameterRegion signals that the current parameter values
// fall outside the region where the model or dataset is defined. During
// sampling this is an ordinary rejected point, not a failure: the
// sampler converts it to a negative-infinity log-likelihood and moves on.
var ErrInvalidParameterRegion = errors.New("plugin: parameters outside valid model region")

// ErrDuplicateDataSet is returned when a dataset name is added twice.
var ErrDuplicateDataSet = errors.New("plugin: duplicate dataset name")

// DataSet is one observational dataset contributing to the joint
// likelihood.
type DataSet interface {
	// Name identifies the dataset in diagnostics and results.
	Name() string

	// GetLogLike returns the log-likelihood of the data given the
	// current state of the model. A point outside the valid model
	// region is reported with ErrInvalidParameterRegion.
	GetLogLike() (float64, error)

	// GetLogLikeWithFlux is GetLogLike reusing a flux array already
	// integrated over this dataset's input energy bins, so the dataset
	// skips its own integration step.
	GetLogLikeWithFlux(precalcFluxes []float64) (float64, error)

	// NumberOfDataPoints returns the number of data points entering
	// the likelihood, used by the information criteria.
	NumberOfDataPoints() int
}

// SpectrumDataSet is implemented by datasets whose likelihood starts
// from a model flux integrated over a fixed input energy binning. Two
// such datasets with identical edges can share one integration.
type SpectrumDataSet interface {
	DataSet

	// InputEnergyEdges returns the input energy bin edges, or nil when
	// the dataset has no fixed input binning.
	InputEnergyEdges() []float64

	// IntegralFlux integrates the current model over the input energy
	// bins.
	IntegralFlux() ([]float64, error)
}

// DataList is an ordered mapping from dataset name to dataset.
type DataList struct {
	names  []string
	byName map[string]DataSet
}

// NewDataList returns a list containing the given datasets in order.
func NewDataList(sets ...DataSet) (*DataList, error) {
	l := &DataList{byName: make(map[string]DataSet, len(sets))}
	for _, ds := range sets {
		if err := l.Add(ds); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add appends a dataset, keeping insertion order.
func (l *DataList) Add(ds DataSet) error {
	if _, ok := l.byName[ds.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateDataSet, ds.Name())
	}
	l.names = append(l.names, ds.Name())
	l.byName[ds.Name()] = ds
	return nil
}

// Len returns the number of datasets.
func (l *DataList) Len() int { return len(l.names) }

// Names returns the dataset names in insertion order.
func (l *DataList) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// At returns the i-th dataset in insertion order.
func (l *DataList) At(i int) DataSet { return l.byName[l.names[i]] }

// Get returns the dataset with the given name.
func (l *DataList) Get(name string) (DataSet, bool) {
	ds, ok := l.byName[name]
	return ds, ok
}

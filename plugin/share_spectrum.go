package plugin

import "gonum.org/v1/gonum/floats"

// ShareSpectrum groups the datasets of a DataList by identical input
// energy bin edges. All datasets in a group can reuse one model flux
// integrated by the group's base dataset, turning n_datasets expensive
// integrations per likelihood call into n_groups.
//
// Datasets without a fixed input binning (non-spectrum datasets, or
// spectrum datasets reporting nil edges) all fall into a single group
// whose edges are nil; members of that group evaluate their likelihood
// without a precomputed flux.
type ShareSpectrum struct {
	// BasePluginKeys holds, per group, the name of the representative
	// dataset whose IntegralFlux is computed for the whole group.
	BasePluginKeys []string

	// EinEdges holds, per group, the shared bin edges, or nil for the
	// group without input binning.
	EinEdges [][]float64

	// EbinConnect maps every dataset index (DataList order) to its
	// group index.
	EbinConnect []int
}

// NewShareSpectrum builds the grouping for the given data list. Every
// dataset index is connected to exactly one group; the groups partition
// the dataset indices.
func NewShareSpectrum(l *DataList) *ShareSpectrum {
	s := &ShareSpectrum{EbinConnect: make([]int, l.Len())}
	for i := 0; i < l.Len(); i++ {
		ds := l.At(i)
		var edges []float64
		if sds, ok := ds.(SpectrumDataSet); ok {
			edges = sds.InputEnergyEdges()
		}
		group := s.findGroup(edges)
		if group < 0 {
			group = len(s.BasePluginKeys)
			s.BasePluginKeys = append(s.BasePluginKeys, ds.Name())
			s.EinEdges = append(s.EinEdges, edges)
		}
		s.EbinConnect[i] = group
	}
	return s
}

func (s *ShareSpectrum) findGroup(edges []float64) int {
	for g, existing := range s.EinEdges {
		if edges == nil || existing == nil {
			if edges == nil && existing == nil {
				return g
			}
			continue
		}
		if len(edges) == len(existing) && floats.Equal(edges, existing) {
			return g
		}
	}
	return -1
}

// NumGroups returns the number of distinct energy-bin groups.
func (s *ShareSpectrum) NumGroups() int { return len(s.BasePluginKeys) }

// Package stats provides the information criteria computed from a
// completed Bayesian fit: AIC (with the small-sample correction), BIC
// and DIC with its effective-parameter count PDIC.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned by DIC when the analysis holds no posterior
// samples.
var ErrNoSamples = errors.New("stats: analysis holds no posterior samples")

// AIC returns the corrected Akaike information criterion for a fit with
// the given total log-posterior, number of free parameters and number
// of data points.
func AIC(logPosterior float64, nParams, nDataPoints int) float64 {
	k := float64(nParams)
	n := float64(nDataPoints)
	return -2*logPosterior + 2*k + 2*k*(k+1)/(n-k-1)
}

// BIC returns the Bayesian information criterion.
func BIC(logPosterior float64, nParams, nDataPoints int) float64 {
	k := float64(nParams)
	n := float64(nDataPoints)
	return -2*logPosterior + k*math.Log(n)
}

// Analysis is the view of a sampled posterior that DIC needs: the raw
// sample matrix, the log-likelihood recorded per draw, and the ability
// to re-evaluate posterior and prior at an arbitrary point.
type Analysis interface {
	RawSamples() *mat.Dense
	LogLikeValues() []float64
	GetPosterior(trial []float64) (float64, error)
	LogPrior(trial []float64) (float64, error)
}

// DIC returns the deviance information criterion and the effective
// number of parameters PDIC, using the Spiegelhalter decomposition:
// the mean deviance over the posterior draws plus the difference
// between it and the deviance at the posterior-mean parameter vector.
//
// Evaluating the deviance at the mean goes through the analysis' own
// likelihood path, so parameter values in the model are mutated as a
// side effect. When the posterior mean falls outside the prior support
// both values are NaN.
func DIC(a Analysis) (dic, pdic float64, err error) {
	raw := a.RawSamples()
	logLike := a.LogLikeValues()
	if raw == nil || len(logLike) == 0 {
		return 0, 0, ErrNoSamples
	}

	meanDeviance := -2 * stat.Mean(logLike, nil)

	// Posterior-mean parameter vector, column by column.
	rows, cols := raw.Dims()
	mean := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, raw)
		mean[j] = stat.Mean(col, nil)
	}

	logPosterior, err := a.GetPosterior(mean)
	if err != nil {
		return 0, 0, err
	}
	logPrior, err := a.LogPrior(mean)
	if err != nil {
		return 0, 0, err
	}
	if math.IsInf(logPosterior, -1) || math.IsInf(logPrior, -1) {
		return math.NaN(), math.NaN(), nil
	}

	devianceAtMean := -2 * (logPosterior - logPrior)
	pdic = meanDeviance - devianceAtMean
	return meanDeviance + pdic, pdic, nil
}

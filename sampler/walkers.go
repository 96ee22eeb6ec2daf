package sampler

// DefaultVariance is the fractional variance commonly used for walker
// starting points (a standard deviation of 10% of the current value).
const DefaultVariance = 0.1

// StartingPoints produces nWalkers independent trial vectors for an
// ensemble sampler by randomizing every free parameter around its
// current value with the given fractional variance. The returned
// vectors share no storage.
func (a *Analysis) StartingPoints(nWalkers int, variance float64) [][]float64 {
	points := make([][]float64, nWalkers)
	for w := range points {
		p := make([]float64, a.free.Len())
		for i := 0; i < a.free.Len(); i++ {
			p[i] = a.free.At(i).RandomizedValue(variance, a.rng)
		}
		points[w] = p
	}
	return points
}

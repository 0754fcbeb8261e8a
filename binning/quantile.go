package binning

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// sample is the distribution's values sorted ascending, so zone subsets and
// per-bin counts are binary searches.
type sample []float64

func newSample(values []float64) sample {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sample(sorted)
}

// between returns the values in the closed interval [lower, upper].
func (s sample) between(lower, upper float64) []float64 {
	return s[s.firstAtLeast(lower):s.firstAbove(upper)]
}

// count returns how many values fall in [lower, upper), or [lower, upper]
// when closed.
func (s sample) count(lower, upper float64, closed bool) int {
	end := s.firstAtLeast(upper)
	if closed {
		end = s.firstAbove(upper)
	}
	start := s.firstAtLeast(lower)
	if end < start {
		return 0
	}
	return end - start
}

func (s sample) firstAtLeast(v float64) int {
	return sort.SearchFloat64s(s, v)
}

func (s sample) firstAbove(v float64) int {
	return sort.Search(len(s), func(i int) bool { return s[i] > v })
}

// quantileCuts returns the n-1 interior cut points at positions i/n of the
// sorted values, using linear interpolation between order statistics.
func quantileCuts(sorted []float64, n int) []float64 {
	if n < 2 || len(sorted) == 0 {
		return nil
	}
	cuts := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		cuts = append(cuts, stat.Quantile(float64(i)/float64(n), stat.LinInterp, sorted, nil))
	}
	return cuts
}

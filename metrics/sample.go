package metrics

import (
	"math"
	"sort"
	"sync"
)

// Sample holds observations for a Histogram.
type Sample interface {
	Clear()
	Count() int64
	Max() int64
	Mean() float64
	Min() int64
	Percentiles([]float64) []float64
	Size() int
	StdDev() float64
	Update(int64)
	Values() []int64
}

// expDecaySample is a fixed-size sliding window over the most recent
// reservoirSize observations. alpha is stored but not used: no time-decay
// weighting is applied to the values it holds.
type expDecaySample struct {
	mu       sync.Mutex
	reservoirSize int
	alpha    float64
	values   []int64
}

// NewExpDecaySample constructs a new sample that keeps the last reservoirSize
// observations; alpha is recorded but has no effect.
func NewExpDecaySample(reservoirSize int, alpha float64) Sample {
	return &expDecaySample{reservoirSize: reservoirSize, alpha: alpha}
}

func (s *expDecaySample) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = nil
}

func (s *expDecaySample) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.values))
}

func (s *expDecaySample) Update(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) < s.reservoirSize {
		s.values = append(s.values, v)
		return
	}
	// Reservoir full: evict the oldest entry, so the sample is a sliding
	// window, which is sufficient for rpc's serving-time histograms.
	copy(s.values, s.values[1:])
	s.values[len(s.values)-1] = v
}

func (s *expDecaySample) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

func (s *expDecaySample) Values() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.values))
	copy(out, s.values)
	return out
}

func (s *expDecaySample) Min() int64    { return minInt64(s.Values()) }
func (s *expDecaySample) Max() int64    { return maxInt64(s.Values()) }
func (s *expDecaySample) Mean() float64 { return meanInt64(s.Values()) }
func (s *expDecaySample) StdDev() float64 { return stdDevInt64(s.Values()) }
func (s *expDecaySample) Percentiles(ps []float64) []float64 {
	return percentilesInt64(s.Values(), ps)
}

// resettingSample wraps another Sample and forwards every call to it. Reading
// a statistic does not clear the wrapped sample; only an explicit Clear does.
type resettingSample struct {
	wrapped Sample
}

// ResettingSample wraps s; every method is forwarded to s unchanged.
func ResettingSample(s Sample) Sample {
	return &resettingSample{wrapped: s}
}

func (s *resettingSample) Clear()                          { s.wrapped.Clear() }
func (s *resettingSample) Count() int64                    { return s.wrapped.Count() }
func (s *resettingSample) Max() int64                       { return s.wrapped.Max() }
func (s *resettingSample) Mean() float64                    { return s.wrapped.Mean() }
func (s *resettingSample) Min() int64                       { return s.wrapped.Min() }
func (s *resettingSample) Percentiles(ps []float64) []float64 { return s.wrapped.Percentiles(ps) }
func (s *resettingSample) Size() int                        { return s.wrapped.Size() }
func (s *resettingSample) StdDev() float64                  { return s.wrapped.StdDev() }
func (s *resettingSample) Update(v int64) {
	s.wrapped.Update(v)
}
func (s *resettingSample) Values() []int64 { return s.wrapped.Values() }

func minInt64(vs []int64) int64 {
	if len(vs) == 0 {
		return 0
	}
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxInt64(vs []int64) int64 {
	if len(vs) == 0 {
		return 0
	}
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func meanInt64(vs []int64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum int64
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}

func stdDevInt64(vs []int64) float64 {
	if len(vs) == 0 {
		return 0
	}
	m := meanInt64(vs)
	var sum float64
	for _, v := range vs {
		d := float64(v) - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vs)))
}

func percentilesInt64(vs []int64, ps []float64) []float64 {
	out := make([]float64, len(ps))
	if len(vs) == 0 {
		return out
	}
	sorted := make([]int64, len(vs))
	copy(sorted, vs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, p := range ps {
		pos := p * float64(len(sorted))
		idx := int(pos)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		out[i] = float64(sorted[idx])
	}
	return out
}

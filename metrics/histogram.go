package metrics

// Histogram calculates distribution statistics from its Sample.
type Histogram interface {
	Clear()
	Count() int64
	Max() int64
	Mean() float64
	Min() int64
	Percentiles([]float64) []float64
	Snapshot() *HistogramSnapshot
	StdDev() float64
	Update(int64)
}

// HistogramSnapshot is a read-only copy of a Histogram.
type HistogramSnapshot struct {
	sample Sample
}

func (h *HistogramSnapshot) Count() int64                      { return h.sample.Count() }
func (h *HistogramSnapshot) Max() int64                        { return h.sample.Max() }
func (h *HistogramSnapshot) Mean() float64                      { return h.sample.Mean() }
func (h *HistogramSnapshot) Min() int64                         { return h.sample.Min() }
func (h *HistogramSnapshot) StdDev() float64                    { return h.sample.StdDev() }
func (h *HistogramSnapshot) Percentiles(ps []float64) []float64 { return h.sample.Percentiles(ps) }

type histogram struct {
	sample Sample
}

// NewHistogram constructs a new Histogram from a Sample.
func NewHistogram(s Sample) Histogram {
	return &histogram{sample: s}
}

func (h *histogram) Clear()     { h.sample.Clear() }
func (h *histogram) Count() int64 { return h.sample.Count() }
func (h *histogram) Max() int64   { return h.sample.Max() }
func (h *histogram) Mean() float64 { return h.sample.Mean() }
func (h *histogram) Min() int64    { return h.sample.Min() }
func (h *histogram) StdDev() float64 { return h.sample.StdDev() }
func (h *histogram) Percentiles(ps []float64) []float64 { return h.sample.Percentiles(ps) }
func (h *histogram) Update(v int64) { h.sample.Update(v) }
func (h *histogram) Snapshot() *HistogramSnapshot {
	return &HistogramSnapshot{sample: h.sample}
}

// GetOrRegisterHistogramLazy returns an existing Histogram or constructs and
// registers one using the sampler the first time name is seen.
func GetOrRegisterHistogramLazy(name string, r Registry, sampler func() Sample) Histogram {
	if r == nil {
		r = DefaultRegistry
	}
	if existing := r.Get(name); existing != nil {
		return existing.(Histogram)
	}
	return r.GetOrRegister(name, NewHistogram(sampler())).(Histogram)
}

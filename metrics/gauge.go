package metrics

import "sync/atomic"

// Gauge holds a single mutable int64 value.
type Gauge struct {
	value atomic.Int64
}

// GaugeSnapshot is a read-only copy of a Gauge.
type GaugeSnapshot interface {
	Value() int64
}

type gaugeSnapshot int64

func (g gaugeSnapshot) Value() int64 { return int64(g) }

// NewGauge constructs a new Gauge.
func NewGauge() *Gauge {
	return &Gauge{}
}

// NewRegisteredGauge constructs and registers a new Gauge under name.
func NewRegisteredGauge(name string, r Registry) *Gauge {
	if r == nil {
		r = DefaultRegistry
	}
	return r.GetOrRegister(name, NewGauge()).(*Gauge)
}

// Update sets the gauge's value.
func (g *Gauge) Update(v int64) { g.value.Store(v) }

// Inc adds delta to the gauge's value.
func (g *Gauge) Inc(delta int64) { g.value.Add(delta) }

// Dec subtracts delta from the gauge's value.
func (g *Gauge) Dec(delta int64) { g.value.Add(-delta) }

// Value returns the gauge's current value.
func (g *Gauge) Value() int64 { return g.value.Load() }

// Snapshot returns a read-only copy of the gauge.
func (g *Gauge) Snapshot() GaugeSnapshot { return gaugeSnapshot(g.Value()) }

package metrics

import (
	"sync"
	"time"
)

// Timer captures the count and duration of events; it does not compute rates.
type Timer struct {
	mu      sync.Mutex
	sample  Sample
	count   int64
	sum     int64
	created time.Time
}

// TimerSnapshot is a read-only copy of a Timer.
type TimerSnapshot struct {
	count int64
	sum   int64
	sample Sample
}

func (t *TimerSnapshot) Count() int64 { return t.count }
func (t *TimerSnapshot) Min() int64   { return t.sample.Min() }
func (t *TimerSnapshot) Max() int64   { return t.sample.Max() }
func (t *TimerSnapshot) Mean() float64 {
	if t.count == 0 {
		return 0
	}
	return float64(t.sum) / float64(t.count)
}
func (t *TimerSnapshot) StdDev() float64                    { return t.sample.StdDev() }
func (t *TimerSnapshot) Percentiles(ps []float64) []float64 { return t.sample.Percentiles(ps) }

// NewTimer constructs a new Timer whose durations are kept in a
// NewExpDecaySample(1028, 0.015) sliding window.
func NewTimer() *Timer {
	return &Timer{
		sample:  NewExpDecaySample(1028, 0.015),
		created: time.Now(),
	}
}

// NewRegisteredTimer constructs and registers a new Timer under name.
func NewRegisteredTimer(name string, r Registry) *Timer {
	if r == nil {
		r = DefaultRegistry
	}
	return r.GetOrRegister(name, NewTimer()).(*Timer)
}

// Update records the duration of an event.
func (t *Timer) Update(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.sum += int64(d)
	t.sample.Update(int64(d))
}

// UpdateSince records the duration elapsed since start.
func (t *Timer) UpdateSince(start time.Time) {
	t.Update(time.Since(start))
}

// Snapshot returns a read-only copy of the timer's current state.
func (t *Timer) Snapshot() *TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &TimerSnapshot{count: t.count, sum: t.sum, sample: t.sample}
}

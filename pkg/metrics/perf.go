package metrics

import "time"

// DefaultPerfWindow is how many frames the performance monitor averages.
const DefaultPerfWindow = 100

// PerformanceMonitor tracks frame rate and processing latency over the
// last N frames. It is not safe for concurrent use; Recorder guards it.
type PerformanceMonitor struct {
	intervals []time.Duration
	latencies []time.Duration
	next      int
	full      bool
	last      time.Time
	size      int
}

// NewPerformanceMonitor averages over size frames.
func NewPerformanceMonitor(size int) *PerformanceMonitor {
	if size < 1 {
		size = DefaultPerfWindow
	}
	return &PerformanceMonitor{
		intervals: make([]time.Duration, size),
		latencies: make([]time.Duration, size),
		size:      size,
	}
}

// Observe records a frame captured at ts that took latency to process.
func (p *PerformanceMonitor) Observe(ts time.Time, latency time.Duration) {
	var interval time.Duration
	if !p.last.IsZero() && ts.After(p.last) {
		interval = ts.Sub(p.last)
	}
	p.last = ts

	p.intervals[p.next] = interval
	p.latencies[p.next] = latency
	p.next = (p.next + 1) % p.size
	if p.next == 0 {
		p.full = true
	}
}

func (p *PerformanceMonitor) n() int {
	if p.full {
		return p.size
	}
	return p.next
}

// FPS returns frames per second from the mean spacing of recent frames.
func (p *PerformanceMonitor) FPS() float64 {
	var sum time.Duration
	var counted int
	for i := 0; i < p.n(); i++ {
		if p.intervals[i] > 0 {
			sum += p.intervals[i]
			counted++
		}
	}
	if counted == 0 || sum <= 0 {
		return 0
	}
	mean := sum.Seconds() / float64(counted)
	return 1 / mean
}

// AvgLatency returns the mean processing latency of recent frames.
func (p *PerformanceMonitor) AvgLatency() time.Duration {
	n := p.n()
	if n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < n; i++ {
		sum += p.latencies[i]
	}
	return sum / time.Duration(n)
}

// Reset forgets every observation.
func (p *PerformanceMonitor) Reset() {
	clear(p.intervals)
	clear(p.latencies)
	p.next = 0
	p.full = false
	p.last = time.Time{}
}

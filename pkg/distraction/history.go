package distraction

import "time"

// History is a fixed-capacity ring of failure events in chronological
// order. It retains only events no older than the window, and never more
// than capacity of them; both bounds evict from the oldest end.
//
// History is not safe for concurrent use. Session serialises access.
type History struct {
	window time.Duration
	buf    []FailureEvent
	head   int // index of the oldest event
	count  int
}

// NewHistory creates an empty history. window and capacity must be positive.
func NewHistory(window time.Duration, capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		window: window,
		buf:    make([]FailureEvent, capacity),
	}
}

// Record appends ev at the tail, using its timestamp as the current time
// for age eviction. When full, the oldest event is overwritten.
func (h *History) Record(ev FailureEvent) {
	h.evictExpired(ev.Timestamp)

	capacity := len(h.buf)
	if h.count == capacity {
		h.buf[h.head] = FailureEvent{}
		h.head = (h.head + 1) % capacity
		h.count--
	}

	tail := (h.head + h.count) % capacity
	h.buf[tail] = ev
	h.count++
}

// CountInWindow expires events older than now-window and returns how many
// remaining events match filter. A nil filter counts every event.
func (h *History) CountInWindow(filter KindFilter, now time.Time) int {
	h.evictExpired(now)

	if filter == nil {
		return h.count
	}
	n := 0
	for i := 0; i < h.count; i++ {
		if filter(h.at(i).Kind) {
			n++
		}
	}
	return n
}

// Clear drops every event.
func (h *History) Clear() {
	clear(h.buf)
	h.head = 0
	h.count = 0
}

// Len returns the number of retained events without expiring any.
func (h *History) Len() int { return h.count }

// Capacity returns the hard event limit.
func (h *History) Capacity() int { return len(h.buf) }

// Window returns the retention horizon.
func (h *History) Window() time.Duration { return h.window }

// Events returns a copy of the retained events, oldest first.
func (h *History) Events() []FailureEvent {
	out := make([]FailureEvent, h.count)
	for i := range out {
		out[i] = h.at(i)
	}
	return out
}

func (h *History) at(i int) FailureEvent {
	return h.buf[(h.head+i)%len(h.buf)]
}

// evictExpired pops events whose age exceeds the window. Events are in
// chronological order, so it stops at the first one still inside.
func (h *History) evictExpired(now time.Time) {
	for h.count > 0 {
		oldest := h.buf[h.head]
		if now.Sub(oldest.Timestamp) <= h.window {
			return
		}
		h.buf[h.head] = FailureEvent{}
		h.head = (h.head + 1) % len(h.buf)
		h.count--
	}
}

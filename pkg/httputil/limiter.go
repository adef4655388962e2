// Package httputil holds small helpers for smishscan's serve mode.
package httputil

import "sync/atomic"

// Limiter bounds concurrent analysis runs. One run holds a database handle
// and a regex sweep over the full message history, so serve mode admits a
// fixed number of runs and rejects the overflow instead of queueing it.
type Limiter struct {
	slots    chan struct{}
	rejected atomic.Int64
}

// NewLimiter creates a limiter admitting up to capacity concurrent runs.
func NewLimiter(capacity int) *Limiter {
	if capacity <= 0 {
		capacity = 8
	}
	return &Limiter{slots: make(chan struct{}, capacity)}
}

// TryAcquire claims a slot without blocking.
// Returns false at capacity; the caller should reject the request.
func (l *Limiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		l.rejected.Add(1)
		return false
	}
}

// Release returns a slot.
// Must be called exactly once after a successful TryAcquire().
func (l *Limiter) Release() {
	select {
	case <-l.slots:
	default:
		// Shouldn't happen - releasing without acquiring
	}
}

// InUse returns the number of slots currently held.
func (l *Limiter) InUse() int {
	return len(l.slots)
}

// Capacity returns the admission bound.
func (l *Limiter) Capacity() int {
	return cap(l.slots)
}

// Rejected returns how many requests were turned away at saturation.
func (l *Limiter) Rejected() int64 {
	return l.rejected.Load()
}

// Stats returns the limiter state for the health endpoint.
func (l *Limiter) Stats() LimiterStats {
	return LimiterStats{
		Capacity: cap(l.slots),
		InUse:    len(l.slots),
		Rejected: l.rejected.Load(),
	}
}

// LimiterStats is the wire form of Stats.
type LimiterStats struct {
	Capacity int   `json:"capacity"`
	InUse    int   `json:"in_use"`
	Rejected int64 `json:"rejected"`
}

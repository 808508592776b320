// Package errorlog keeps the rolling error history and request counter that
// back the proxy's health report, and persists them as one JSON document.
package errorlog

import (
	"time"
)

// Window is the trailing period an error event counts toward health metrics.
const Window = 24 * time.Hour

// Event is a single recorded failure.
type Event struct {
	// Timestamp is when the failure was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Message is the error text. It is never returned to proxy callers.
	Message string `json:"message"`
}

// State is the persisted aggregate: recorded failures in insertion order and
// the total number of proxied requests.
type State struct {
	Errors        []Event `json:"errors"`
	TotalRequests int64   `json:"totalRequests"`
}

// Clone returns a deep copy of the state.
func (s *State) Clone() State {
	out := State{
		Errors:        make([]Event, len(s.Errors)),
		TotalRequests: s.TotalRequests,
	}
	copy(out.Errors, s.Errors)
	return out
}

// Prune returns the events recorded strictly after now-Window, preserving
// order. The input slice is not modified.
func Prune(events []Event, now time.Time) []Event {
	cutoff := now.Add(-Window)
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Timestamp.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// ErrorRate returns recent/total as a percentage, or 0 when total is 0.
func ErrorRate(recent int, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(recent) / float64(total) * 100
}

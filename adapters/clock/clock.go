// Package clock provides Clock implementations.
package clock

import (
	"sync"
	"time"
)

// System returns the wall-clock time in UTC.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Stepping is a deterministic clock for tests: every call to Now returns
// the previous value advanced by Step.
type Stepping struct {
	mu   sync.Mutex
	next time.Time
	Step time.Duration
}

// NewStepping creates a clock starting at start.
func NewStepping(start time.Time, step time.Duration) *Stepping {
	return &Stepping{next: start, Step: step}
}

// Now returns the current value and advances the clock.
func (s *Stepping) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.next
	s.next = s.next.Add(s.Step)
	return now
}

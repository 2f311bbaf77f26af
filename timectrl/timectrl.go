// Package timectrl supplies the wall-clock and stepped time sources used by
// reference runs.
package timectrl

import (
	"fmt"
	"time"
)

// Clock is an interface for reading the current time. Exporters depend on it
// rather than on time.Now so that output can be made reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock, in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports the same instant. Exports stamped with it are
// reproducible.
type FixedClock struct {
	t time.Time
}

// NewFixedClock constructs a clock frozen at t.
func NewFixedClock(t time.Time) FixedClock {
	return FixedClock{t: t}
}

// Now implements Clock.
func (c FixedClock) Now() time.Time { return c.t }

// MaxScheduleCount bounds the number of instants a Schedule may produce.
const MaxScheduleCount = 100000

// Schedule describes Count instants starting at Start and spaced by Tick.
type Schedule struct {
	Start time.Time
	Tick  time.Duration
	Count int
}

// Validate checks that the schedule is non-empty and bounded.
func (s Schedule) Validate() error {
	if s.Start.IsZero() {
		return fmt.Errorf("schedule start is required")
	}
	if s.Count <= 0 || s.Count > MaxScheduleCount {
		return fmt.Errorf("schedule count %d outside 1..%d", s.Count, MaxScheduleCount)
	}
	if s.Count > 1 && s.Tick <= 0 {
		return fmt.Errorf("schedule tick must be positive, got %v", s.Tick)
	}
	return nil
}

// Times returns the scheduled instants in UTC.
func (s Schedule) Times() []time.Time {
	if s.Count <= 0 {
		return nil
	}
	out := make([]time.Time, s.Count)
	t := s.Start.UTC()
	for i := range out {
		out[i] = t.Add(time.Duration(i) * s.Tick)
	}
	return out
}

// Each invokes fn for every scheduled instant in order, stopping at the first
// error.
func (s Schedule) Each(fn func(i int, t time.Time) error) error {
	for i, t := range s.Times() {
		if err := fn(i, t); err != nil {
			return err
		}
	}
	return nil
}

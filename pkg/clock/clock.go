// Package clock abstracts the current time so that lock-expiry logic can be
// tested deterministically instead of sleeping. Every query that evaluates a
// seat-lock deadline binds a timestamp taken from a Clock rather than calling
// NOW() in SQL.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New returns a Clock backed by the system time.
func New() Clock { return systemClock{} }

// Fake is a manually advanced Clock for tests.
type Fake struct {
	Current time.Time
}

// NewFake returns a Fake clock frozen at t.
func NewFake(t time.Time) *Fake { return &Fake{Current: t} }

// Now returns the frozen time.
func (f *Fake) Now() time.Time { return f.Current }

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) { f.Current = f.Current.Add(d) }

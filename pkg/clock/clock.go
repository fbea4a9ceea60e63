// Package clock abstracts the wall clock so date-bucket queries and report
// generation are deterministic in tests.
package clock

import "time"

// Clock supplies the current time in the application's configured time zone.
type Clock interface {
	Now() time.Time
}

// System reads the real clock and converts it to the given location.
type System struct {
	Loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{Loc: loc}
}

func (s System) Now() time.Time {
	return time.Now().In(s.Loc)
}

// Fixed always returns the same instant. Test double.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time {
	return f.Time
}

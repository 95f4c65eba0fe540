package clock

import "time"

// Clock abstracts time.Now so time-dependent rules can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewReal() Clock { return realClock{} }

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

// NewFixed returns a clock frozen at the given instant.
func NewFixed(now time.Time) Clock { return fixedClock{now: now} }

package services

import (
	"time"

	"github.com/ucpm/scrum-api/internal/utils"
)

// Clock supplies the current time. Sprint state is derived from it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// today is the current UTC calendar day.
func today(c Clock) time.Time {
	return utils.DateOf(c.Now().UTC())
}

// Package schedule computes bookable slots from recurring availability
// rules and existing appointments, and validates user-requested dates
// and times against business constraints.
package schedule

import (
	"errors"
	"time"
)

const (
	// DefaultDuration is the appointment length when the business does not
	// configure one.
	DefaultDuration = 60 * time.Minute

	// MinLeadTime is how far in the future an appointment must start.
	MinLeadTime = time.Hour

	// Horizon bounds how far ahead booking is allowed.
	Horizon = 90 * 24 * time.Hour
)

var (
	ErrDateInPast       = errors.New("schedule: date is in the past")
	ErrDateTooFar       = errors.New("schedule: date is beyond the booking horizon")
	ErrTimeInPast       = errors.New("schedule: start time already passed")
	ErrInsufficientLead = errors.New("schedule: start time is too soon")
	ErrTimeInvalid      = errors.New("schedule: time is out of range")
	ErrOutsideHours     = errors.New("schedule: time is outside business hours")
)

// Window is an optional business-hours constraint, in minutes from
// midnight, half-open.
type Window struct {
	StartMin int
	EndMin   int
}

// ValidateDate checks that a calendar date (midnight-normalized) is today
// or later and within the booking horizon.
func ValidateDate(date, now time.Time) error {
	today := truncateDay(now)
	if date.Before(today) {
		return ErrDateInPast
	}
	if date.After(today.Add(Horizon)) {
		return ErrDateTooFar
	}
	return nil
}

// ValidateDateTime checks a concrete start instant: it must be in the
// future and at least MinLeadTime away.
func ValidateDateTime(start, now time.Time) error {
	if !start.After(now) {
		return ErrTimeInPast
	}
	if start.Sub(now) < MinLeadTime {
		return ErrInsufficientLead
	}
	return nil
}

// ValidateTime checks an "HH:mm" wall clock for range, and against a
// business-hours window when one is supplied.
func ValidateTime(clock string, window *Window) error {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return ErrTimeInvalid
	}
	if window != nil {
		mins := t.Hour()*60 + t.Minute()
		if mins < window.StartMin || mins >= window.EndMin {
			return ErrOutsideHours
		}
	}
	return nil
}

// CombineDateTime merges a midnight-normalized date with an "HH:mm" wall
// clock in the date's location.
func CombineDateTime(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/pkg/logging"
)

// Slot is a bookable interval. End - Start equals the appointment duration.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Engine computes free slots for employees from their recurring weekly
// windows minus already-booked appointments.
type Engine struct {
	availability store.AvailabilityStore
	appointments store.AppointmentStore
	duration     time.Duration
	logger       *logging.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewEngine builds a slot engine. Panics when a required store is nil.
// A zero duration falls back to DefaultDuration.
func NewEngine(availability store.AvailabilityStore, appointments store.AppointmentStore, duration time.Duration, logger *logging.Logger) *Engine {
	if availability == nil {
		panic("schedule: availability store is required")
	}
	if appointments == nil {
		panic("schedule: appointment store is required")
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		availability: availability,
		appointments: appointments,
		duration:     duration,
		logger:       logger,
		tracer:       otel.Tracer("schedule"),
		now:          time.Now,
	}
}

// WithClock overrides the engine's time source. Tests use it to pin "now".
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Duration returns the configured appointment length.
func (e *Engine) Duration() time.Duration {
	return e.duration
}

// SlotsForDate returns the free slots an employee has on the given
// calendar date, ordered by start time. Same-day requests only include
// slots starting strictly after now.
func (e *Engine) SlotsForDate(ctx context.Context, employeeID uuid.UUID, date time.Time) ([]Slot, error) {
	ctx, span := e.tracer.Start(ctx, "schedule.SlotsForDate")
	defer span.End()
	span.SetAttributes(
		attribute.String("employee_id", employeeID.String()),
		attribute.String("date", date.Format("2006-01-02")),
	)

	rules, err := e.availability.ListByEmployee(ctx, employeeID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("schedule: listing availability: %w", err)
	}

	dayStart := truncateDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	booked, err := e.appointments.ListByEmployeeBetween(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("schedule: listing appointments: %w", err)
	}

	slots := buildSlots(rules, booked, dayStart, e.duration, e.now())
	span.SetAttributes(attribute.Int("slot_count", len(slots)))
	return slots, nil
}

// IsSlotFree re-checks a concrete start against current availability and
// bookings. Handlers call it right before confirming, since lists shown to
// the user may be minutes old.
func (e *Engine) IsSlotFree(ctx context.Context, employeeID uuid.UUID, start time.Time) (bool, error) {
	slots, err := e.SlotsForDate(ctx, employeeID, truncateDay(start))
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s.Start.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

// IsEmployeeAvailable checks an arbitrary interval: it must sit entirely
// inside one of the employee's rule windows for that weekday and not
// overlap a non-cancelled appointment. Unlike IsSlotFree it does not
// require the interval to land on the slot grid.
func (e *Engine) IsEmployeeAvailable(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, nil
	}
	rules, err := e.availability.ListByEmployee(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("schedule: listing availability: %w", err)
	}

	dayStart := truncateDay(start)
	inWindow := false
	for _, rule := range rules {
		if rule.Weekday != start.Weekday() {
			continue
		}
		windowStart := dayStart.Add(time.Duration(rule.StartMin) * time.Minute)
		windowEnd := dayStart.Add(time.Duration(rule.EndMin) * time.Minute)
		if !start.Before(windowStart) && !end.After(windowEnd) {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return false, nil
	}

	booked, err := e.appointments.ListByEmployeeBetween(ctx, employeeID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return false, fmt.Errorf("schedule: listing appointments: %w", err)
	}
	return !overlapsAny(booked, start, end), nil
}

// NextAvailableSlot walks forward day by day, up to maxDays, and returns
// the first free slot on or after from. Returns nil when nothing is free
// in the window.
func (e *Engine) NextAvailableSlot(ctx context.Context, employeeID uuid.UUID, from time.Time, maxDays int) (*Slot, error) {
	ctx, span := e.tracer.Start(ctx, "schedule.NextAvailableSlot")
	defer span.End()

	day := truncateDay(from)
	for i := 0; i < maxDays; i++ {
		slots, err := e.SlotsForDate(ctx, employeeID, day)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, s := range slots {
			if !s.Start.Before(from) {
				return &s, nil
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return nil, nil
}

// buildSlots steps through each rule window matching the date's weekday in
// duration increments. A slot is kept when it fits entirely inside the
// window, does not overlap a non-cancelled appointment (half-open
// comparison) and, for today, starts after now. Overlapping rules are not
// deduplicated; rows are expected to be disjoint.
func buildSlots(rules []store.AvailabilityRule, booked []store.Appointment, dayStart time.Time, duration time.Duration, now time.Time) []Slot {
	weekday := dayStart.Weekday()
	var slots []Slot
	for _, rule := range rules {
		if rule.Weekday != weekday {
			continue
		}
		windowStart := dayStart.Add(time.Duration(rule.StartMin) * time.Minute)
		windowEnd := dayStart.Add(time.Duration(rule.EndMin) * time.Minute)
		for start := windowStart; !start.Add(duration).After(windowEnd); start = start.Add(duration) {
			end := start.Add(duration)
			if !start.After(now) {
				continue
			}
			if overlapsAny(booked, start, end) {
				continue
			}
			slots = append(slots, Slot{Start: start, End: end})
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}

// overlapsAny uses half-open interval logic: a slot ending exactly when an
// appointment starts does not conflict.
func overlapsAny(booked []store.Appointment, start, end time.Time) bool {
	for _, a := range booked {
		if a.Status == store.AppointmentCancelled {
			continue
		}
		if start.Before(a.EndsAt) && end.After(a.StartsAt) {
			return true
		}
	}
	return false
}

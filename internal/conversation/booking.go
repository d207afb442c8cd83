package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmartinel/turnosms/internal/nlp"
	"github.com/dmartinel/turnosms/internal/schedule"
	"github.com/dmartinel/turnosms/internal/session"
	"github.com/dmartinel/turnosms/internal/store"
)

// startBooking opens the booking flow: it grabs whatever the opening
// message already contains, caches the employee roster and either jumps to
// confirmation or prompts for the first missing field.
func (e *Engine) startBooking(ctx context.Context, sess *session.Session, text string) error {
	employees, err := e.employees.ListActiveByBusiness(ctx, sess.Data.BusinessID)
	if err != nil {
		return fmt.Errorf("conversation: listing employees: %w", err)
	}
	if len(employees) == 0 {
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgNoEmployees)
	}

	sess.Data.Employees = make([]session.EmployeeRef, 0, len(employees))
	for _, emp := range employees {
		sess.Data.Employees = append(sess.Data.Employees, session.EmployeeRef{ID: emp.ID, Name: emp.Name})
	}

	extracted := nlp.ExtractBookingData(text, e.now())
	if extracted.EmployeeName != "" {
		if ref := findEmployee(sess.Data.Employees, extracted.EmployeeName); ref != nil {
			sess.Data.EmployeeID = ref.ID
			sess.Data.EmployeeName = ref.Name
		}
	}
	if sess.Data.EmployeeID == uuid.Nil && len(sess.Data.Employees) == 1 {
		// A single-person business never needs the employee question.
		sess.Data.EmployeeID = sess.Data.Employees[0].ID
		sess.Data.EmployeeName = sess.Data.Employees[0].Name
	}
	if extracted.Date != nil {
		if err := schedule.ValidateDate(*extracted.Date, e.now()); err == nil {
			sess.Data.Date = extracted.Date.Format("2006-01-02")
		}
	}
	if extracted.Time != "" {
		sess.Data.Time = extracted.Time
	}

	sess.Data.PendingSteps = determineMissingData(sess.Data)
	if len(sess.Data.PendingSteps) == 0 {
		return e.validateAndConfirm(ctx, sess)
	}

	sess.State = session.StateCollectingData
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	return e.promptForStep(ctx, sess)
}

// determineMissingData returns the still-unset booking fields in the fixed
// employee, date, time order.
func determineMissingData(data session.Data) []session.Step {
	var steps []session.Step
	if data.EmployeeID == uuid.Nil {
		steps = append(steps, session.StepEmployee)
	}
	if data.Date == "" {
		steps = append(steps, session.StepDate)
	}
	if data.Time == "" {
		steps = append(steps, session.StepTime)
	}
	return steps
}

// handleDataCollection processes exactly the first pending step against
// the new message. Failure re-prompts without touching the queue, so the
// flow only ever moves forward.
func (e *Engine) handleDataCollection(ctx context.Context, sess *session.Session, text string) error {
	if len(sess.Data.PendingSteps) == 0 {
		return e.validateAndConfirm(ctx, sess)
	}

	var ok bool
	var err error
	switch sess.Data.PendingSteps[0] {
	case session.StepEmployee:
		ok, err = e.collectEmployee(ctx, sess, text)
	case session.StepDate:
		ok, err = e.collectDate(ctx, sess, text)
	case session.StepTime:
		ok, err = e.collectTime(ctx, sess, text)
	default:
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgApology)
	}
	if err != nil || !ok {
		return err
	}

	sess.Data.PendingSteps = sess.Data.PendingSteps[1:]
	if len(sess.Data.PendingSteps) == 0 {
		return e.validateAndConfirm(ctx, sess)
	}
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	return e.promptForStep(ctx, sess)
}

var anyEmployeeWords = []string{"cualquiera", "cualquier", "el que sea", "la que sea", "quien sea", "me da igual"}

func (e *Engine) collectEmployee(ctx context.Context, sess *session.Session, text string) (bool, error) {
	lower := strings.ToLower(text)
	for _, w := range anyEmployeeWords {
		if strings.Contains(lower, w) {
			ref := sess.Data.Employees[0]
			sess.Data.EmployeeID = ref.ID
			sess.Data.EmployeeName = ref.Name
			return true, nil
		}
	}

	// One past the roster is the "Cualquiera" menu entry.
	if sel := nlp.ExtractSelection(text, len(sess.Data.Employees)+1); sel > 0 {
		ref := sess.Data.Employees[0]
		if sel <= len(sess.Data.Employees) {
			ref = sess.Data.Employees[sel-1]
		}
		sess.Data.EmployeeID = ref.ID
		sess.Data.EmployeeName = ref.Name
		return true, nil
	}

	name := nlp.ExtractName(text)
	if name == "" {
		name = strings.TrimSpace(text)
	}
	if ref := findEmployee(sess.Data.Employees, name); ref != nil {
		sess.Data.EmployeeID = ref.ID
		sess.Data.EmployeeName = ref.Name
		return true, nil
	}

	return false, e.reply(ctx, sess.Phone, msgRange(len(sess.Data.Employees)+1)+"\n\n"+formatEmployeePrompt(sess.Data.Employees))
}

func (e *Engine) collectDate(ctx context.Context, sess *session.Session, text string) (bool, error) {
	date := nlp.ExtractDate(text, e.now())
	if date == nil {
		return false, e.reply(ctx, sess.Phone, msgDateNotUnderstood)
	}
	switch err := schedule.ValidateDate(*date, e.now()); {
	case errors.Is(err, schedule.ErrDateInPast):
		return false, e.reply(ctx, sess.Phone, msgDateInPast)
	case errors.Is(err, schedule.ErrDateTooFar):
		return false, e.reply(ctx, sess.Phone, msgDateTooFar)
	case err != nil:
		return false, e.reply(ctx, sess.Phone, msgDateNotUnderstood)
	}
	sess.Data.Date = date.Format("2006-01-02")
	return true, nil
}

func (e *Engine) collectTime(ctx context.Context, sess *session.Session, text string) (bool, error) {
	// Only a bare numeral picks from the shown list; anything with more
	// text in it is a typed time and goes through the extractor, so
	// "a las 3 pm" never gets misread as slot #3.
	if len(sess.Data.ShownSlots) > 0 && isBareNumber(text) {
		if sel := nlp.ExtractSelection(text, len(sess.Data.ShownSlots)); sel > 0 {
			sess.Data.Time = sess.Data.ShownSlots[sel-1]
			return true, nil
		}
		return false, e.reply(ctx, sess.Phone, msgRange(len(sess.Data.ShownSlots)))
	}

	clock := nlp.ExtractTime(text)
	if clock == "" {
		return false, e.reply(ctx, sess.Phone, msgTimeNotUnderstood)
	}
	if err := schedule.ValidateTime(clock, nil); err != nil {
		return false, e.reply(ctx, sess.Phone, msgTimeNotUnderstood)
	}

	date, err := sess.BookingDate(e.loc)
	if err != nil {
		return false, fmt.Errorf("conversation: parsing session date: %w", err)
	}
	start, err := schedule.CombineDateTime(date, clock)
	if err != nil {
		return false, e.reply(ctx, sess.Phone, msgTimeNotUnderstood)
	}
	if err := schedule.ValidateDateTime(start, e.now()); err != nil {
		return false, e.reply(ctx, sess.Phone, msgTimeTooSoon)
	}

	free, err := e.slots.IsSlotFree(ctx, sess.Data.EmployeeID, start)
	if err != nil {
		return false, fmt.Errorf("conversation: checking slot: %w", err)
	}
	if !free {
		return false, e.showSlots(ctx, sess, msgSlotTaken)
	}
	sess.Data.Time = clock
	return true, nil
}

// promptForStep asks for the front of the queue. The time prompt doubles
// as the slot listing and records what was shown for index selection.
func (e *Engine) promptForStep(ctx context.Context, sess *session.Session) error {
	switch sess.Data.PendingSteps[0] {
	case session.StepEmployee:
		return e.reply(ctx, sess.Phone, formatEmployeePrompt(sess.Data.Employees))
	case session.StepDate:
		return e.reply(ctx, sess.Phone, msgAskDate)
	case session.StepTime:
		return e.showSlots(ctx, sess, "")
	}
	return nil
}

// showSlots lists the free slots for the selected employee and date, with
// an optional lead-in line, and caches them in the session.
func (e *Engine) showSlots(ctx context.Context, sess *session.Session, leadIn string) error {
	date, err := sess.BookingDate(e.loc)
	if err != nil {
		return fmt.Errorf("conversation: parsing session date: %w", err)
	}
	slots, err := e.slots.SlotsForDate(ctx, sess.Data.EmployeeID, date)
	if err != nil {
		return fmt.Errorf("conversation: computing slots: %w", err)
	}
	if len(slots) == 0 {
		sess.Data.Date = ""
		sess.Data.ShownSlots = nil
		sess.Data.PendingSteps = []session.Step{session.StepDate, session.StepTime}
		sess.State = session.StateCollectingData
		if err := e.sessions.Save(ctx, sess); err != nil {
			return fmt.Errorf("conversation: saving session: %w", err)
		}
		return e.reply(ctx, sess.Phone, fmt.Sprintf(msgNoSlots, sess.Data.EmployeeName, formatDayES(date)))
	}

	sess.Data.ShownSlots = make([]string, 0, len(slots))
	for _, s := range slots {
		sess.Data.ShownSlots = append(sess.Data.ShownSlots, s.Start.Format("15:04"))
	}
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}

	body := formatSlotPrompt(sess.Data.EmployeeName, formatDayES(date), slots)
	if leadIn != "" {
		body = leadIn + "\n" + body
	}
	return e.reply(ctx, sess.Phone, body)
}

// validateAndConfirm re-validates everything and re-checks the slot right
// before asking for the final yes. Data collected minutes ago can be stale.
func (e *Engine) validateAndConfirm(ctx context.Context, sess *session.Session) error {
	date, err := sess.BookingDate(e.loc)
	if err != nil {
		return fmt.Errorf("conversation: parsing session date: %w", err)
	}
	if err := schedule.ValidateDate(date, e.now()); err != nil {
		msg := msgDateInPast
		if errors.Is(err, schedule.ErrDateTooFar) {
			msg = msgDateTooFar
		}
		return e.backToStep(ctx, sess, session.StepDate, msg)
	}
	if err := schedule.ValidateTime(sess.Data.Time, nil); err != nil {
		return e.backToStep(ctx, sess, session.StepTime, msgTimeNotUnderstood)
	}
	start, err := schedule.CombineDateTime(date, sess.Data.Time)
	if err != nil {
		return e.backToStep(ctx, sess, session.StepTime, msgTimeNotUnderstood)
	}
	if err := schedule.ValidateDateTime(start, e.now()); err != nil {
		return e.backToStep(ctx, sess, session.StepTime, msgTimeTooSoon)
	}

	free, err := e.slots.IsSlotFree(ctx, sess.Data.EmployeeID, start)
	if err != nil {
		return fmt.Errorf("conversation: checking slot: %w", err)
	}
	if !free {
		sess.Data.Time = ""
		sess.Data.PendingSteps = []session.Step{session.StepTime}
		sess.State = session.StateCollectingData
		return e.showSlots(ctx, sess, msgSlotTaken)
	}

	sess.State = session.StateConfirming
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	summary := fmt.Sprintf(msgConfirmBooking, formatDayES(start), sess.Data.Time, sess.Data.EmployeeName)
	return e.reply(ctx, sess.Phone, summary)
}

// backToStep pushes a field back onto the queue and re-prompts for it.
func (e *Engine) backToStep(ctx context.Context, sess *session.Session, step session.Step, reason string) error {
	switch step {
	case session.StepDate:
		sess.Data.Date = ""
		sess.Data.Time = ""
		sess.Data.ShownSlots = nil
		sess.Data.PendingSteps = []session.Step{session.StepDate, session.StepTime}
	case session.StepTime:
		sess.Data.Time = ""
		sess.Data.PendingSteps = []session.Step{session.StepTime}
	}
	sess.State = session.StateCollectingData
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	if err := e.reply(ctx, sess.Phone, reason); err != nil {
		return err
	}
	return e.promptForStep(ctx, sess)
}

// handleConfirmation reads the final yes/no. Anything else re-prompts
// without changing state.
func (e *Engine) handleConfirmation(ctx context.Context, sess *session.Session, text string) error {
	switch {
	case nlp.IsAffirmative(text):
		return e.createAppointment(ctx, sess)
	case nlp.IsNegative(text):
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgBookingCancelled)
	default:
		return e.reply(ctx, sess.Phone, msgYesNo)
	}
}

func (e *Engine) createAppointment(ctx context.Context, sess *session.Session) error {
	date, err := sess.BookingDate(e.loc)
	if err != nil {
		return fmt.Errorf("conversation: parsing session date: %w", err)
	}
	start, err := schedule.CombineDateTime(date, sess.Data.Time)
	if err != nil {
		return fmt.Errorf("conversation: combining date and time: %w", err)
	}

	appt, err := e.appointments.Create(ctx, store.CreateAppointmentInput{
		BusinessID: sess.Data.BusinessID,
		CustomerID: sess.Data.CustomerID,
		EmployeeID: sess.Data.EmployeeID,
		StartsAt:   start,
		EndsAt:     start.Add(e.slots.Duration()),
	})
	if errors.Is(err, store.ErrSlotConflict) {
		// Someone grabbed the slot between confirmation prompt and reply.
		sess.Data.Time = ""
		sess.Data.PendingSteps = []session.Step{session.StepTime}
		sess.State = session.StateCollectingData
		return e.showSlots(ctx, sess, msgSlotTaken)
	}
	if err != nil {
		return fmt.Errorf("conversation: creating appointment: %w", err)
	}

	e.metrics.ObserveBooked()
	if e.reminders != nil {
		if err := e.reminders.Schedule(ctx, appt); err != nil {
			e.logger.Warn("reminder scheduling failed", "appointment_id", appt.ID, "error", err)
		}
	}

	confirmation := fmt.Sprintf(msgBooked, formatDayES(start), sess.Data.Time, sess.Data.EmployeeName)
	e.resetSession(ctx, sess)
	return e.reply(ctx, sess.Phone, confirmation)
}

func findEmployee(employees []session.EmployeeRef, name string) *session.EmployeeRef {
	for i := range employees {
		if strings.EqualFold(employees[i].Name, name) {
			return &employees[i]
		}
	}
	for i := range employees {
		if nlp.MatchName(name, employees[i].Name) {
			return &employees[i]
		}
	}
	return nil
}

func isBareNumber(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

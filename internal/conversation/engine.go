// Package conversation drives the SMS dialogue: it classifies each inbound
// message, routes it through the per-phone state machine and replies via
// the messaging transport. Appointments are only written at the final
// confirmation step.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmartinel/turnosms/internal/nlp"
	"github.com/dmartinel/turnosms/internal/observability/metrics"
	"github.com/dmartinel/turnosms/internal/schedule"
	"github.com/dmartinel/turnosms/internal/session"
	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/pkg/logging"
)

// Sender delivers one outbound SMS. Implemented by the Twilio client; tests
// use a recording fake.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// ReminderScheduler enqueues and cancels appointment reminders. Failures
// are logged, never surfaced to the user.
type ReminderScheduler interface {
	Schedule(ctx context.Context, appt *store.Appointment) error
	CancelForAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

// Engine is the top-level dispatcher for inbound messages. One Engine
// serves all tenants; per-phone turns are serialized so a double-send
// cannot interleave two mutations of the same session.
type Engine struct {
	sessions     session.Store
	customers    store.CustomerStore
	employees    store.EmployeeStore
	appointments store.AppointmentStore
	slots        *schedule.Engine
	sender       Sender
	reminders    ReminderScheduler

	logger  *logging.Logger
	metrics *metrics.ConversationMetrics
	tracer  trace.Tracer
	now     func() time.Time
	loc     *time.Location

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Sessions     session.Store
	Customers    store.CustomerStore
	Employees    store.EmployeeStore
	Appointments store.AppointmentStore
	Slots        *schedule.Engine
	Sender       Sender
	Reminders    ReminderScheduler
	Logger       *logging.Logger
	Metrics      *metrics.ConversationMetrics

	// Location is the business wall-clock zone for parsing collected
	// dates. Defaults to the process-local zone.
	Location *time.Location
}

// NewEngine builds the dispatcher. Panics when a required collaborator is
// missing; Reminders may be nil (reminders are then skipped).
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Sessions == nil {
		panic("conversation: session store is required")
	}
	if cfg.Customers == nil || cfg.Employees == nil || cfg.Appointments == nil {
		panic("conversation: entity stores are required")
	}
	if cfg.Slots == nil {
		panic("conversation: slot engine is required")
	}
	if cfg.Sender == nil {
		panic("conversation: sender is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		sessions:     cfg.Sessions,
		customers:    cfg.Customers,
		employees:    cfg.Employees,
		appointments: cfg.Appointments,
		slots:        cfg.Slots,
		sender:       cfg.Sender,
		reminders:    cfg.Reminders,
		logger:       logger,
		metrics:      cfg.Metrics,
		tracer:       otel.Tracer("conversation"),
		now:          time.Now,
		loc:          loc,
		locks:        map[string]*sync.Mutex{},
	}
}

var resetCommands = map[string]bool{"inicio": true, "start": true, "reiniciar": true, "empezar": true}
var helpCommands = map[string]bool{"ayuda": true, "help": true, "?": true}

// HandleMessage processes one inbound SMS end to end. The returned error
// is for the caller's logs only; by the time it returns the user has
// already received a reply, an apology included.
func (e *Engine) HandleMessage(ctx context.Context, businessID uuid.UUID, phone, text string) error {
	ctx, span := e.tracer.Start(ctx, "conversation.HandleMessage")
	defer span.End()
	span.SetAttributes(attribute.String("business_id", businessID.String()))

	unlock := e.lockPhone(phone)
	defer unlock()

	e.metrics.ObserveReceived()

	normalized := strings.ToLower(strings.TrimSpace(text))
	if resetCommands[normalized] {
		if err := e.sessions.Delete(ctx, phone); err != nil {
			e.logger.Warn("session delete on reset failed", "error", err)
		}
		return e.reply(ctx, phone, "Empecemos de nuevo.\n\n"+msgMenu)
	}
	if helpCommands[normalized] {
		return e.reply(ctx, phone, msgHelp)
	}

	sess, err := e.sessions.Get(ctx, phone)
	if err != nil {
		span.RecordError(err)
		return e.recover(ctx, phone, fmt.Errorf("conversation: loading session: %w", err))
	}
	if sess == nil {
		sess = &session.Session{
			Phone: phone,
			State: session.StateInitial,
			Data:  session.Data{BusinessID: businessID},
		}
	}
	span.SetAttributes(attribute.String("state", string(sess.State)))

	if err := e.dispatch(ctx, sess, text); err != nil {
		span.RecordError(err)
		return e.recover(ctx, phone, err)
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, sess *session.Session, text string) error {
	switch sess.State {
	case session.StateInitial, session.StateIntentDetected:
		return e.handleInitial(ctx, sess, text)
	case session.StateAskingName:
		return e.handleAskingName(ctx, sess, text)
	case session.StateCollectingData:
		return e.handleDataCollection(ctx, sess, text)
	case session.StateConfirming:
		return e.handleConfirmation(ctx, sess, text)
	case session.StateCancelling:
		return e.handleCancelSelection(ctx, sess, text)
	case session.StateConfirmingCancellation:
		return e.handleCancelConfirmation(ctx, sess, text)
	case session.StateViewing:
		// A message after a listing starts over cleanly.
		e.resetSession(ctx, sess)
		return e.handleInitial(ctx, sess, text)
	default:
		e.logger.Error("unrecognized session state", "phone", sess.Phone, "state", string(sess.State))
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgApology)
	}
}

// handleInitial resolves the customer, classifies intent and routes.
func (e *Engine) handleInitial(ctx context.Context, sess *session.Session, text string) error {
	customer, err := e.customers.GetByPhone(ctx, sess.Data.BusinessID, sess.Phone)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("conversation: resolving customer: %w", err)
	}
	if customer == nil {
		sess.State = session.StateAskingName
		if err := e.sessions.Save(ctx, sess); err != nil {
			return fmt.Errorf("conversation: saving session: %w", err)
		}
		return e.reply(ctx, sess.Phone, msgAskName)
	}
	sess.Data.CustomerID = customer.ID
	sess.Data.CustomerName = customer.Name

	return e.routeIntent(ctx, sess, text)
}

func (e *Engine) routeIntent(ctx context.Context, sess *session.Session, text string) error {
	// The menu invites a bare "1"/"2"/"3"; honor it before classifying.
	if isBareNumber(text) {
		switch nlp.ExtractSelection(text, 3) {
		case 1:
			e.metrics.ObserveIntent(string(nlp.IntentBook))
			return e.startBooking(ctx, sess, "")
		case 2:
			e.metrics.ObserveIntent(string(nlp.IntentView))
			return e.handleView(ctx, sess)
		case 3:
			e.metrics.ObserveIntent(string(nlp.IntentCancel))
			return e.startCancellation(ctx, sess)
		}
	}

	intent := nlp.DetectIntent(text)
	e.metrics.ObserveIntent(string(intent.Type))
	if !intent.IsClear() {
		if err := e.sessions.Save(ctx, sess); err != nil {
			return fmt.Errorf("conversation: saving session: %w", err)
		}
		return e.reply(ctx, sess.Phone, msgUnknownDefault+"\n\n"+msgMenu)
	}

	switch intent.Type {
	case nlp.IntentBook, nlp.IntentReschedule:
		// Rescheduling is book-a-new-slot; the user cancels the old one
		// separately.
		return e.startBooking(ctx, sess, text)
	case nlp.IntentCancel:
		return e.startCancellation(ctx, sess)
	case nlp.IntentView:
		return e.handleView(ctx, sess)
	case nlp.IntentHelp:
		return e.reply(ctx, sess.Phone, msgHelp)
	case nlp.IntentGreeting:
		greeting := fmt.Sprintf(msgWelcomeBack, sess.Data.CustomerName)
		if err := e.sessions.Save(ctx, sess); err != nil {
			return fmt.Errorf("conversation: saving session: %w", err)
		}
		return e.reply(ctx, sess.Phone, greeting+"\n\n"+msgMenu)
	default:
		return e.reply(ctx, sess.Phone, msgMenu)
	}
}

// handleAskingName finishes first-contact onboarding: the message is the
// customer's name.
func (e *Engine) handleAskingName(ctx context.Context, sess *session.Session, text string) error {
	name := nlp.ExtractName(text)
	if name == "" {
		// People answer "soy ana" or just "ana"; take the raw words when
		// the pattern finds nothing but the message is short.
		trimmed := strings.TrimSpace(text)
		if trimmed != "" && len(strings.Fields(trimmed)) <= 3 {
			name = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(trimmed), "soy "))
			name = titleWords(name)
		}
	}
	if name == "" {
		return e.reply(ctx, sess.Phone, msgNamePrompt)
	}

	customer, err := e.customers.Create(ctx, sess.Data.BusinessID, sess.Phone, name)
	if err != nil {
		return fmt.Errorf("conversation: creating customer: %w", err)
	}
	sess.Data.CustomerID = customer.ID
	sess.Data.CustomerName = customer.Name
	sess.State = session.StateInitial
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	return e.reply(ctx, sess.Phone, fmt.Sprintf(msgNameSaved, customer.Name)+"\n\n"+msgMenu)
}

// handleView lists upcoming appointments and leaves the session in viewing
// so the next message restarts cleanly.
func (e *Engine) handleView(ctx context.Context, sess *session.Session) error {
	appts, err := e.upcomingAppointments(ctx, sess)
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		e.resetSession(ctx, sess)
		return e.reply(ctx, sess.Phone, msgNoAppointments)
	}
	sess.State = session.StateViewing
	sess.Data.Appointments = appts
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("conversation: saving session: %w", err)
	}
	return e.reply(ctx, sess.Phone, formatAppointmentList("Tus próximos turnos:", appts))
}

func (e *Engine) upcomingAppointments(ctx context.Context, sess *session.Session) ([]session.AppointmentRef, error) {
	appts, err := e.appointments.ListByCustomer(ctx, sess.Data.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("conversation: listing appointments: %w", err)
	}
	employees, err := e.employees.ListActiveByBusiness(ctx, sess.Data.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("conversation: listing employees: %w", err)
	}
	names := make(map[uuid.UUID]string, len(employees))
	for _, emp := range employees {
		names[emp.ID] = emp.Name
	}

	now := e.now()
	var refs []session.AppointmentRef
	for _, a := range appts {
		if !a.Upcoming(now) {
			continue
		}
		refs = append(refs, session.AppointmentRef{
			ID:           a.ID,
			EmployeeName: names[a.EmployeeID],
			StartsAt:     a.StartsAt,
		})
	}
	return refs, nil
}

// recover is the catch-all: log, apologize, drop the session. The dialogue
// never stays stuck mid-flow after an unexpected error.
func (e *Engine) recover(ctx context.Context, phone string, err error) error {
	e.logger.Error("conversation turn failed", "phone", phone, "error", err)
	e.metrics.ObserveTurnFailure()
	if delErr := e.sessions.Delete(ctx, phone); delErr != nil {
		e.logger.Warn("session delete after failure failed", "error", delErr)
	}
	if sendErr := e.sender.Send(ctx, phone, msgApology); sendErr != nil {
		e.logger.Error("apology send failed", "phone", phone, "error", sendErr)
	}
	return err
}

func (e *Engine) resetSession(ctx context.Context, sess *session.Session) {
	if err := e.sessions.Delete(ctx, sess.Phone); err != nil {
		e.logger.Warn("session delete failed", "phone", sess.Phone, "error", err)
	}
	sess.State = session.StateInitial
	sess.Data = session.Data{
		BusinessID:   sess.Data.BusinessID,
		CustomerID:   sess.Data.CustomerID,
		CustomerName: sess.Data.CustomerName,
	}
}

func (e *Engine) reply(ctx context.Context, phone, body string) error {
	if err := e.sender.Send(ctx, phone, body); err != nil {
		return fmt.Errorf("conversation: sending reply: %w", err)
	}
	e.metrics.ObserveSent()
	return nil
}

// lockPhone serializes turns for one phone. Entries are never removed; the
// map grows with the number of distinct phones seen, which is bounded by
// the customer base.
func (e *Engine) lockPhone(phone string) func() {
	e.mu.Lock()
	l, ok := e.locks[phone]
	if !ok {
		l = &sync.Mutex{}
		e.locks[phone] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}

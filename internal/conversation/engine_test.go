package conversation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmartinel/turnosms/internal/schedule"
	"github.com/dmartinel/turnosms/internal/session"
	"github.com/dmartinel/turnosms/internal/store"
)

const testPhone = "+5491155550001"

// Monday morning; "mañana" resolves to Tuesday 2026-03-10.
var testNow = time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)

type fixture struct {
	engine       *Engine
	sender       *fakeSender
	customers    *fakeCustomers
	employees    *fakeEmployees
	appointments *fakeAppointments
	reminders    *fakeReminders
	sessions     *session.MemoryStore
	businessID   uuid.UUID
	now          time.Time
}

func newFixture(t *testing.T, employees []store.Employee, rules []store.AvailabilityRule) *fixture {
	t.Helper()
	f := &fixture{
		sender:       &fakeSender{},
		customers:    &fakeCustomers{byPhone: map[string]*store.Customer{}},
		employees:    &fakeEmployees{list: employees},
		appointments: &fakeAppointments{},
		reminders:    &fakeReminders{},
		sessions:     session.NewMemoryStore(session.DefaultTTL),
		businessID:   uuid.New(),
		now:          testNow,
	}
	slots := schedule.NewEngine(&fakeAvailability{rules: rules}, f.appointments, time.Hour, nil).
		WithClock(func() time.Time { return f.now })
	f.engine = NewEngine(EngineConfig{
		Sessions:     f.sessions,
		Customers:    f.customers,
		Employees:    f.employees,
		Appointments: f.appointments,
		Slots:        slots,
		Sender:       f.sender,
		Reminders:    f.reminders,
		Location:     time.UTC,
	})
	f.engine.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) knownCustomer(name string) *store.Customer {
	c := &store.Customer{ID: uuid.New(), BusinessID: f.businessID, Phone: testPhone, Name: name}
	f.customers.byPhone[testPhone] = c
	return c
}

func (f *fixture) send(t *testing.T, text string) string {
	t.Helper()
	require.NoError(t, f.engine.HandleMessage(context.Background(), f.businessID, testPhone, text))
	return f.sender.last()
}

func (f *fixture) session(t *testing.T) *session.Session {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), testPhone)
	require.NoError(t, err)
	return s
}

func weeklyRule(employeeID uuid.UUID, day time.Weekday, startMin, endMin int) store.AvailabilityRule {
	return store.AvailabilityRule{ID: uuid.New(), EmployeeID: employeeID, Weekday: day, StartMin: startMin, EndMin: endMin}
}

func singleEmployeeFixture(t *testing.T) (*fixture, store.Employee) {
	emp := store.Employee{ID: uuid.New(), Name: "María", Active: true}
	rules := []store.AvailabilityRule{
		weeklyRule(emp.ID, time.Tuesday, 540, 1020),   // 09:00-17:00
		weeklyRule(emp.ID, time.Wednesday, 540, 720),  // 09:00-12:00
	}
	f := newFixture(t, []store.Employee{emp}, rules)
	return f, emp
}

func TestPureDateFallsToMenu(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	reply := f.send(t, "mañana")
	assert.Contains(t, reply, "¿Qué querés hacer?")
}

func TestBookingHappyPathSingleEmployee(t *testing.T) {
	f, emp := singleEmployeeFixture(t)
	c := f.knownCustomer("Ana")

	reply := f.send(t, "quiero turno mañana a las 3pm")
	assert.Contains(t, reply, "Confirmame el turno")
	assert.Contains(t, reply, "15:00")
	assert.Contains(t, reply, "María")

	sess := f.session(t)
	require.NotNil(t, sess)
	assert.Equal(t, session.StateConfirming, sess.State)

	reply = f.send(t, "sí")
	assert.Contains(t, reply, "Turno confirmado")

	require.Len(t, f.appointments.appts, 1)
	appt := f.appointments.appts[0]
	assert.Equal(t, c.ID, appt.CustomerID)
	assert.Equal(t, emp.ID, appt.EmployeeID)
	assert.Equal(t, time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC), appt.StartsAt)
	assert.Equal(t, time.Hour, appt.EndsAt.Sub(appt.StartsAt))
	assert.Equal(t, store.AppointmentConfirmed, appt.Status)

	assert.Len(t, f.reminders.scheduled, 1)
	assert.Nil(t, f.session(t), "session is dropped after commit")
}

func TestBookingCollectsMissingFields(t *testing.T) {
	emp1 := store.Employee{ID: uuid.New(), Name: "María", Active: true}
	emp2 := store.Employee{ID: uuid.New(), Name: "Carlos", Active: true}
	rules := []store.AvailabilityRule{weeklyRule(emp1.ID, time.Tuesday, 540, 720)}
	f := newFixture(t, []store.Employee{emp1, emp2}, rules)
	f.knownCustomer("Ana")

	reply := f.send(t, "quiero un turno")
	assert.Contains(t, reply, "¿Con quién querés el turno?")
	assert.Contains(t, reply, "1. María")
	assert.Contains(t, reply, "3. Cualquiera")

	reply = f.send(t, "maría")
	assert.Contains(t, reply, "¿Para qué fecha")

	reply = f.send(t, "mañana")
	assert.Contains(t, reply, "Horarios libres de María")
	assert.Contains(t, reply, "1. 09:00 hs")

	reply = f.send(t, "2")
	assert.Contains(t, reply, "Confirmame el turno")
	assert.Contains(t, reply, "10:00")
}

func TestAnyEmployeePicksFirst(t *testing.T) {
	emp1 := store.Employee{ID: uuid.New(), Name: "María", Active: true}
	emp2 := store.Employee{ID: uuid.New(), Name: "Carlos", Active: true}
	f := newFixture(t, []store.Employee{emp1, emp2}, []store.AvailabilityRule{weeklyRule(emp1.ID, time.Tuesday, 540, 720)})
	f.knownCustomer("Ana")

	f.send(t, "quiero un turno")
	f.send(t, "cualquiera")

	sess := f.session(t)
	require.NotNil(t, sess)
	assert.Equal(t, emp1.ID, sess.Data.EmployeeID)
}

func TestOnePastEndIndexMeansAny(t *testing.T) {
	emp1 := store.Employee{ID: uuid.New(), Name: "María", Active: true}
	emp2 := store.Employee{ID: uuid.New(), Name: "Carlos", Active: true}
	f := newFixture(t, []store.Employee{emp1, emp2}, []store.AvailabilityRule{weeklyRule(emp1.ID, time.Tuesday, 540, 720)})
	f.knownCustomer("Ana")

	f.send(t, "quiero un turno")
	f.send(t, "3")

	sess := f.session(t)
	require.NotNil(t, sess)
	assert.Equal(t, emp1.ID, sess.Data.EmployeeID)
}

func TestSlotSelectionOutOfRange(t *testing.T) {
	f, emp := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	f.send(t, "quiero turno mañana")
	reply := f.sender.last()
	assert.Contains(t, reply, "Horarios libres")

	sess := f.session(t)
	require.NotNil(t, sess)
	shown := len(sess.Data.ShownSlots)
	require.Greater(t, shown, 0)

	reply = f.send(t, "99")
	assert.Contains(t, reply, "del 1 al")

	// The queue is untouched; a valid pick still works.
	reply = f.send(t, "1")
	assert.Contains(t, reply, "Confirmame el turno")
	_ = emp
}

func TestConfirmationReprompt(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	f.send(t, "quiero turno mañana a las 3pm")
	sess := f.session(t)
	require.Equal(t, session.StateConfirming, sess.State)

	reply := f.send(t, "tal vez")
	assert.Equal(t, msgYesNo, reply)

	sess = f.session(t)
	require.NotNil(t, sess)
	assert.Equal(t, session.StateConfirming, sess.State, "state unchanged on ambiguous reply")
}

func TestNegativeConfirmationAborts(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	f.send(t, "quiero turno mañana a las 3pm")
	reply := f.send(t, "no")
	assert.Equal(t, msgBookingCancelled, reply)
	assert.Empty(t, f.appointments.appts)
	assert.Nil(t, f.session(t))
}

func TestCommitConflictReturnsToSlots(t *testing.T) {
	f, emp := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	f.send(t, "quiero turno mañana a las 3pm")

	// Another customer grabs 15:00 before the confirmation arrives.
	other := uuid.New()
	_, err := f.appointments.Create(context.Background(), store.CreateAppointmentInput{
		BusinessID: f.businessID,
		CustomerID: other,
		EmployeeID: emp.ID,
		StartsAt:   time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	reply := f.send(t, "sí")
	assert.Contains(t, reply, "se ocupó")
	assert.Contains(t, reply, "Horarios libres")
	assert.NotContains(t, reply, "15:00")

	sess := f.session(t)
	require.NotNil(t, sess)
	assert.Equal(t, session.StateCollectingData, sess.State)
	assert.Equal(t, []session.Step{session.StepTime}, sess.Data.PendingSteps)
}

func TestCancelWithNoAppointments(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	reply := f.send(t, "cancelar")
	assert.Equal(t, msgNothingToCancel, reply)
	assert.Nil(t, f.session(t))
}

func TestCancellationFlow(t *testing.T) {
	f, emp := singleEmployeeFixture(t)
	c := f.knownCustomer("Ana")

	_, err := f.appointments.Create(context.Background(), store.CreateAppointmentInput{
		BusinessID: f.businessID,
		CustomerID: c.ID,
		EmployeeID: emp.ID,
		StartsAt:   time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	reply := f.send(t, "cancelar")
	assert.Contains(t, reply, "¿Cuál turno querés cancelar?")
	assert.Contains(t, reply, "1. martes 10/03")

	reply = f.send(t, "1")
	assert.Contains(t, reply, "¿Confirmás?")

	reply = f.send(t, "si")
	assert.Equal(t, msgCancelled, reply)
	assert.Equal(t, store.AppointmentCancelled, f.appointments.appts[0].Status)
	assert.Len(t, f.reminders.cancelled, 1)
	assert.Nil(t, f.session(t))
}

func TestCancellationKept(t *testing.T) {
	f, emp := singleEmployeeFixture(t)
	c := f.knownCustomer("Ana")

	_, err := f.appointments.Create(context.Background(), store.CreateAppointmentInput{
		BusinessID: f.businessID,
		CustomerID: c.ID,
		EmployeeID: emp.ID,
		StartsAt:   time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	f.send(t, "cancelar")
	f.send(t, "1")
	reply := f.send(t, "no")
	assert.Equal(t, msgCancelKept, reply)
	assert.Equal(t, store.AppointmentConfirmed, f.appointments.appts[0].Status)
}

func TestViewAppointments(t *testing.T) {
	f, emp := singleEmployeeFixture(t)
	c := f.knownCustomer("Ana")

	_, err := f.appointments.Create(context.Background(), store.CreateAppointmentInput{
		BusinessID: f.businessID,
		CustomerID: c.ID,
		EmployeeID: emp.ID,
		StartsAt:   time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	reply := f.send(t, "mis turnos")
	assert.Contains(t, reply, "Tus próximos turnos")
	assert.Contains(t, reply, "martes 10/03")
	assert.Contains(t, reply, "María")

	// The next message restarts cleanly from the viewing state.
	reply = f.send(t, "hola")
	assert.Contains(t, reply, "¡Hola de nuevo, Ana!")
}

func TestGlobalResetCommand(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	f.send(t, "quiero turno mañana a las 3pm")
	require.NotNil(t, f.session(t))

	reply := f.send(t, "inicio")
	assert.Contains(t, reply, "Empecemos de nuevo")
	assert.Nil(t, f.session(t))
}

func TestGlobalHelpKeepsState(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	f.send(t, "quiero turno mañana a las 3pm")
	reply := f.send(t, "ayuda")
	assert.Equal(t, msgHelp, reply)

	sess := f.session(t)
	require.NotNil(t, sess)
	assert.Equal(t, session.StateConfirming, sess.State)
}

func TestOnboardingAsksForName(t *testing.T) {
	f, _ := singleEmployeeFixture(t)

	reply := f.send(t, "hola")
	assert.Equal(t, msgAskName, reply)

	reply = f.send(t, "soy Ana")
	assert.Contains(t, reply, "¡Un gusto, Ana!")
	require.Contains(t, f.customers.byPhone, testPhone)
	assert.Equal(t, "Ana", f.customers.byPhone[testPhone].Name)
}

func TestCollaboratorFailureResetsWithApology(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.customers.err = context.DeadlineExceeded

	err := f.engine.HandleMessage(context.Background(), f.businessID, testPhone, "hola")
	require.Error(t, err)
	assert.Equal(t, msgApology, f.sender.last())
	assert.Nil(t, f.session(t))
}

func TestCorruptedStateResets(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")
	require.NoError(t, f.sessions.Save(context.Background(), &session.Session{
		Phone: testPhone,
		State: session.State("garbage"),
	}))

	reply := f.send(t, "hola")
	assert.Equal(t, msgApology, reply)
	assert.Nil(t, f.session(t))
}

func TestDetermineMissingData(t *testing.T) {
	assert.Equal(t,
		[]session.Step{session.StepEmployee, session.StepDate, session.StepTime},
		determineMissingData(session.Data{}))

	full := session.Data{EmployeeID: uuid.New(), Date: "2026-03-10", Time: "15:00"}
	assert.Empty(t, determineMissingData(full))

	assert.Equal(t,
		[]session.Step{session.StepDate},
		determineMissingData(session.Data{EmployeeID: uuid.New(), Time: "15:00"}))
}

func TestTypedTimeBeatsSlotIndex(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	f.send(t, "quiero un turno")
	reply := f.send(t, "mañana")
	assert.Contains(t, reply, "Horarios libres de María")

	// "a las 3 pm" carries a digit but is a typed time, not a list pick.
	reply = f.send(t, "a las 3 pm")
	assert.Contains(t, reply, "Confirmame el turno")
	assert.Contains(t, reply, "15:00")
	assert.NotContains(t, reply, "11:00")
}

func TestMenuNumberSelectsOption(t *testing.T) {
	f, _ := singleEmployeeFixture(t)
	f.knownCustomer("Ana")

	reply := f.send(t, "1")
	assert.Contains(t, reply, "¿Para qué fecha")

	f.send(t, "inicio")
	reply = f.send(t, "2")
	assert.Contains(t, reply, "No tenés turnos próximos")

	f.send(t, "inicio")
	reply = f.send(t, "3")
	assert.Contains(t, reply, "No tenés turnos próximos para cancelar")
}

func TestConfirmationDateBeyondHorizon(t *testing.T) {
	f, emp := singleEmployeeFixture(t)
	c := f.knownCustomer("Ana")

	// A fully collected booking whose date drifted past the horizon by the
	// time the final re-validation runs.
	sess := &session.Session{
		Phone: testPhone,
		State: session.StateCollectingData,
		Data: session.Data{
			BusinessID:   f.businessID,
			CustomerID:   c.ID,
			CustomerName: c.Name,
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			Date:         f.now.AddDate(0, 0, 91).Format("2006-01-02"),
			Time:         "10:00",
		},
		LastActivity: f.now,
	}
	require.NoError(t, f.sessions.Save(context.Background(), sess))

	f.send(t, "dale")
	all := strings.Join(f.sender.sent, "\n")
	assert.Contains(t, all, "hasta 90 días")
	assert.NotContains(t, all, "Esa fecha ya pasó")
}

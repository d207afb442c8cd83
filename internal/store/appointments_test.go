package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentRepository_CreateConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepository(mock)
	input := CreateAppointmentInput{
		BusinessID: uuid.New(),
		CustomerID: uuid.New(),
		EmployeeID: uuid.New(),
		StartsAt:   time.Date(2026, 9, 3, 15, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, 9, 3, 16, 0, 0, 0, time.UTC),
	}

	// The guarded insert returns no rows when the slot filled in the meantime.
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), input.BusinessID, input.CustomerID, input.EmployeeID, input.StartsAt, input.EndsAt).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.Create(context.Background(), input)
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepository(mock)
	input := CreateAppointmentInput{
		BusinessID: uuid.New(),
		CustomerID: uuid.New(),
		EmployeeID: uuid.New(),
		StartsAt:   time.Date(2026, 9, 3, 15, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, 9, 3, 16, 0, 0, 0, time.UTC),
	}
	created := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), input.BusinessID, input.CustomerID, input.EmployeeID, input.StartsAt, input.EndsAt).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	appt, err := repo.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, AppointmentConfirmed, appt.Status)
	assert.Equal(t, input.StartsAt, appt.StartsAt)
	assert.Equal(t, created, appt.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_CreateRejectsInvertedWindow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepository(mock)
	_, err = repo.Create(context.Background(), CreateAppointmentInput{
		StartsAt: time.Date(2026, 9, 3, 16, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 9, 3, 15, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}

func TestAppointmentRepository_Cancel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepository(mock)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "business_id", "customer_id", "employee_id", "starts_at", "ends_at", "status", "created_at",
		}).AddRow(id, uuid.New(), uuid.New(), uuid.New(), now.Add(time.Hour), now.Add(2*time.Hour), AppointmentCancelled, now))

	appt, err := repo.Cancel(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, AppointmentCancelled, appt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_CancelMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.Cancel(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppointmentRepository_ListByEmployeeBetween(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepository(mock)
	employeeID := uuid.New()
	from := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(`FROM appointments`).
		WithArgs(employeeID, from, to).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "business_id", "customer_id", "employee_id", "starts_at", "ends_at", "status", "created_at",
		}).
			AddRow(uuid.New(), uuid.New(), uuid.New(), employeeID, from.Add(10*time.Hour), from.Add(11*time.Hour), AppointmentConfirmed, from).
			AddRow(uuid.New(), uuid.New(), uuid.New(), employeeID, from.Add(14*time.Hour), from.Add(15*time.Hour), AppointmentConfirmed, from))

	appts, err := repo.ListByEmployeeBetween(context.Background(), employeeID, from, to)
	require.NoError(t, err)
	assert.Len(t, appts, 2)
	assert.True(t, appts[0].StartsAt.Before(appts[1].StartsAt))
}

func TestAppointmentUpcoming(t *testing.T) {
	now := time.Now()
	appt := Appointment{StartsAt: now.Add(time.Hour), Status: AppointmentConfirmed}
	assert.True(t, appt.Upcoming(now))

	appt.Status = AppointmentCancelled
	assert.False(t, appt.Upcoming(now))

	appt.Status = AppointmentConfirmed
	appt.StartsAt = now.Add(-time.Hour)
	assert.False(t, appt.Upcoming(now))
}

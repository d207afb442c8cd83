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

func TestCustomerRepository_GetByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepository(mock)
	businessID := uuid.New()
	customerID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM customers`).
		WithArgs(businessID, "+5491122334455").
		WillReturnRows(pgxmock.NewRows([]string{"id", "business_id", "phone", "name", "created_at"}).
			AddRow(customerID, businessID, "+5491122334455", "Lucía", now))

	customer, err := repo.GetByPhone(context.Background(), businessID, "+5491122334455")
	require.NoError(t, err)
	assert.Equal(t, customerID, customer.ID)
	assert.Equal(t, "Lucía", customer.Name)
}

func TestCustomerRepository_GetByPhoneMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepository(mock)
	businessID := uuid.New()

	mock.ExpectQuery(`FROM customers`).
		WithArgs(businessID, "+5491100000000").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByPhone(context.Background(), businessID, "+5491100000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepository(mock)
	businessID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO customers`).
		WithArgs(pgxmock.AnyArg(), businessID, "+5491122334455", "Lucía").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	customer, err := repo.Create(context.Background(), businessID, "+5491122334455", "Lucía")
	require.NoError(t, err)
	assert.Equal(t, businessID, customer.BusinessID)
	assert.Equal(t, now, customer.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerRepository stores customers in Postgres.
type CustomerRepository struct {
	db DB
}

// NewCustomerRepository initializes a repo backed by pgx.
func NewCustomerRepository(db DB) *CustomerRepository {
	if db == nil {
		panic("store: db required")
	}
	return &CustomerRepository{db: db}
}

var _ CustomerStore = (*CustomerRepository)(nil)

// GetByPhone fetches a customer scoped to the business.
func (r *CustomerRepository) GetByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*Customer, error) {
	query := `
		SELECT id, business_id, phone, name, created_at
		FROM customers
		WHERE business_id = $1 AND phone = $2
	`
	var c Customer
	if err := r.db.QueryRow(ctx, query, businessID, phone).Scan(
		&c.ID, &c.BusinessID, &c.Phone, &c.Name, &c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: select customer: %w", err)
	}
	return &c, nil
}

// GetByID fetches one customer.
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	query := `
		SELECT id, business_id, phone, name, created_at
		FROM customers
		WHERE id = $1
	`
	var c Customer
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.BusinessID, &c.Phone, &c.Name, &c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: select customer: %w", err)
	}
	return &c, nil
}

// Create inserts a new customer row.
func (r *CustomerRepository) Create(ctx context.Context, businessID uuid.UUID, phone, name string) (*Customer, error) {
	id := uuid.New()
	query := `
		INSERT INTO customers (id, business_id, phone, name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	c := Customer{ID: id, BusinessID: businessID, Phone: phone, Name: name}
	if err := r.db.QueryRow(ctx, query, id, businessID, phone, name).Scan(&c.CreatedAt); err != nil {
		return nil, fmt.Errorf("store: insert customer: %w", err)
	}
	return &c, nil
}

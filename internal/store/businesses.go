package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BusinessRepository resolves tenants in Postgres.
type BusinessRepository struct {
	db DB
}

// NewBusinessRepository initializes a repo backed by pgx.
func NewBusinessRepository(db DB) *BusinessRepository {
	if db == nil {
		panic("store: db required")
	}
	return &BusinessRepository{db: db}
}

var _ BusinessStore = (*BusinessRepository)(nil)

// GetByPhoneNumber resolves the business that owns an SMS number.
func (r *BusinessRepository) GetByPhoneNumber(ctx context.Context, phone string) (*Business, error) {
	return r.get(ctx, `
		SELECT id, name, phone_number, timezone, created_at
		FROM businesses
		WHERE phone_number = $1
	`, phone)
}

// GetByID fetches a business by its id.
func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*Business, error) {
	return r.get(ctx, `
		SELECT id, name, phone_number, timezone, created_at
		FROM businesses
		WHERE id = $1
	`, id)
}

func (r *BusinessRepository) get(ctx context.Context, query string, arg any) (*Business, error) {
	var b Business
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&b.ID, &b.Name, &b.PhoneNumber, &b.Timezone, &b.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: select business: %w", err)
	}
	return &b, nil
}

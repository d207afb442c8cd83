package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/pkg/logging"
)

// Resolver maps an inbound SMS number to a business. Unrecognized numbers
// fall back to the configured default so a single-tenant deploy needs no
// number mapping at all.
type Resolver struct {
	businesses store.BusinessStore
	defaultID  uuid.UUID
	logger     *logging.Logger
}

func NewResolver(businesses store.BusinessStore, defaultID uuid.UUID, logger *logging.Logger) *Resolver {
	if businesses == nil {
		panic("tenancy: business store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{businesses: businesses, defaultID: defaultID, logger: logger}
}

// Resolve returns the business owning the given SMS number.
func (r *Resolver) Resolve(ctx context.Context, toNumber string) (*store.Business, error) {
	b, err := r.businesses.GetByPhoneNumber(ctx, toNumber)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("tenancy: resolving number %q: %w", toNumber, err)
	}
	if r.defaultID == uuid.Nil {
		return nil, fmt.Errorf("tenancy: no business for number %q: %w", toNumber, store.ErrNotFound)
	}
	r.logger.Debug("falling back to default business", "to", toNumber)
	b, err = r.businesses.GetByID(ctx, r.defaultID)
	if err != nil {
		return nil, fmt.Errorf("tenancy: loading default business: %w", err)
	}
	return b, nil
}

// Package tenancy resolves which business an inbound message belongs to
// and carries that identity through request context.
package tenancy

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const businessKey ctxKey = "turnosms.business_id"

// WithBusinessID stores the business id in context.
func WithBusinessID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, businessKey, id)
}

// BusinessIDFromContext extracts the business id if present.
func BusinessIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(businessKey)
	if val == nil {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

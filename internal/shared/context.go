package shared

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const tenantContextKey contextKey = "ledgerline.tenant"

// ContextWithTenant stores the tenant id on the context.
func ContextWithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenantID)
}

// TenantFromContext returns the tenant id carried by the context, if any.
func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

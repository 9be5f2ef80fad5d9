package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

const tenantIDHeader = "X-Tenant-ID"

// withTenant resolves the tenant every request runs against and stores it
// in the request context. Resolution order: the X-Tenant-ID header when
// present, otherwise the Host header against the tenant cache. Requests
// that resolve to no tenant are rejected before any handler runs.
func (h *Handler) withTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		resolved, err := h.resolveTenant(r)
		if err != nil {
			log.Warn().Str("host", r.Host).Msg("request for unknown tenant")
			http.Error(w, ErrUnknownTenant.Error(), http.StatusNotFound)
			return
		}

		ctx := context.WithValue(r.Context(), utils.TenantIDCtxKey, resolved.ID)
		ctx = context.WithValue(ctx, utils.TenantCtxKey, resolved)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) resolveTenant(r *http.Request) (models.Tenant, error) {
	if header := r.Header.Get(tenantIDHeader); header != "" {
		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			return models.Tenant{}, ErrUnknownTenant
		}
		return h.tenants.Get(id)
	}

	if tenant, err := h.tenants.ByHostname(r.Host); err == nil {
		return tenant, nil
	}

	// unmatched hostnames fall back to the root tenant
	return h.tenants.Root()
}

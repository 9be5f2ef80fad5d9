package http

import (
	"net/http"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/utils"
)

// basicAuthExempt lists paths reachable without the tenant-wide basic auth
// gate. Probes must stay answerable so upstream load balancers do not mark
// a gated tenant as down.
var basicAuthExempt = map[string]struct{}{
	"/api/health": {},
}

// withBasicAuth gates all routes of a tenant behind static credentials
// when the tenant has basic auth enabled. Comparison runs in constant
// time. Tenants without the gate pass through untouched.
func (h *Handler) withBasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant, _ := utils.GetTenantFromContext(r.Context())

		if !tenant.BasicAuth {
			next.ServeHTTP(w, r)
			return
		}

		if _, exempt := basicAuthExempt[r.URL.Path]; exempt {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok ||
			!utils.ConstantTimeEqual(username, tenant.BasicAuthUsername) ||
			!utils.ConstantTimeEqual(password, tenant.BasicAuthPassword) {
			logger.FromRequest(r).Warn().Msg("basic auth challenge failed")
			w.Header().Set("WWW-Authenticate", `Basic realm="restricted"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

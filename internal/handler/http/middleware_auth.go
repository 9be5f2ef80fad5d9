package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

const (
	sessionHeader  = "X-Session"
	apiTokenHeader = "X-Api-Token"
)

// withSession attaches the caller's authentication to the request context.
//
// Two credentials are recognised, in order:
//   - the X-Session header, looked up in the session store. A session
//     bound to a different tenant than the one the request resolved to is
//     treated as absent.
//   - the X-Api-Token header (or api-token query parameter), compared in
//     constant time against the admin API token digest. The token is only
//     honoured on the root tenant and grants a synthetic admin session.
//
// Requests carrying neither credential pass through anonymous; the role
// guard decides per endpoint whether that is acceptable.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		ctx := r.Context()

		tenant, _ := utils.GetTenantFromContext(ctx)

		if id := r.Header.Get(sessionHeader); id != "" {
			session := h.sessions.Get(id)
			if session == nil || session.TenantID != tenant.ID {
				log.Warn().Msg("invalid or expired session presented")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			ctx = context.WithValue(ctx, utils.SessionCtxKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		apiToken := r.Header.Get(apiTokenHeader)
		if apiToken == "" {
			apiToken = r.URL.Query().Get("api-token")
		}
		if apiToken != "" {
			if !h.validAPIToken(tenant, apiToken) {
				log.Warn().Msg("invalid api token presented")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			session := &models.Session{
				ID:        "api-token",
				TenantID:  tenant.ID,
				UserID:    "api-token",
				Role:      models.RoleAdmin,
				Status:    "enabled",
				ExpiresAt: time.Now().Add(time.Minute),
			}
			ctx = context.WithValue(ctx, utils.SessionCtxKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// validAPIToken reports whether the presented API token matches the stored
// digest. Only the root tenant carries one.
func (h *Handler) validAPIToken(tenant models.Tenant, apiToken string) bool {
	if tenant.ID != models.RootTenantID || tenant.AdminAPITokenDigest == "" {
		return false
	}
	return utils.ConstantTimeEqual(utils.APITokenDigest(apiToken), tenant.AdminAPITokenDigest)
}

// requireRoles returns a middleware enforcing the endpoint's allowed role
// set. RoleAny admits everyone, RoleNone admits only anonymous callers,
// and any other set demands an authenticated session whose role is listed.
func (h *Handler) requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromRequest(r)

			session := utils.GetSessionFromContext(r.Context())

			if slices.Contains(roles, models.RoleAny) {
				next.ServeHTTP(w, r)
				return
			}

			if slices.Contains(roles, models.RoleNone) {
				if session != nil {
					log.Warn().Str("role", session.Role).Msg("authenticated caller on anonymous-only endpoint")
					http.Error(w, ErrAnonymousOnly.Error(), http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if session == nil {
				http.Error(w, ErrSessionRequired.Error(), http.StatusUnauthorized)
				return
			}

			if !slices.Contains(roles, session.Role) {
				log.Warn().Str("role", session.Role).Msg("role not allowed for endpoint")
				http.Error(w, ErrForbiddenRole.Error(), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

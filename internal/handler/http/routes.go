package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tiplinehq/tipline/models"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withTenant)
	router.Use(h.withLogging)
	router.Use(withGZip)
	router.Use(h.withBasicAuth)
	router.Use(h.withSession)

	router.Group(func(r chi.Router) {
		r.Use(h.requireRoles(models.RoleAny))
		r.Get("/api/health", h.health)
	})

	// whistleblower routes: reserved for anonymous callers
	router.Group(func(r chi.Router) {
		r.Use(h.requireRoles(models.RoleNone))
		r.Post("/api/token", h.issueToken)
		r.Post("/api/token/{id}/file", h.uploadFile)
		r.With(h.withUniformDelay).Put("/api/submission/{token_id}", h.finalizeSubmission)
		r.With(h.withUniformDelay).Post("/api/authentication", h.login)
	})

	// authenticated routes
	router.Group(func(r chi.Router) {
		r.With(h.requireRoles(models.RoleAdmin, models.RoleReceiver, models.RoleCustodian)).
			Delete("/api/session", h.deleteSession)
		r.With(h.requireRoles(models.RoleReceiver, models.RoleAdmin)).
			Get("/api/rtip/{id}", h.receiverTip)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}

package http

import (
	"net/http"
	"time"

	"github.com/tiplinehq/tipline/internal/config"
	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/service"
	"github.com/tiplinehq/tipline/internal/session"
	"github.com/tiplinehq/tipline/internal/tenant"
	"github.com/tiplinehq/tipline/internal/token"
	"github.com/tiplinehq/tipline/internal/upload"
)

// Alerter is notified when a request's execution time exceeds the
// configured threshold. The default raises a log warning; deployments can
// swap in an operator notification.
type Alerter func(r *http.Request, duration time.Duration)

type Handler struct {
	services *service.Services
	cfg      config.Server

	tenants  *tenant.Cache
	sessions *session.Store
	tokens   *token.Store
	staging  *upload.Staging

	alert  Alerter
	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.Server, tenants *tenant.Cache, sessions *session.Store, tokens *token.Store, staging *upload.Staging, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	h := &Handler{
		services: services,
		cfg:      cfg,
		tenants:  tenants,
		sessions: sessions,
		tokens:   tokens,
		staging:  staging,
		logger:   logger,
	}
	h.alert = h.logAlert
	return h
}

// SetAlerter replaces the slow-request notification hook.
func (h *Handler) SetAlerter(alert Alerter) {
	if alert != nil {
		h.alert = alert
	}
}

func (h *Handler) logAlert(r *http.Request, duration time.Duration) {
	logger.FromRequest(r).Warn().
		Str("uri", r.RequestURI).
		Str("method", r.Method).
		Dur("duration", duration).
		Dur("threshold", h.cfg.SlowRequestThreshold).
		Msg("request execution time exceeded threshold")
}

package handler

import (
	"github.com/tiplinehq/tipline/internal/config"
	"github.com/tiplinehq/tipline/internal/handler/http"
	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/service"
	"github.com/tiplinehq/tipline/internal/session"
	"github.com/tiplinehq/tipline/internal/tenant"
	"github.com/tiplinehq/tipline/internal/token"
	"github.com/tiplinehq/tipline/internal/upload"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, cfg config.Server, tenants *tenant.Cache, sessions *session.Store, tokens *token.Store, staging *upload.Staging, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, cfg, tenants, sessions, tokens, staging, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}

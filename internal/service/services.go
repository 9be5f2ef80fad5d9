package service

import (
	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/store"
)

type Services struct {
	AuthService       AuthService
	SubmissionService SubmissionService
	TipService        TipService
}

func NewServices(storages *store.Storages, logger *logger.Logger) *Services {
	return &Services{
		AuthService:       NewAuthService(storages.UserRepository, logger),
		SubmissionService: NewSubmissionService(storages, logger),
		TipService:        NewTipService(storages, logger),
	}
}

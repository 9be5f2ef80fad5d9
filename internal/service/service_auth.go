package service

import (
	"context"
	"errors"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/store"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// authService is the concrete implementation of AuthService. Credential
// verification runs in constant time and reports a single failure mode so
// responses never reveal whether the username or the password was wrong.
type authService struct {
	users  store.UserRepository
	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given
// UserRepository.
func NewAuthService(users store.UserRepository, logger *logger.Logger) AuthService {
	return &authService{
		users:  users,
		logger: logger,
	}
}

// Login verifies the credentials against the tenant's user table.
//
// Returns the authenticated user or ErrInvalidCredentials. Unknown user,
// wrong password and disabled account are indistinguishable to the
// caller; only the log records which it was.
func (a *authService) Login(ctx context.Context, tenantID int64, username, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if username == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := a.users.FindUserByUsername(ctx, tenantID, username)
	if err != nil {
		if !errors.Is(err, store.ErrNoUserWasFound) {
			log.Err(err).Int64("tenant_id", tenantID).Msg("user lookup failed")
		}
		// burn the same hashing cost as the success path
		utils.HashPassword(password, "login-equalizer")
		return models.User{}, ErrInvalidCredentials
	}

	if !utils.CheckPassword(password, user.Salt, user.AuthHash) {
		log.Warn().Int64("tenant_id", tenantID).Str("username", username).Msg("wrong password")
		return models.User{}, ErrInvalidCredentials
	}

	if user.Status != "enabled" {
		log.Warn().Int64("tenant_id", tenantID).Str("username", username).Msg("login attempt for disabled account")
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

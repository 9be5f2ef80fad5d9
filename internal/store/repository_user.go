package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/models"
)

// userRepository is the SQL-backed implementation of [UserRepository].
// It handles account lookup for authentication and recipient resolution
// against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// FindUserByUsername retrieves the account with the given username inside
// one tenant. Usernames are unique per tenant, never globally.
//
// Error handling:
//   - sql.ErrNoRows → [ErrNoUserWasFound].
//   - Scan failure → wrapped as [ErrScanningRow].
func (r *userRepository) FindUserByUsername(ctx context.Context, tenantID int64, username string) (models.User, error) {
	log := logger.FromContext(ctx)

	var user models.User
	row := r.db.QueryRowContext(ctx, findUserByUsername, tenantID, username)
	if err := row.Scan(&user.ID, &user.TenantID, &user.Username, &user.Name, &user.Role,
		&user.Status, &user.AuthHash, &user.Salt, &user.PGPKeyPublic, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByUsername").Int64("tenant_id", tenantID).Msg("error: scanning error")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// GetUsersByIDs retrieves the accounts matching the given ids inside one
// tenant. Ids with no matching row are silently absent from the result;
// the caller decides whether that matters.
func (r *userRepository) GetUsersByIDs(ctx context.Context, tenantID int64, ids []string) ([]models.User, error) {
	log := logger.FromContext(ctx)

	if len(ids) == 0 {
		return []models.User{}, nil
	}

	query, args, err := buildGetUsersByIDsQuery(tenantID, ids)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.GetUsersByIDs").Msg("failed to create query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.GetUsersByIDs").Int("ids count", len(ids)).Msg("failed to execute query for getting users")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	users := make([]models.User, 0, len(ids))
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.TenantID, &user.Username, &user.Name, &user.Role,
			&user.Status, &user.AuthHash, &user.Salt, &user.PGPKeyPublic, &user.CreatedAt); err != nil {
			log.Err(err).Str("func", "*userRepository.GetUsersByIDs").Msg("failed to scan user row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.GetUsersByIDs").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/tiplinehq/tipline/internal/config"
	"github.com/tiplinehq/tipline/internal/logger"
)

// Storages bundles every repository behind its interface, ready for
// injection into the service layer.
type Storages struct {
	DB                   *DB
	TenantRepository     TenantRepository
	ContextRepository    ContextRepository
	SchemaRepository     SchemaRepository
	UserRepository       UserRepository
	SubmissionRepository SubmissionRepository
}

// NewStorages connects to the configured database backend, runs the
// migrations, and wires all repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var db *DB
	var err error

	switch cfg.DB.Driver {
	case "sqlite3":
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	default:
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error running migrations")
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &Storages{
		DB:                   db,
		TenantRepository:     NewTenantRepository(db, log),
		ContextRepository:    NewContextRepository(db, log),
		SchemaRepository:     NewSchemaRepository(db, log),
		UserRepository:       NewUserRepository(db, log),
		SubmissionRepository: NewSubmissionRepository(db, log),
	}, nil
}

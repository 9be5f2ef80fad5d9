package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/models"
)

// schemaRepository implements [SchemaRepository] against the
// "archived_schemas" table. Rows are content-addressed by hash and
// immutable once written.
type schemaRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewSchemaRepository constructs a [SchemaRepository] backed by the
// provided database connection and logger.
func NewSchemaRepository(db *DB, logger *logger.Logger) SchemaRepository {
	logger.Debug().Msg("creating schema repository")
	return &schemaRepository{
		db:     db,
		logger: logger,
	}
}

// ArchiveSchema stores the snapshot under its hash. A snapshot under an
// existing hash is byte-identical by construction, so the conflict is
// ignored rather than treated as an error.
func (r *schemaRepository) ArchiveSchema(ctx context.Context, snapshot models.ArchivedSchema) error {
	log := logger.FromContext(ctx)

	rawSteps, err := json.Marshal(snapshot.Steps)
	if err != nil {
		return fmt.Errorf("error encoding schema steps: %w", err)
	}
	rawPreview, err := json.Marshal(snapshot.Preview)
	if err != nil {
		return fmt.Errorf("error encoding schema preview: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, archiveSchema, snapshot.Hash, rawSteps, rawPreview); err != nil {
		log.Err(err).Str("func", "*schemaRepository.ArchiveSchema").Str("hash", snapshot.Hash).Msg("failed to archive schema")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *schemaRepository) GetSchema(ctx context.Context, hash string) (models.ArchivedSchema, error) {
	log := logger.FromContext(ctx)

	var snapshot models.ArchivedSchema
	var rawSteps, rawPreview []byte
	row := r.db.QueryRowContext(ctx, getSchema, hash)
	if err := row.Scan(&snapshot.Hash, &rawSteps, &rawPreview); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ArchivedSchema{}, ErrSchemaNotFound
		}
		log.Err(err).Str("func", "*schemaRepository.GetSchema").Str("hash", hash).Msg("failed to scan schema row")
		return models.ArchivedSchema{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err := json.Unmarshal(rawSteps, &snapshot.Steps); err != nil {
		return models.ArchivedSchema{}, fmt.Errorf("error decoding schema steps: %w", err)
	}
	if err := json.Unmarshal(rawPreview, &snapshot.Preview); err != nil {
		return models.ArchivedSchema{}, fmt.Errorf("error decoding schema preview: %w", err)
	}

	return snapshot, nil
}

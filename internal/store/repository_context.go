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

// contextRepository implements [ContextRepository]. Contexts and
// questionnaires are visible to a tenant when owned by it or inherited
// from the root tenant, so every lookup is scoped to both ids.
type contextRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewContextRepository constructs a [ContextRepository] backed by the
// provided database connection and logger.
func NewContextRepository(db *DB, logger *logger.Logger) ContextRepository {
	logger.Debug().Msg("creating context repository")
	return &contextRepository{
		db:     db,
		logger: logger,
	}
}

func (r *contextRepository) GetContext(ctx context.Context, tenantID int64, contextID string) (models.Context, error) {
	log := logger.FromContext(ctx)

	var c models.Context
	row := r.db.QueryRowContext(ctx, getContext, contextID, models.RootTenantID, tenantID)
	if err := row.Scan(&c.ID, &c.TenantID, &c.QuestionnaireID, &c.TipTimeToLive,
		&c.MaximumSelectableReceivers, &c.EnableTwoWayComments, &c.EnableTwoWayMessages,
		&c.EnableAttachments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Context{}, ErrContextNotFound
		}
		log.Err(err).Str("func", "*contextRepository.GetContext").Str("context_id", contextID).Msg("failed to scan context row")
		return models.Context{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	receivers, err := r.contextReceivers(ctx, contextID)
	if err != nil {
		return models.Context{}, err
	}
	c.ReceiverIDs = receivers

	return c, nil
}

func (r *contextRepository) GetQuestionnaire(ctx context.Context, tenantID int64, questionnaireID string) (models.Questionnaire, error) {
	log := logger.FromContext(ctx)

	var q models.Questionnaire
	var rawSteps []byte
	row := r.db.QueryRowContext(ctx, getQuestionnaire, questionnaireID, models.RootTenantID, tenantID)
	if err := row.Scan(&q.ID, &q.TenantID, &q.Name, &rawSteps); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Questionnaire{}, ErrQuestionnaireNotFound
		}
		log.Err(err).Str("func", "*contextRepository.GetQuestionnaire").Str("questionnaire_id", questionnaireID).Msg("failed to scan questionnaire row")
		return models.Questionnaire{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err := json.Unmarshal(rawSteps, &q.Steps); err != nil {
		log.Err(err).Str("func", "*contextRepository.GetQuestionnaire").Str("questionnaire_id", questionnaireID).Msg("failed to decode questionnaire steps")
		return models.Questionnaire{}, fmt.Errorf("error decoding questionnaire steps: %w", err)
	}

	return q, nil
}

func (r *contextRepository) contextReceivers(ctx context.Context, contextID string) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getContextReceivers, contextID)
	if err != nil {
		log.Err(err).Str("func", "*contextRepository.contextReceivers").Str("context_id", contextID).Msg("failed to execute query for context receivers")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	receivers := make([]string, 0, 8)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		receivers = append(receivers, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return receivers, nil
}

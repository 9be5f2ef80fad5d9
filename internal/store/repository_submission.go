package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/qna"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// submissionRepository is the SQL-backed implementation of
// [SubmissionRepository]. CreateSubmission is the write path of the
// finalization pipeline and is fully transactional: either the tip, all
// its answer rows, files and recipient tips land together, or nothing
// does.
type submissionRepository struct {
	db     *DB
	ids    *utils.UUIDGenerator
	logger *logger.Logger
}

// NewSubmissionRepository constructs a [SubmissionRepository] backed by
// the provided database connection and logger.
func NewSubmissionRepository(db *DB, logger *logger.Logger) SubmissionRepository {
	logger.Debug().Msg("creating submission repository")
	return &submissionRepository{
		db:     db,
		ids:    utils.NewUUIDGenerator(),
		logger: logger,
	}
}

// CreateSubmission runs the finalization transaction, retrying once when
// the database reports a transient failure (serialization conflict,
// dropped connection).
func (r *submissionRepository) CreateSubmission(ctx context.Context, record SubmissionRecord) (models.Submission, error) {
	sub, err := r.createSubmission(ctx, record)
	if err != nil && r.db.errorClassificator != nil && r.db.errorClassificator.Classify(err) == Retryable {
		logger.FromContext(ctx).Warn().Str("func", "*submissionRepository.CreateSubmission").Msg("retrying submission transaction after transient failure")
		return r.createSubmission(ctx, record)
	}
	return sub, err
}

func (r *submissionRepository) createSubmission(ctx context.Context, record SubmissionRecord) (models.Submission, error) {
	log := logger.FromContext(ctx)
	sub := record.Submission

	// begin transaction
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.CreateSubmission").Msg("error during opening transaction")
		return models.Submission{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// the counter update takes a row lock, serializing concurrent
	// finalizations under the same tenant
	if err := tx.QueryRowContext(ctx, nextProgressive, sub.TenantID).Scan(&sub.Progressive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Submission{}, ErrTenantNotFound
		}
		log.Err(err).Str("func", "*submissionRepository.CreateSubmission").Int64("tenant_id", sub.TenantID).Msg("failed to advance progressive counter")
		return models.Submission{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	rawPreview, err := json.Marshal(sub.Preview)
	if err != nil {
		return models.Submission{}, fmt.Errorf("error encoding submission preview: %w", err)
	}

	result, err := tx.ExecContext(ctx, createSubmission,
		sub.ID, sub.TenantID, sub.Progressive, sub.ContextID, sub.SchemaHash,
		sub.CreationDate, sub.UpdateDate, sub.ExpirationDate, sub.HTTPS,
		sub.EnableTwoWayComments, sub.EnableTwoWayMessages, sub.EnableAttachments,
		sub.EnableWhistleblowerIdentity, sub.IdentityProvided, sub.IdentityProvidedDate,
		sub.ReceiptHash, sub.TotalScore, rawPreview)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.CreateSubmission").Msg("error executing query for saving submission")
		return models.Submission{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		log.Error().Str("func", "*submissionRepository.CreateSubmission").Msg("provided submission was not saved")
		return models.Submission{}, ErrSubmissionNotSaved
	}

	if err := r.saveAnswers(ctx, tx, record.Answers, record.Groups); err != nil {
		return models.Submission{}, err
	}

	if err := r.saveFiles(ctx, tx, sub.ID, record.Files); err != nil {
		return models.Submission{}, err
	}

	if err := r.fanOut(ctx, tx, sub.ID, record.Recipients); err != nil {
		return models.Submission{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "*submissionRepository.CreateSubmission").Msg("error committing transaction")
		return models.Submission{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return sub, nil
}

func (r *submissionRepository) saveAnswers(ctx context.Context, tx *sql.Tx, answers []qna.AnswerRow, groups []qna.GroupRow) error {
	log := logger.FromContext(ctx)

	stmt, err := tx.PrepareContext(ctx, saveAnswerRow)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.saveAnswers").Msg("error during preparing statement")
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer stmt.Close()

	for _, row := range answers {
		var groupID sql.NullString
		if row.GroupID != "" {
			groupID = sql.NullString{String: row.GroupID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, row.ID, row.TenantID, row.SubmissionID, row.Key, row.IsLeaf, row.Value, groupID); err != nil {
			log.Err(err).Str("func", "*submissionRepository.saveAnswers").Str("answer_id", row.ID).Msg("error executing prepared query for saving answer")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	groupStmt, err := tx.PrepareContext(ctx, saveGroupRow)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.saveAnswers").Msg("error during preparing group statement")
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer groupStmt.Close()

	for _, row := range groups {
		if _, err := groupStmt.ExecContext(ctx, row.ID, row.TenantID, row.AnswerID, row.Number); err != nil {
			log.Err(err).Str("func", "*submissionRepository.saveAnswers").Str("group_id", row.ID).Msg("error executing prepared query for saving answer group")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

func (r *submissionRepository) saveFiles(ctx context.Context, tx *sql.Tx, submissionID string, files []models.UploadedFile) error {
	if len(files) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)

	stmt, err := tx.PrepareContext(ctx, saveFile)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.saveFiles").Msg("error during preparing statement")
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer stmt.Close()

	for _, file := range files {
		if _, err := stmt.ExecContext(ctx, file.ID, file.TenantID, submissionID, file.Name,
			file.ContentType, file.Size, file.Filename, file.Description, true, file.Date); err != nil {
			log.Err(err).Str("func", "*submissionRepository.saveFiles").Str("file_id", file.ID).Msg("error executing prepared query for saving file")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

func (r *submissionRepository) fanOut(ctx context.Context, tx *sql.Tx, submissionID string, recipients []string) error {
	log := logger.FromContext(ctx)

	stmt, err := tx.PrepareContext(ctx, createReceiverTip)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.fanOut").Msg("error during preparing statement")
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, receiverID := range recipients {
		if _, err := stmt.ExecContext(ctx, r.ids.Generate(), submissionID, receiverID, now); err != nil {
			log.Err(err).Str("func", "*submissionRepository.fanOut").Str("receiver_id", receiverID).Msg("error executing prepared query for creating receiver tip")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

func (r *submissionRepository) GetSubmission(ctx context.Context, tenantID int64, id string) (models.Submission, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, getSubmission, tenantID, id)

	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		log.Err(err).Str("func", "*submissionRepository.GetSubmission").Str("submission_id", id).Msg("failed to scan submission row")
		return models.Submission{}, err
	}

	return sub, nil
}

func (r *submissionRepository) GetSubmissionAnswers(ctx context.Context, tenantID int64, id string) ([]qna.AnswerRow, []qna.GroupRow, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getAnswerRows, tenantID, id)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.GetSubmissionAnswers").Str("submission_id", id).Msg("failed to execute query for answer rows")
		return nil, nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	answers := make([]qna.AnswerRow, 0, 50)
	for rows.Next() {
		var row qna.AnswerRow
		var groupID sql.NullString
		if err := rows.Scan(&row.ID, &row.TenantID, &row.SubmissionID, &row.Key, &row.IsLeaf, &row.Value, &groupID); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		row.GroupID = groupID.String
		answers = append(answers, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	groupRows, err := r.db.QueryContext(ctx, getGroupRows, tenantID, id)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.GetSubmissionAnswers").Str("submission_id", id).Msg("failed to execute query for group rows")
		return nil, nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer groupRows.Close()

	groups := make([]qna.GroupRow, 0, 10)
	for groupRows.Next() {
		var row qna.GroupRow
		if err := groupRows.Scan(&row.ID, &row.TenantID, &row.AnswerID, &row.Number); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		groups = append(groups, row)
	}
	if err := groupRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return answers, groups, nil
}

func (r *submissionRepository) GetSubmissionFiles(ctx context.Context, tenantID int64, id string) ([]models.UploadedFile, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getSubmissionFiles, tenantID, id)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.GetSubmissionFiles").Str("submission_id", id).Msg("failed to execute query for submission files")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	files := make([]models.UploadedFile, 0, 4)
	for rows.Next() {
		var file models.UploadedFile
		if err := rows.Scan(&file.ID, &file.TenantID, &file.SubmissionID, &file.Name, &file.ContentType,
			&file.Size, &file.Filename, &file.Description, &file.Submission, &file.Date); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return files, nil
}

func (r *submissionRepository) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListSubmissionsQuery(filter)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.ListSubmissions").Msg("failed to create query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.ListSubmissions").Msg("failed to execute query for listing submissions")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	submissions := make([]models.Submission, 0, 50)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			log.Err(err).Str("func", "*submissionRepository.ListSubmissions").Msg("failed to scan submission row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		submissions = append(submissions, sub)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*submissionRepository.ListSubmissions").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return submissions, nil
}

func (r *submissionRepository) GetReceiverTip(ctx context.Context, receiverID, tipID string) (models.ReceiverTip, error) {
	log := logger.FromContext(ctx)

	var tip models.ReceiverTip
	row := r.db.QueryRowContext(ctx, getReceiverTip, receiverID, tipID)
	if err := row.Scan(&tip.ID, &tip.SubmissionID, &tip.ReceiverID, &tip.AccessCounter, &tip.LastAccess); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReceiverTip{}, ErrReceiverTipNotFound
		}
		log.Err(err).Str("func", "*submissionRepository.GetReceiverTip").Str("tip_id", tipID).Msg("failed to scan receiver tip row")
		return models.ReceiverTip{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return tip, nil
}

func (r *submissionRepository) RegisterTipAccess(ctx context.Context, tipID string, at time.Time) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, registerTipAccess, at, tipID); err != nil {
		log.Err(err).Str("func", "*submissionRepository.RegisterTipAccess").Str("tip_id", tipID).Msg("failed to register tip access")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteExpired purges submissions past their expiration date. Child rows
// go with them via ON DELETE CASCADE.
func (r *submissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteExpiredSubmissions, now)
	if err != nil {
		log.Err(err).Str("func", "*submissionRepository.DeleteExpired").Msg("failed to delete expired submissions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (models.Submission, error) {
	var sub models.Submission
	var rawPreview []byte

	if err := row.Scan(&sub.ID, &sub.TenantID, &sub.Progressive, &sub.ContextID, &sub.SchemaHash,
		&sub.CreationDate, &sub.UpdateDate, &sub.ExpirationDate, &sub.HTTPS,
		&sub.EnableTwoWayComments, &sub.EnableTwoWayMessages, &sub.EnableAttachments,
		&sub.EnableWhistleblowerIdentity, &sub.IdentityProvided, &sub.IdentityProvidedDate,
		&sub.ReceiptHash, &sub.TotalScore, &rawPreview); err != nil {
		return models.Submission{}, err
	}

	if len(rawPreview) > 0 {
		if err := json.Unmarshal(rawPreview, &sub.Preview); err != nil {
			return models.Submission{}, fmt.Errorf("error decoding submission preview: %w", err)
		}
	}

	return sub, nil
}

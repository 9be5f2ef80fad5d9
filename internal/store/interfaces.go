package store

import (
	"context"
	"time"

	"github.com/tiplinehq/tipline/internal/qna"
	"github.com/tiplinehq/tipline/models"
)

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

type TenantRepository interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	GetTenant(ctx context.Context, id int64) (models.Tenant, error)
	NextProgressive(ctx context.Context, tenantID int64) (int64, error)
}

type ContextRepository interface {
	// GetContext resolves a context visible to the given tenant: either
	// owned by it or inherited from the root tenant.
	GetContext(ctx context.Context, tenantID int64, contextID string) (models.Context, error)
	GetQuestionnaire(ctx context.Context, tenantID int64, questionnaireID string) (models.Questionnaire, error)
}

type SchemaRepository interface {
	// ArchiveSchema stores a schema snapshot under its content hash.
	// Archiving the same snapshot twice is a no-op.
	ArchiveSchema(ctx context.Context, snapshot models.ArchivedSchema) error
	GetSchema(ctx context.Context, hash string) (models.ArchivedSchema, error)
}

type UserRepository interface {
	FindUserByUsername(ctx context.Context, tenantID int64, username string) (models.User, error)
	GetUsersByIDs(ctx context.Context, tenantID int64, ids []string) ([]models.User, error)
}

// SubmissionRecord bundles everything the submission pipeline persists in
// a single transaction.
type SubmissionRecord struct {
	Submission models.Submission
	Answers    []qna.AnswerRow
	Groups     []qna.GroupRow
	Files      []models.UploadedFile
	Recipients []string
}

// SubmissionFilter narrows ListSubmissions. Zero-valued fields are not
// applied.
type SubmissionFilter struct {
	TenantID      int64
	ContextID     string
	ExpiredBefore time.Time
	Limit         uint64
}

type SubmissionRepository interface {
	// CreateSubmission persists the record atomically, assigning the
	// tenant-scoped progressive number inside the same transaction.
	CreateSubmission(ctx context.Context, record SubmissionRecord) (models.Submission, error)

	GetSubmission(ctx context.Context, tenantID int64, id string) (models.Submission, error)
	GetSubmissionAnswers(ctx context.Context, tenantID int64, id string) ([]qna.AnswerRow, []qna.GroupRow, error)
	GetSubmissionFiles(ctx context.Context, tenantID int64, id string) ([]models.UploadedFile, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)

	GetReceiverTip(ctx context.Context, receiverID, tipID string) (models.ReceiverTip, error)
	RegisterTipAccess(ctx context.Context, tipID string, at time.Time) error

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

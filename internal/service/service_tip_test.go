package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/qna"
	"github.com/tiplinehq/tipline/internal/redact"
	"github.com/tiplinehq/tipline/internal/store"
	"github.com/tiplinehq/tipline/models"
)

func newTestTipService(schemas *mockSchemaRepo, submissions *mockSubmissionRepo) *tipService {
	return &tipService{
		schemas:     schemas,
		submissions: submissions,
		now:         func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		logger:      logger.Nop(),
	}
}

func tipFixtures() (*mockSchemaRepo, *mockSubmissionRepo) {
	schemas := &mockSchemaRepo{
		getFn: func(_ context.Context, hash string) (models.ArchivedSchema, error) {
			return models.ArchivedSchema{Hash: hash, Steps: testSteps()}, nil
		},
	}
	submissions := &mockSubmissionRepo{
		getReceiverTipFn: func(_ context.Context, receiverID, tipID string) (models.ReceiverTip, error) {
			return models.ReceiverTip{ID: tipID, ReceiverID: receiverID, SubmissionID: "sub-1"}, nil
		},
		getSubmissionFn: func(_ context.Context, _ int64, id string) (models.Submission, error) {
			return models.Submission{ID: id, TenantID: 1, SchemaHash: "h-1"}, nil
		},
		getAnswersFn: func(_ context.Context, _ int64, _ string) ([]qna.AnswerRow, []qna.GroupRow, error) {
			rows := []qna.AnswerRow{
				{ID: "a-1", TenantID: 1, SubmissionID: "sub-1", Key: "f-summary", IsLeaf: true, Value: "something happened"},
				{ID: "a-2", TenantID: 1, SubmissionID: "sub-1", Key: "f-secret", IsLeaf: true, Value: "my name"},
			}
			return rows, nil, nil
		},
		getFilesFn: func(_ context.Context, _ int64, id string) ([]models.UploadedFile, error) {
			return []models.UploadedFile{{ID: "file-1", SubmissionID: id, Name: "evidence.pdf"}}, nil
		},
	}
	return schemas, submissions
}

// ─────────────────────────────────────────────
// GetReceiverTip
// ─────────────────────────────────────────────

func TestGetReceiverTip_MasksSensitiveAnswers(t *testing.T) {
	schemas, submissions := tipFixtures()

	var accessedTip string
	submissions.registerAccessFn = func(_ context.Context, tipID string, at time.Time) error {
		accessedTip = tipID
		assert.Equal(t, 2026, at.Year())
		return nil
	}

	svc := newTestTipService(schemas, submissions)

	view, err := svc.GetReceiverTip(context.Background(), 1, "r-1", "tip-1", "en", false)
	require.NoError(t, err)

	assert.Equal(t, "sub-1", view.Submission.ID)
	require.Len(t, view.Files, 1)
	require.Len(t, view.Steps, 1)

	// the viewer lacks the sensitive-data grant: the flagged field is masked
	require.Contains(t, view.Answers, "f-secret")
	assert.Equal(t, redact.Mask, view.Answers["f-secret"].Value)
	assert.Equal(t, "something happened", view.Answers["f-summary"].Value)
	assert.Empty(t, view.SensitiveData)

	assert.Equal(t, "tip-1", accessedTip)
}

func TestGetReceiverTip_SensitiveGrantSeesEverything(t *testing.T) {
	schemas, submissions := tipFixtures()
	svc := newTestTipService(schemas, submissions)

	view, err := svc.GetReceiverTip(context.Background(), 1, "r-1", "tip-1", "en", true)
	require.NoError(t, err)
	assert.Equal(t, "my name", view.Answers["f-secret"].Value)
	assert.Equal(t, []string{"Your name: my name"}, view.SensitiveData)
}

func TestGetReceiverTip_NotFound(t *testing.T) {
	svc := newTestTipService(&mockSchemaRepo{}, &mockSubmissionRepo{})

	_, err := svc.GetReceiverTip(context.Background(), 1, "r-1", "tip-unknown", "en", false)
	assert.ErrorIs(t, err, ErrTipNotFound)
}

func TestGetReceiverTip_SubmissionGone(t *testing.T) {
	schemas, submissions := tipFixtures()
	submissions.getSubmissionFn = func(_ context.Context, _ int64, _ string) (models.Submission, error) {
		return models.Submission{}, store.ErrSubmissionNotFound
	}
	svc := newTestTipService(schemas, submissions)

	_, err := svc.GetReceiverTip(context.Background(), 1, "r-1", "tip-1", "en", false)
	assert.ErrorIs(t, err, ErrTipNotFound)
}

func TestGetReceiverTip_AccessAccountingFailureDoesNotBlock(t *testing.T) {
	schemas, submissions := tipFixtures()
	submissions.registerAccessFn = func(_ context.Context, _ string, _ time.Time) error {
		return errors.New("write timeout")
	}
	svc := newTestTipService(schemas, submissions)

	_, err := svc.GetReceiverTip(context.Background(), 1, "r-1", "tip-1", "en", false)
	assert.NoError(t, err)
}

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
	"github.com/tiplinehq/tipline/internal/store"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// ─────────────────────────────────────────────
// Mocks: store repositories
// ─────────────────────────────────────────────

type mockContextRepo struct {
	getContextFn       func(ctx context.Context, tenantID int64, contextID string) (models.Context, error)
	getQuestionnaireFn func(ctx context.Context, tenantID int64, questionnaireID string) (models.Questionnaire, error)
}

func (m *mockContextRepo) GetContext(ctx context.Context, tenantID int64, contextID string) (models.Context, error) {
	if m.getContextFn != nil {
		return m.getContextFn(ctx, tenantID, contextID)
	}
	return models.Context{}, store.ErrContextNotFound
}

func (m *mockContextRepo) GetQuestionnaire(ctx context.Context, tenantID int64, questionnaireID string) (models.Questionnaire, error) {
	if m.getQuestionnaireFn != nil {
		return m.getQuestionnaireFn(ctx, tenantID, questionnaireID)
	}
	return models.Questionnaire{}, store.ErrQuestionnaireNotFound
}

type mockSchemaRepo struct {
	archiveFn func(ctx context.Context, snapshot models.ArchivedSchema) error
	getFn     func(ctx context.Context, hash string) (models.ArchivedSchema, error)

	archived []models.ArchivedSchema
}

func (m *mockSchemaRepo) ArchiveSchema(ctx context.Context, snapshot models.ArchivedSchema) error {
	m.archived = append(m.archived, snapshot)
	if m.archiveFn != nil {
		return m.archiveFn(ctx, snapshot)
	}
	return nil
}

func (m *mockSchemaRepo) GetSchema(ctx context.Context, hash string) (models.ArchivedSchema, error) {
	if m.getFn != nil {
		return m.getFn(ctx, hash)
	}
	return models.ArchivedSchema{}, store.ErrSchemaNotFound
}

type mockUserRepo struct {
	findByUsernameFn func(ctx context.Context, tenantID int64, username string) (models.User, error)
	getByIDsFn       func(ctx context.Context, tenantID int64, ids []string) ([]models.User, error)
}

func (m *mockUserRepo) FindUserByUsername(ctx context.Context, tenantID int64, username string) (models.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, tenantID, username)
	}
	return models.User{}, store.ErrNoUserWasFound
}

func (m *mockUserRepo) GetUsersByIDs(ctx context.Context, tenantID int64, ids []string) ([]models.User, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, tenantID, ids)
	}
	return nil, nil
}

type mockSubmissionRepo struct {
	createFn          func(ctx context.Context, record store.SubmissionRecord) (models.Submission, error)
	getSubmissionFn   func(ctx context.Context, tenantID int64, id string) (models.Submission, error)
	getAnswersFn      func(ctx context.Context, tenantID int64, id string) ([]qna.AnswerRow, []qna.GroupRow, error)
	getFilesFn        func(ctx context.Context, tenantID int64, id string) ([]models.UploadedFile, error)
	getReceiverTipFn  func(ctx context.Context, receiverID, tipID string) (models.ReceiverTip, error)
	registerAccessFn  func(ctx context.Context, tipID string, at time.Time) error
	listSubmissionsFn func(ctx context.Context, filter store.SubmissionFilter) ([]models.Submission, error)
	deleteExpiredFn   func(ctx context.Context, now time.Time) (int64, error)

	created []store.SubmissionRecord
}

func (m *mockSubmissionRepo) CreateSubmission(ctx context.Context, record store.SubmissionRecord) (models.Submission, error) {
	m.created = append(m.created, record)
	if m.createFn != nil {
		return m.createFn(ctx, record)
	}
	sub := record.Submission
	sub.Progressive = 1
	return sub, nil
}

func (m *mockSubmissionRepo) GetSubmission(ctx context.Context, tenantID int64, id string) (models.Submission, error) {
	if m.getSubmissionFn != nil {
		return m.getSubmissionFn(ctx, tenantID, id)
	}
	return models.Submission{}, store.ErrSubmissionNotFound
}

func (m *mockSubmissionRepo) GetSubmissionAnswers(ctx context.Context, tenantID int64, id string) ([]qna.AnswerRow, []qna.GroupRow, error) {
	if m.getAnswersFn != nil {
		return m.getAnswersFn(ctx, tenantID, id)
	}
	return nil, nil, nil
}

func (m *mockSubmissionRepo) GetSubmissionFiles(ctx context.Context, tenantID int64, id string) ([]models.UploadedFile, error) {
	if m.getFilesFn != nil {
		return m.getFilesFn(ctx, tenantID, id)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) ListSubmissions(ctx context.Context, filter store.SubmissionFilter) ([]models.Submission, error) {
	if m.listSubmissionsFn != nil {
		return m.listSubmissionsFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) GetReceiverTip(ctx context.Context, receiverID, tipID string) (models.ReceiverTip, error) {
	if m.getReceiverTipFn != nil {
		return m.getReceiverTipFn(ctx, receiverID, tipID)
	}
	return models.ReceiverTip{}, store.ErrReceiverTipNotFound
}

func (m *mockSubmissionRepo) RegisterTipAccess(ctx context.Context, tipID string, at time.Time) error {
	if m.registerAccessFn != nil {
		return m.registerAccessFn(ctx, tipID, at)
	}
	return nil
}

func (m *mockSubmissionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

// ─────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────

func testSteps() []models.Step {
	return []models.Step{{
		ID: "step-1",
		Children: []models.Field{
			{ID: "f-summary", Type: "textarea", Preview: true},
			{ID: "f-secret", Type: "inputbox", Label: models.LocalizedMap{"en": "Your name"}, SensitiveData: true},
		},
	}}
}

func testContext() models.Context {
	return models.Context{
		ID:              "ctx-1",
		TenantID:        1,
		QuestionnaireID: "q-1",
		TipTimeToLive:   30,
		ReceiverIDs:     []string{"r-1", "r-2", "r-3"},
	}
}

func testTenant() models.Tenant {
	return models.Tenant{ID: 1, ReceiptSalt: "pepper", AllowUnencrypted: true}
}

func enabledReceivers(ids ...string) []models.User {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, models.User{ID: id, Role: models.RoleReceiver, Status: "enabled"})
	}
	return users
}

func newTestSubmissionService(contexts *mockContextRepo, schemas *mockSchemaRepo, users *mockUserRepo, submissions *mockSubmissionRepo) *submissionService {
	return &submissionService{
		contexts:    contexts,
		schemas:     schemas,
		users:       users,
		submissions: submissions,
		codec:       qna.New(),
		ids:         utils.NewUUIDGenerator(),
		now:         time.Now,
		logger:      logger.Nop(),
	}
}

func testRequest() models.SubmissionRequest {
	return models.SubmissionRequest{
		ContextID: "ctx-1",
		Receivers: []string{"r-1"},
		Answers: models.Answers{
			"f-summary": models.Leaf("something happened"),
			"f-secret":  models.Leaf("my name"),
		},
	}
}

// ─────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	contexts := &mockContextRepo{
		getContextFn: func(_ context.Context, _ int64, _ string) (models.Context, error) {
			return testContext(), nil
		},
		getQuestionnaireFn: func(_ context.Context, _ int64, _ string) (models.Questionnaire, error) {
			return models.Questionnaire{ID: "q-1", Steps: testSteps()}, nil
		},
	}
	schemas := &mockSchemaRepo{}
	users := &mockUserRepo{
		getByIDsFn: func(_ context.Context, _ int64, ids []string) ([]models.User, error) {
			return enabledReceivers(ids...), nil
		},
	}
	submissions := &mockSubmissionRepo{}

	svc := newTestSubmissionService(contexts, schemas, users, submissions)

	receipt, err := svc.Create(context.Background(), testTenant(), testRequest(), nil, false)
	require.NoError(t, err)
	assert.Len(t, receipt.Receipt, utils.ReceiptLength)

	require.Len(t, submissions.created, 1)
	record := submissions.created[0]

	assert.NotEmpty(t, record.Submission.ID)
	assert.Equal(t, int64(1), record.Submission.TenantID)
	assert.Equal(t, "ctx-1", record.Submission.ContextID)
	assert.Equal(t, []string{"r-1"}, record.Recipients)

	// schema archived exactly once, hash carried on the submission
	require.Len(t, schemas.archived, 1)
	assert.Equal(t, schemas.archived[0].Hash, record.Submission.SchemaHash)

	// the receipt is stored only as a salted hash
	assert.NotContains(t, record.Submission.ReceiptHash, receipt.Receipt)
	assert.Equal(t, utils.HashReceipt(receipt.Receipt, "pepper"), record.Submission.ReceiptHash)

	// answers flattened for persistence
	assert.Len(t, record.Answers, 2)

	// preview holds only the previewable field, sensitive values masked
	require.Contains(t, record.Submission.Preview, "f-summary")
	assert.NotContains(t, record.Submission.Preview, "f-secret")
	assert.Equal(t, "something happened", record.Submission.Preview["f-summary"].Value)
}

func TestCreate_ContextNotFound(t *testing.T) {
	schemas := &mockSchemaRepo{}
	submissions := &mockSubmissionRepo{}
	svc := newTestSubmissionService(&mockContextRepo{}, schemas, &mockUserRepo{}, submissions)

	_, err := svc.Create(context.Background(), testTenant(), testRequest(), nil, false)
	assert.ErrorIs(t, err, ErrContextNotFound)
	assert.Empty(t, submissions.created)
	assert.Empty(t, schemas.archived)
}

func TestCreate_TooManyReceivers(t *testing.T) {
	contexts := &mockContextRepo{
		getContextFn: func(_ context.Context, _ int64, _ string) (models.Context, error) {
			c := testContext()
			c.MaximumSelectableReceivers = 1
			return c, nil
		},
	}
	schemas := &mockSchemaRepo{}
	submissions := &mockSubmissionRepo{}
	svc := newTestSubmissionService(contexts, schemas, &mockUserRepo{}, submissions)

	request := testRequest()
	request.Receivers = []string{"r-1", "r-2"}

	_, err := svc.Create(context.Background(), testTenant(), request, nil, false)
	assert.ErrorIs(t, err, ErrTooManyReceivers)

	// rejected before anything was staged
	assert.Empty(t, submissions.created)
	assert.Empty(t, schemas.archived)
}

func TestCreate_NoEligibleRecipients(t *testing.T) {
	contexts := &mockContextRepo{
		getContextFn: func(_ context.Context, _ int64, _ string) (models.Context, error) {
			return testContext(), nil
		},
		getQuestionnaireFn: func(_ context.Context, _ int64, _ string) (models.Questionnaire, error) {
			return models.Questionnaire{ID: "q-1", Steps: testSteps()}, nil
		},
	}
	submissions := &mockSubmissionRepo{}
	svc := newTestSubmissionService(contexts, &mockSchemaRepo{}, &mockUserRepo{}, submissions)

	request := testRequest()
	request.Receivers = []string{"not-in-context"}

	_, err := svc.Create(context.Background(), testTenant(), request, nil, false)
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Empty(t, submissions.created)
}

func TestCreate_SkipsRecipientsWithoutKeys(t *testing.T) {
	contexts := &mockContextRepo{
		getContextFn: func(_ context.Context, _ int64, _ string) (models.Context, error) {
			return testContext(), nil
		},
		getQuestionnaireFn: func(_ context.Context, _ int64, _ string) (models.Questionnaire, error) {
			return models.Questionnaire{ID: "q-1", Steps: testSteps()}, nil
		},
	}
	users := &mockUserRepo{
		getByIDsFn: func(_ context.Context, _ int64, _ []string) ([]models.User, error) {
			return []models.User{
				{ID: "r-1", Status: "enabled", PGPKeyPublic: ""},
				{ID: "r-2", Status: "enabled", PGPKeyPublic: "-----BEGIN PGP PUBLIC KEY BLOCK-----"},
			}, nil
		},
	}
	submissions := &mockSubmissionRepo{}
	svc := newTestSubmissionService(contexts, &mockSchemaRepo{}, users, submissions)

	tenant := testTenant()
	tenant.AllowUnencrypted = false

	request := testRequest()
	request.Receivers = []string{"r-1", "r-2"}

	_, err := svc.Create(context.Background(), tenant, request, nil, false)
	require.NoError(t, err)

	require.Len(t, submissions.created, 1)
	assert.Equal(t, []string{"r-2"}, submissions.created[0].Recipients)
}

func TestCreate_NeverExpires(t *testing.T) {
	contexts := &mockContextRepo{
		getContextFn: func(_ context.Context, _ int64, _ string) (models.Context, error) {
			c := testContext()
			c.TipTimeToLive = -1
			return c, nil
		},
		getQuestionnaireFn: func(_ context.Context, _ int64, _ string) (models.Questionnaire, error) {
			return models.Questionnaire{ID: "q-1", Steps: testSteps()}, nil
		},
	}
	users := &mockUserRepo{
		getByIDsFn: func(_ context.Context, _ int64, ids []string) ([]models.User, error) {
			return enabledReceivers(ids...), nil
		},
	}
	submissions := &mockSubmissionRepo{}
	svc := newTestSubmissionService(contexts, &mockSchemaRepo{}, users, submissions)

	_, err := svc.Create(context.Background(), testTenant(), testRequest(), nil, false)
	require.NoError(t, err)

	require.Len(t, submissions.created, 1)
	assert.Equal(t, models.NeverExpires, submissions.created[0].Submission.ExpirationDate)
}

func TestCreate_IdentityField(t *testing.T) {
	steps := testSteps()
	steps[0].Children = append(steps[0].Children, models.Field{
		ID:         "f-identity",
		TemplateID: models.TemplateWhistleblowerIdentity,
	})

	contexts := &mockContextRepo{
		getContextFn: func(_ context.Context, _ int64, _ string) (models.Context, error) {
			return testContext(), nil
		},
		getQuestionnaireFn: func(_ context.Context, _ int64, _ string) (models.Questionnaire, error) {
			return models.Questionnaire{ID: "q-1", Steps: steps}, nil
		},
	}
	users := &mockUserRepo{
		getByIDsFn: func(_ context.Context, _ int64, ids []string) ([]models.User, error) {
			return enabledReceivers(ids...), nil
		},
	}
	submissions := &mockSubmissionRepo{}
	svc := newTestSubmissionService(contexts, &mockSchemaRepo{}, users, submissions)

	request := testRequest()
	request.IdentityProvided = true

	_, err := svc.Create(context.Background(), testTenant(), request, nil, false)
	require.NoError(t, err)

	require.Len(t, submissions.created, 1)
	saved := submissions.created[0].Submission
	assert.True(t, saved.EnableWhistleblowerIdentity)
	assert.True(t, saved.IdentityProvided)
	assert.False(t, saved.IdentityProvidedDate.IsZero())
}

func TestCreate_TransactionFailure(t *testing.T) {
	contexts := &mockContextRepo{
		getContextFn: func(_ context.Context, _ int64, _ string) (models.Context, error) {
			return testContext(), nil
		},
		getQuestionnaireFn: func(_ context.Context, _ int64, _ string) (models.Questionnaire, error) {
			return models.Questionnaire{ID: "q-1", Steps: testSteps()}, nil
		},
	}
	users := &mockUserRepo{
		getByIDsFn: func(_ context.Context, _ int64, ids []string) ([]models.User, error) {
			return enabledReceivers(ids...), nil
		},
	}
	submissions := &mockSubmissionRepo{
		createFn: func(_ context.Context, _ store.SubmissionRecord) (models.Submission, error) {
			return models.Submission{}, errors.New("deadlock detected")
		},
	}
	svc := newTestSubmissionService(contexts, &mockSchemaRepo{}, users, submissions)

	_, err := svc.Create(context.Background(), testTenant(), testRequest(), nil, false)
	assert.ErrorContains(t, err, "submission transaction failed")
}

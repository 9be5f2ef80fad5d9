package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tiplinehq/tipline/internal/archive"
	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/qna"
	"github.com/tiplinehq/tipline/internal/redact"
	"github.com/tiplinehq/tipline/internal/store"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// submissionService is the concrete implementation of SubmissionService.
// It orchestrates the finalization pipeline: context resolution, schema
// snapshotting, answer flattening, recipient eligibility filtering and
// receipt generation, delegating the atomic write to the submission
// repository.
type submissionService struct {
	contexts    store.ContextRepository
	schemas     store.SchemaRepository
	users       store.UserRepository
	submissions store.SubmissionRepository

	codec *qna.Codec
	ids   *utils.UUIDGenerator
	now   func() time.Time

	logger *logger.Logger
}

// NewSubmissionService constructs a SubmissionService wired to the given
// repositories.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewSubmissionService(storages *store.Storages, logger *logger.Logger) SubmissionService {
	return &submissionService{
		contexts:    storages.ContextRepository,
		schemas:     storages.SchemaRepository,
		users:       storages.UserRepository,
		submissions: storages.SubmissionRepository,
		codec:       qna.New(),
		ids:         utils.NewUUIDGenerator(),
		now:         time.Now,
		logger:      logger,
	}
}

// Create runs the finalization pipeline.
//
// The recipient ceiling is enforced against the selected list BEFORE
// eligibility filtering: a submitter who selects more recipients than the
// context allows is rejected even if filtering would have trimmed the
// list below the ceiling.
func (s *submissionService) Create(ctx context.Context, tenant models.Tenant, request models.SubmissionRequest, files []models.UploadedFile, https bool) (models.Receipt, error) {
	log := logger.FromContext(ctx)

	if request.ContextID == "" || len(request.Answers) == 0 {
		log.Error().Msg("invalid submission data provided")
		return models.Receipt{}, ErrInvalidDataProvided
	}

	submissionContext, err := s.contexts.GetContext(ctx, tenant.ID, request.ContextID)
	if err != nil {
		if errors.Is(err, store.ErrContextNotFound) {
			return models.Receipt{}, ErrContextNotFound
		}
		log.Err(err).Str("context_id", request.ContextID).Msg("context lookup failed")
		return models.Receipt{}, fmt.Errorf("context lookup failed: %w", err)
	}

	if max := submissionContext.MaximumSelectableReceivers; max > 0 && len(request.Receivers) > max {
		log.Error().Int("selected", len(request.Receivers)).Int("maximum", max).Msg("too many receivers selected")
		return models.Receipt{}, ErrTooManyReceivers
	}

	questionnaire, err := s.contexts.GetQuestionnaire(ctx, tenant.ID, submissionContext.QuestionnaireID)
	if err != nil {
		log.Err(err).Str("questionnaire_id", submissionContext.QuestionnaireID).Msg("questionnaire lookup failed")
		return models.Receipt{}, fmt.Errorf("questionnaire lookup failed: %w", err)
	}

	// freeze the questionnaire the answers were given against
	snapshot, err := archive.Snapshot(questionnaire.Steps)
	if err != nil {
		log.Err(err).Msg("schema snapshot failed")
		return models.Receipt{}, fmt.Errorf("schema snapshot failed: %w", err)
	}
	if err := s.schemas.ArchiveSchema(ctx, snapshot); err != nil {
		return models.Receipt{}, fmt.Errorf("schema archiving failed: %w", err)
	}

	now := s.now().UTC()
	submission := models.Submission{
		ID:                   s.ids.Generate(),
		TenantID:             tenant.ID,
		ContextID:            submissionContext.ID,
		SchemaHash:           snapshot.Hash,
		CreationDate:         now,
		UpdateDate:           now,
		ExpirationDate:       expiration(now, submissionContext.TipTimeToLive),
		HTTPS:                https,
		EnableTwoWayComments: submissionContext.EnableTwoWayComments,
		EnableTwoWayMessages: submissionContext.EnableTwoWayMessages,
		EnableAttachments:    submissionContext.EnableAttachments,
		TotalScore:           request.TotalScore,
	}

	index := archive.NewFieldIndex(snapshot.Steps)
	if index.WhistleblowerIdentityField() != nil {
		submission.EnableWhistleblowerIdentity = true
		if request.IdentityProvided {
			submission.IdentityProvided = true
			submission.IdentityProvidedDate = now
		}
	}

	// previewable subset, masked before it is stored
	preview := qna.ExtractPreview(snapshot.Steps, request.Answers)
	redact.Obfuscate(preview, index)
	submission.Preview = preview

	// receipt: plaintext returned once, only the hash is stored
	receipt := utils.RandomReceipt()
	submission.ReceiptHash = utils.HashReceipt(receipt, tenant.ReceiptSalt)

	recipients, err := s.eligibleRecipients(ctx, tenant, submissionContext, request.Receivers)
	if err != nil {
		return models.Receipt{}, err
	}
	if len(recipients) == 0 {
		// a submission nobody can read must never be stored
		log.Error().Str("context_id", submissionContext.ID).Msg("no eligible recipients for submission")
		return models.Receipt{}, ErrNoRecipients
	}

	answerRows, groupRows := s.codec.Flatten(tenant.ID, submission.ID, request.Answers)

	for i := range files {
		files[i].SubmissionID = submission.ID
	}

	// single transaction: tip, answers, files and recipient tips
	if _, err := s.submissions.CreateSubmission(ctx, store.SubmissionRecord{
		Submission: submission,
		Answers:    answerRows,
		Groups:     groupRows,
		Files:      files,
		Recipients: recipients,
	}); err != nil {
		log.Err(err).Msg("submission transaction failed")
		return models.Receipt{}, fmt.Errorf("submission transaction failed: %w", err)
	}

	return models.Receipt{Receipt: receipt}, nil
}

// eligibleRecipients intersects the selected recipients with the
// context's recipient list, then drops disabled accounts and, when the
// tenant requires encrypted delivery, accounts without a public key.
// Skipped recipients are silent; selection order is preserved.
func (s *submissionService) eligibleRecipients(ctx context.Context, tenant models.Tenant, submissionContext models.Context, selected []string) ([]string, error) {
	log := logger.FromContext(ctx)

	allowed := make(map[string]bool, len(submissionContext.ReceiverIDs))
	for _, id := range submissionContext.ReceiverIDs {
		allowed[id] = true
	}

	candidates := make([]string, 0, len(selected))
	for _, id := range selected {
		if allowed[id] {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	users, err := s.users.GetUsersByIDs(ctx, tenant.ID, candidates)
	if err != nil {
		log.Err(err).Msg("recipient lookup failed")
		return nil, fmt.Errorf("recipient lookup failed: %w", err)
	}

	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	recipients := make([]string, 0, len(candidates))
	for _, id := range candidates {
		user, found := byID[id]
		if !found || user.Status != "enabled" {
			continue
		}
		if user.PGPKeyPublic == "" && !tenant.AllowUnencrypted {
			log.Debug().Str("receiver_id", id).Msg("skipping recipient without encryption key")
			continue
		}
		recipients = append(recipients, id)
	}

	return recipients, nil
}

func expiration(now time.Time, tipTimeToLive int) time.Time {
	if tipTimeToLive < 0 {
		return models.NeverExpires
	}
	return now.AddDate(0, 0, tipTimeToLive)
}

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
)

// tipService is the concrete implementation of TipService: the read path
// of a finalized submission, serialized per viewer.
type tipService struct {
	schemas     store.SchemaRepository
	submissions store.SubmissionRepository

	now    func() time.Time
	logger *logger.Logger
}

// NewTipService constructs a TipService wired to the given repositories.
func NewTipService(storages *store.Storages, logger *logger.Logger) TipService {
	return &tipService{
		schemas:     storages.SchemaRepository,
		submissions: storages.SubmissionRepository,
		now:         time.Now,
		logger:      logger,
	}
}

// GetReceiverTip serializes a submission for one recipient. The schema is
// always the archived snapshot the answers were given against, never the
// live questionnaire. Sensitive values are masked unless the viewer is
// authorized to see them.
func (s *tipService) GetReceiverTip(ctx context.Context, tenantID int64, receiverID, tipID, language string, canViewSensitive bool) (TipView, error) {
	log := logger.FromContext(ctx)

	tip, err := s.submissions.GetReceiverTip(ctx, receiverID, tipID)
	if err != nil {
		if errors.Is(err, store.ErrReceiverTipNotFound) {
			return TipView{}, ErrTipNotFound
		}
		log.Err(err).Str("tip_id", tipID).Msg("receiver tip lookup failed")
		return TipView{}, fmt.Errorf("receiver tip lookup failed: %w", err)
	}

	submission, err := s.submissions.GetSubmission(ctx, tenantID, tip.SubmissionID)
	if err != nil {
		if errors.Is(err, store.ErrSubmissionNotFound) {
			return TipView{}, ErrTipNotFound
		}
		log.Err(err).Str("submission_id", tip.SubmissionID).Msg("submission lookup failed")
		return TipView{}, fmt.Errorf("submission lookup failed: %w", err)
	}

	snapshot, err := s.schemas.GetSchema(ctx, submission.SchemaHash)
	if err != nil {
		log.Err(err).Str("hash", submission.SchemaHash).Msg("archived schema lookup failed")
		return TipView{}, fmt.Errorf("archived schema lookup failed: %w", err)
	}

	answerRows, groupRows, err := s.submissions.GetSubmissionAnswers(ctx, tenantID, submission.ID)
	if err != nil {
		log.Err(err).Str("submission_id", submission.ID).Msg("answer rows lookup failed")
		return TipView{}, fmt.Errorf("answer rows lookup failed: %w", err)
	}
	answers := qna.Rebuild(answerRows, groupRows)

	index := archive.NewFieldIndex(snapshot.Steps)

	var sensitive []string
	if canViewSensitive {
		sensitive = redact.Extract(answers, index, language)
	} else {
		redact.Obfuscate(answers, index)
	}

	files, err := s.submissions.GetSubmissionFiles(ctx, tenantID, submission.ID)
	if err != nil {
		log.Err(err).Str("submission_id", submission.ID).Msg("file lookup failed")
		return TipView{}, fmt.Errorf("file lookup failed: %w", err)
	}

	if err := s.submissions.RegisterTipAccess(ctx, tip.ID, s.now().UTC()); err != nil {
		// access accounting must not block the read
		log.Err(err).Str("tip_id", tip.ID).Msg("failed to register tip access")
	}

	return TipView{
		Submission:    submission,
		Steps:         archive.Localize(snapshot.Steps, language),
		Answers:       answers,
		Files:         files,
		SensitiveData: sensitive,
	}, nil
}

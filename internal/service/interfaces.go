package service

import (
	"context"

	"github.com/tiplinehq/tipline/internal/archive"
	"github.com/tiplinehq/tipline/models"
)

// SubmissionService runs the finalization pipeline and serves submission
// reads.
type SubmissionService interface {
	// Create finalizes a submission and returns the one-time plaintext
	// receipt. Nothing is persisted on any error.
	Create(ctx context.Context, tenant models.Tenant, request models.SubmissionRequest, files []models.UploadedFile, https bool) (models.Receipt, error)
}

// TipView is a submission as serialized for one viewer: the frozen schema
// localized to the viewer's language, the reconstructed answer tree with
// sensitive values masked unless the viewer is authorized, and the
// attached files. For authorized viewers the sensitive values are also
// surfaced as a labelled list.
type TipView struct {
	Submission    models.Submission       `json:"submission"`
	Steps         []archive.LocalizedStep `json:"questionnaire"`
	Answers       models.Answers          `json:"answers"`
	Files         []models.UploadedFile   `json:"files"`
	SensitiveData []string                `json:"sensitive_data,omitempty"`
}

// TipService serves per-recipient submission access.
type TipService interface {
	// GetReceiverTip loads the tip granted to receiverID, registers the
	// access, and serializes the submission for viewing.
	GetReceiverTip(ctx context.Context, tenantID int64, receiverID, tipID, language string, canViewSensitive bool) (TipView, error)
}

// AuthService authenticates platform users against their tenant.
type AuthService interface {
	// Login verifies the credentials and returns the authenticated user.
	// All failures collapse into ErrInvalidCredentials.
	Login(ctx context.Context, tenantID int64, username, password string) (models.User, error)
}

package models

import "time"

// Submission is the finalized internal tip: a frozen questionnaire answer
// set plus attachments and per-recipient access records. Created exactly
// once per finalization; never partially persisted.
type Submission struct {
	// ID is the server-assigned submission identifier.
	ID string `json:"id"`

	// TenantID scopes the submission and all of its children.
	TenantID int64 `json:"-"`

	// Progressive is the tenant-scoped, strictly increasing sequence
	// number assigned under a serializing counter update.
	Progressive int64 `json:"progressive"`

	// ContextID references the context the submission was filed under.
	ContextID string `json:"context_id"`

	// SchemaHash references the archived questionnaire snapshot the
	// answers were given against.
	SchemaHash string `json:"-"`

	CreationDate   time.Time `json:"creation_date"`
	UpdateDate     time.Time `json:"update_date"`
	ExpirationDate time.Time `json:"expiration_date"`

	// HTTPS records the transport security level adopted by the
	// whistleblower (true when the client did not connect over Tor).
	HTTPS bool `json:"https"`

	EnableTwoWayComments        bool `json:"enable_two_way_comments"`
	EnableTwoWayMessages        bool `json:"enable_two_way_messages"`
	EnableAttachments           bool `json:"enable_attachments"`
	EnableWhistleblowerIdentity bool `json:"enable_whistleblower_identity"`

	// IdentityProvided is set only when the questionnaire contains a
	// whistleblower-identity field and the client asserted identity was
	// provided.
	IdentityProvided     bool      `json:"identity_provided"`
	IdentityProvidedDate time.Time `json:"identity_provided_date"`

	// ReceiptHash is the salted hash of the one-time recovery receipt.
	// The plaintext receipt is returned to the submitter exactly once and
	// never persisted.
	ReceiptHash string `json:"-"`

	// TotalScore is the client-computed questionnaire score. Indicative
	// only; the server does not trust or recompute it.
	TotalScore int `json:"total_score"`

	// Preview is the redacted previewable answer subset stored for list
	// views, keyed by field id.
	Preview Answers `json:"-"`
}

// TableName returns the name of the database table associated with the
// Submission model.
func (s Submission) TableName() string {
	return "internaltips"
}

// NeverExpires is the sentinel expiration date used when the context's
// retention policy is "never expires".
var NeverExpires = time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)

// SubmissionRequest is the decoded finalize-submission payload, already
// validated against the submission request template.
type SubmissionRequest struct {
	ContextID        string   `json:"context_id"`
	Receivers        []string `json:"receivers"`
	IdentityProvided bool     `json:"identity_provided"`
	TotalScore       int      `json:"total_score"`
	Answers          Answers  `json:"answers"`
}

// Receipt is the sole success payload of the finalize-submission
// operation.
type Receipt struct {
	Receipt string `json:"receipt"`
}

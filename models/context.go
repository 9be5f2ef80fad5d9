package models

// Context is the tenant-configured reporting channel a submission is filed
// under. It binds a questionnaire to a recipient list and a retention
// policy. Authoring happens in the admin interface; at submission time the
// context is read-only.
type Context struct {
	ID       string `json:"id"`
	TenantID int64  `json:"-"`

	QuestionnaireID string `json:"questionnaire_id"`

	// TipTimeToLive is the submission retention in days. A negative value
	// means submissions under this context never expire.
	TipTimeToLive int `json:"tip_timetolive"`

	// MaximumSelectableReceivers caps how many recipients a submitter may
	// select. Zero disables the ceiling.
	MaximumSelectableReceivers int `json:"maximum_selectable_receivers"`

	EnableTwoWayComments bool `json:"enable_two_way_comments"`
	EnableTwoWayMessages bool `json:"enable_two_way_messages"`
	EnableAttachments    bool `json:"enable_attachments"`

	// ReceiverIDs is the ordered list of recipients eligible under this
	// context.
	ReceiverIDs []string `json:"receivers"`
}

// TableName returns the name of the database table associated with the
// Context model.
func (c Context) TableName() string {
	return "contexts"
}

// Questionnaire is the live, editable question tree a context points at.
// Only its current step tree is consumed here: finalization snapshots it
// into an ArchivedSchema and never reads the live copy again.
type Questionnaire struct {
	ID       string `json:"id"`
	TenantID int64  `json:"-"`
	Name     string `json:"name"`
	Steps    []Step `json:"steps"`
}

// TableName returns the name of the database table associated with the
// Questionnaire model.
func (q Questionnaire) TableName() string {
	return "questionnaires"
}

package models

import "time"

// User is an authenticated platform account (admin, receiver or
// custodian), scoped to one tenant.
type User struct {
	ID       string `json:"id"`
	TenantID int64  `json:"-"`

	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Status   string `json:"status"`

	// AuthHash is the salted hash of the user's password. Never plaintext,
	// never exposed.
	AuthHash string `json:"-"`
	Salt     string `json:"-"`

	// PGPKeyPublic is the recipient's public encryption key. Recipients
	// without one are skipped at submission fan-out when the tenant
	// disallows unencrypted delivery.
	PGPKeyPublic string `json:"pgp_key_public"`

	CreatedAt time.Time `json:"creation_date"`
}

// TableName returns the name of the database table associated with the
// User model.
func (u User) TableName() string {
	return "users"
}

// ReceiverTip is the per-recipient access record and view into a
// submission. A finalized submission always has at least one.
type ReceiverTip struct {
	ID            string    `json:"id"`
	SubmissionID  string    `json:"internaltip_id"`
	ReceiverID    string    `json:"receiver_id"`
	AccessCounter int       `json:"access_counter"`
	LastAccess    time.Time `json:"last_access"`
}

// TableName returns the name of the database table associated with the
// ReceiverTip model.
func (r ReceiverTip) TableName() string {
	return "receivertips"
}

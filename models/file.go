package models

import "time"

// UploadedFile describes a file staged through the chunked upload protocol
// before finalization, and persisted as an attachment once the submission
// commits.
type UploadedFile struct {
	ID           string `json:"id"`
	TenantID     int64  `json:"-"`
	SubmissionID string `json:"internaltip_id"`

	// Name is the original client-supplied filename.
	Name string `json:"name"`

	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`

	// Filename is the server-side name of the encrypted temporary file on
	// disk. Recorded even when finalization fails so the file can be
	// reaped.
	Filename string `json:"-"`

	Description string `json:"description"`

	// Submission marks files uploaded as part of the original submission,
	// as opposed to attachments added later over the tip channel.
	Submission bool `json:"submission"`

	Date time.Time `json:"creation_date"`
}

// TableName returns the name of the database table associated with the
// UploadedFile model.
func (f UploadedFile) TableName() string {
	return "internalfiles"
}

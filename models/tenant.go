package models

// RootTenantID is the identifier of the primary tenant. Some credentials
// (the admin API token) are only honoured against it, and default
// questionnaires live under it.
const RootTenantID int64 = 1

// Tenant is one isolated site instance together with the per-tenant
// configuration consumed by the request and submission layers. Loaded into
// the tenant cache at startup and refreshed on demand.
type Tenant struct {
	ID int64 `json:"id"`

	Name string `json:"name"`

	// Hostname routes inbound requests to this tenant.
	Hostname string `json:"hostname"`

	DefaultLanguage string `json:"default_language"`

	// MaximumFilesize caps uploads, in megabytes. Both individual chunks
	// and declared total sizes are checked against it.
	MaximumFilesize int64 `json:"maximum_filesize"`

	// AllowUnencrypted permits recipient tips for recipients without a
	// public encryption key. When false such recipients are silently
	// skipped during fan-out.
	AllowUnencrypted bool `json:"allow_unencrypted"`

	// ReceiptSalt is the tenant-specific salt mixed into receipt hashing.
	ReceiptSalt string `json:"-"`

	// BasicAuth gates the whole tenant behind static credentials when
	// enabled. Individual endpoints may bypass it.
	BasicAuth         bool   `json:"basic_auth"`
	BasicAuthUsername string `json:"-"`
	BasicAuthPassword string `json:"-"`

	// AdminAPITokenDigest is the stored hash the api-token credential is
	// compared against in constant time. Only honoured on the root tenant.
	AdminAPITokenDigest string `json:"-"`
}

// TableName returns the name of the database table associated with the
// Tenant model.
func (t Tenant) TableName() string {
	return "tenants"
}

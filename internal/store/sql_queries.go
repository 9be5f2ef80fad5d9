package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	listTenants = `SELECT id, name, hostname, default_language, maximum_filesize, allow_unencrypted,
		receipt_salt, basic_auth, basic_auth_username, basic_auth_password, admin_api_token_digest
	FROM tenants
	ORDER BY id;`

	getTenant = `SELECT id, name, hostname, default_language, maximum_filesize, allow_unencrypted,
		receipt_salt, basic_auth, basic_auth_username, basic_auth_password, admin_api_token_digest
	FROM tenants
	WHERE id = $1;`

	nextProgressive = `UPDATE tenants
	SET submission_counter = submission_counter + 1
	WHERE id = $1
	RETURNING submission_counter;`

	getContext = `SELECT id, tenant_id, questionnaire_id, tip_timetolive, maximum_selectable_receivers,
		enable_two_way_comments, enable_two_way_messages, enable_attachments
	FROM contexts
	WHERE id = $1 AND tenant_id IN ($2, $3);`

	getContextReceivers = `SELECT receiver_id
	FROM context_receivers
	WHERE context_id = $1
	ORDER BY ordering;`

	getQuestionnaire = `SELECT id, tenant_id, name, steps
	FROM questionnaires
	WHERE id = $1 AND tenant_id IN ($2, $3);`

	archiveSchema = `INSERT INTO archived_schemas (hash, schema, preview)
	VALUES ($1, $2, $3)
	ON CONFLICT (hash) DO NOTHING;`

	getSchema = `SELECT hash, schema, preview
	FROM archived_schemas
	WHERE hash = $1;`

	findUserByUsername = `SELECT id, tenant_id, username, name, role, status, auth_hash, salt, pgp_key_public, created_at
	FROM users
	WHERE tenant_id = $1 AND username = $2;`

	createSubmission = `INSERT INTO internaltips (
			id,
			tenant_id,
			progressive,
			context_id,
			schema_hash,
			creation_date,
			update_date,
			expiration_date,
			https,
			enable_two_way_comments,
			enable_two_way_messages,
			enable_attachments,
			enable_whistleblower_identity,
			identity_provided,
			identity_provided_date,
			receipt_hash,
			total_score,
			preview
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`

	getSubmission = `SELECT id, tenant_id, progressive, context_id, schema_hash, creation_date, update_date,
		expiration_date, https, enable_two_way_comments, enable_two_way_messages, enable_attachments,
		enable_whistleblower_identity, identity_provided, identity_provided_date, receipt_hash, total_score, preview
	FROM internaltips
	WHERE tenant_id = $1 AND id = $2;`

	saveAnswerRow = `INSERT INTO fieldanswers (id, tenant_id, internaltip_id, key, is_leaf, value, fieldanswergroup_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7);`

	saveGroupRow = `INSERT INTO fieldanswergroups (id, tenant_id, fieldanswer_id, number)
	VALUES ($1, $2, $3, $4);`

	getAnswerRows = `SELECT id, tenant_id, internaltip_id, key, is_leaf, value, fieldanswergroup_id
	FROM fieldanswers
	WHERE tenant_id = $1 AND internaltip_id = $2;`

	getGroupRows = `SELECT g.id, g.tenant_id, g.fieldanswer_id, g.number
	FROM fieldanswergroups g
	JOIN fieldanswers a ON a.id = g.fieldanswer_id
	WHERE g.tenant_id = $1 AND a.internaltip_id = $2;`

	saveFile = `INSERT INTO internalfiles (id, tenant_id, internaltip_id, name, content_type, size, filename, description, submission, date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	getSubmissionFiles = `SELECT id, tenant_id, internaltip_id, name, content_type, size, filename, description, submission, date
	FROM internalfiles
	WHERE tenant_id = $1 AND internaltip_id = $2;`

	createReceiverTip = `INSERT INTO receivertips (id, internaltip_id, receiver_id, access_counter, last_access)
	VALUES ($1, $2, $3, 0, $4);`

	getReceiverTip = `SELECT r.id, r.internaltip_id, r.receiver_id, r.access_counter, r.last_access
	FROM receivertips r
	WHERE r.receiver_id = $1 AND r.id = $2;`

	registerTipAccess = `UPDATE receivertips
	SET access_counter = access_counter + 1, last_access = $1
	WHERE id = $2;`

	deleteExpiredSubmissions = `DELETE FROM internaltips
	WHERE expiration_date < $1;`
)

// psql builds queries with PostgreSQL-style numbered placeholders, which
// both supported drivers accept.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildListSubmissionsQuery assembles the filtered submission listing.
// Only non-zero filter fields contribute WHERE clauses.
func buildListSubmissionsQuery(filter SubmissionFilter) (string, []any, error) {
	builder := psql.
		Select("id", "tenant_id", "progressive", "context_id", "schema_hash", "creation_date",
			"update_date", "expiration_date", "https", "enable_two_way_comments", "enable_two_way_messages",
			"enable_attachments", "enable_whistleblower_identity", "identity_provided",
			"identity_provided_date", "receipt_hash", "total_score", "preview").
		From("internaltips").
		OrderBy("progressive")

	if filter.TenantID != 0 {
		builder = builder.Where(sq.Eq{"tenant_id": filter.TenantID})
	}
	if filter.ContextID != "" {
		builder = builder.Where(sq.Eq{"context_id": filter.ContextID})
	}
	if !filter.ExpiredBefore.IsZero() {
		builder = builder.Where(sq.Lt{"expiration_date": filter.ExpiredBefore})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return builder.ToSql()
}

// buildGetUsersByIDsQuery expands the id set into an IN clause.
func buildGetUsersByIDsQuery(tenantID int64, ids []string) (string, []any, error) {
	return psql.
		Select("id", "tenant_id", "username", "name", "role", "status", "auth_hash", "salt", "pgp_key_public", "created_at").
		From("users").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"id": ids}).
		ToSql()
}

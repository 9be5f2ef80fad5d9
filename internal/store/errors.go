package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrTenantNotFound is returned when a queried tenant does not exist.
	ErrTenantNotFound = errors.New("tenant was not found")

	// ErrContextNotFound is returned when a submission context does not
	// exist or is not visible to the requesting tenant.
	ErrContextNotFound = errors.New("context was not found")

	// ErrQuestionnaireNotFound is returned when a context references a
	// questionnaire that does not exist.
	ErrQuestionnaireNotFound = errors.New("questionnaire was not found")

	// ErrSchemaNotFound is returned when no archived schema matches the
	// requested hash.
	ErrSchemaNotFound = errors.New("archived schema was not found")

	// ErrNoUserWasFound is returned when a query expected to match at least
	// one user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrSubmissionNotFound is returned when a queried submission does not
	// exist, has expired, or belongs to another tenant.
	ErrSubmissionNotFound = errors.New("submission was not found")

	// ErrReceiverTipNotFound is returned when a recipient requests a tip
	// that was never fanned out to them.
	ErrReceiverTipNotFound = errors.New("receiver tip was not found")

	// ErrSubmissionNotSaved is returned when an INSERT completes without
	// error but the number of affected rows is zero.
	ErrSubmissionNotSaved = errors.New("submission was not saved")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrPreparingStatement is returned when a SQL statement cannot be
	// prepared (e.g. syntax error or connection issue).
	ErrPreparingStatement = errors.New("failed to prepare statement")

	// ErrExecutingStatement is returned when executing a prepared DML
	// statement (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)

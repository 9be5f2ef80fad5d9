package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/models"
)

// tenantRepository implements [TenantRepository] against the "tenants"
// table. It also owns the tenant-scoped progressive counter used by the
// submission pipeline.
type tenantRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewTenantRepository constructs a [TenantRepository] backed by the
// provided database connection and logger.
func NewTenantRepository(db *DB, logger *logger.Logger) TenantRepository {
	logger.Debug().Msg("creating tenant repository")
	return &tenantRepository{
		db:     db,
		logger: logger,
	}
}

func (r *tenantRepository) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listTenants)
	if err != nil {
		log.Err(err).Str("func", "*tenantRepository.ListTenants").Msg("failed to execute query for listing tenants")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	tenants := make([]models.Tenant, 0, 8)
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Hostname, &t.DefaultLanguage, &t.MaximumFilesize,
			&t.AllowUnencrypted, &t.ReceiptSalt, &t.BasicAuth, &t.BasicAuthUsername,
			&t.BasicAuthPassword, &t.AdminAPITokenDigest); err != nil {
			log.Err(err).Str("func", "*tenantRepository.ListTenants").Msg("failed to scan tenant row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*tenantRepository.ListTenants").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return tenants, nil
}

func (r *tenantRepository) GetTenant(ctx context.Context, id int64) (models.Tenant, error) {
	log := logger.FromContext(ctx)

	var t models.Tenant
	row := r.db.QueryRowContext(ctx, getTenant, id)
	if err := row.Scan(&t.ID, &t.Name, &t.Hostname, &t.DefaultLanguage, &t.MaximumFilesize,
		&t.AllowUnencrypted, &t.ReceiptSalt, &t.BasicAuth, &t.BasicAuthUsername,
		&t.BasicAuthPassword, &t.AdminAPITokenDigest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tenant{}, ErrTenantNotFound
		}
		log.Err(err).Str("func", "*tenantRepository.GetTenant").Int64("tenant_id", id).Msg("failed to scan tenant row")
		return models.Tenant{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return t, nil
}

// NextProgressive serializes concurrent finalizations on the counter row:
// the UPDATE takes a row lock, so two submissions under the same tenant
// can never observe the same value.
func (r *tenantRepository) NextProgressive(ctx context.Context, tenantID int64) (int64, error) {
	log := logger.FromContext(ctx)

	var progressive int64
	row := r.db.QueryRowContext(ctx, nextProgressive, tenantID)
	if err := row.Scan(&progressive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTenantNotFound
		}
		log.Err(err).Str("func", "*tenantRepository.NextProgressive").Int64("tenant_id", tenantID).Msg("failed to advance progressive counter")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return progressive, nil
}

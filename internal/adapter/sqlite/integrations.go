package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rtkops/ispcrm/internal/domain"
)

// IntegrationRepository implements domain.IntegrationRepository using
// SQLite. Credentials are stored as a JSON object in a single column; the
// schema never learns individual secret names.
type IntegrationRepository struct {
	db *sql.DB
}

// Compile-time check: IntegrationRepository implements domain.IntegrationRepository.
var _ domain.IntegrationRepository = (*IntegrationRepository)(nil)

// Save upserts by (tenant_id, provider). Concurrent saves for the same key
// resolve last-writer-wins with no merge.
func (r *IntegrationRepository) Save(ctx context.Context, cfg domain.IntegrationConfig) error {
	creds, err := json.Marshal(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO integrations (tenant_id, provider, base_url, credentials, timeout_seconds, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, provider) DO UPDATE SET
		   base_url = excluded.base_url,
		   credentials = excluded.credentials,
		   timeout_seconds = excluded.timeout_seconds,
		   updated_at = excluded.updated_at`,
		cfg.TenantID, string(cfg.Provider), cfg.BaseURL, string(creds),
		cfg.TimeoutSeconds, cfg.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("upserting integration: %w", err)
	}
	return nil
}

func (r *IntegrationRepository) GetByProvider(ctx context.Context, tenantID string, provider domain.Provider) (domain.IntegrationConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT tenant_id, provider, base_url, credentials, timeout_seconds, updated_at
		 FROM integrations WHERE tenant_id = ? AND provider = ?`,
		tenantID, string(provider),
	)

	cfg, err := scanIntegration(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.IntegrationConfig{}, domain.ErrIntegrationNotFound
		}
		return domain.IntegrationConfig{}, err
	}
	return cfg, nil
}

func (r *IntegrationRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.IntegrationConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tenant_id, provider, base_url, credentials, timeout_seconds, updated_at
		 FROM integrations WHERE tenant_id = ? ORDER BY provider`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	defer rows.Close()

	var configs []domain.IntegrationConfig
	for rows.Next() {
		cfg, err := scanIntegration(rows.Scan)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// scanIntegration scans one integration row via the given Scan function.
func scanIntegration(scan func(dest ...any) error) (domain.IntegrationConfig, error) {
	var cfg domain.IntegrationConfig
	var provider, creds, updatedAt string

	err := scan(&cfg.TenantID, &provider, &cfg.BaseURL, &creds, &cfg.TimeoutSeconds, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.IntegrationConfig{}, err
		}
		return domain.IntegrationConfig{}, fmt.Errorf("scanning integration: %w", err)
	}

	cfg.Provider = domain.Provider(provider)
	if err := json.Unmarshal([]byte(creds), &cfg.Credentials); err != nil {
		return domain.IntegrationConfig{}, fmt.Errorf("decoding credentials: %w", err)
	}
	cfg.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return cfg, nil
}

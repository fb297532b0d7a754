package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rtkops/ispcrm/internal/domain"
)

// TenantRepository implements domain.TenantRepository using SQLite.
type TenantRepository struct {
	db *sql.DB
}

// Compile-time check: TenantRepository implements domain.TenantRepository.
var _ domain.TenantRepository = (*TenantRepository)(nil)

func (r *TenantRepository) Create(ctx context.Context, t domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, network_name, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.NetworkName, t.ParentID,
		t.CreatedAt.Format(timeFormat),
		t.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting tenant: %w", err)
	}
	return nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return scanTenant(r.db.QueryRowContext(ctx,
		`SELECT id, name, network_name, parent_id, created_at, updated_at
		 FROM tenants WHERE id = ?`, id,
	))
}

func (r *TenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, network_name, parent_id, created_at, updated_at
		 FROM tenants ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.Name, &t.NetworkName, &t.ParentID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning tenant row: %w", err)
		}
		t.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		t.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

// scanTenant scans a single row from QueryRow into a domain.Tenant.
func scanTenant(row *sql.Row) (domain.Tenant, error) {
	var t domain.Tenant
	var createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.Name, &t.NetworkName, &t.ParentID, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Tenant{}, domain.ErrTenantNotFound
		}
		return domain.Tenant{}, fmt.Errorf("scanning tenant: %w", err)
	}

	t.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	t.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return t, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rtkops/ispcrm/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository using SQLite.
// Every statement carries tenant_id in its WHERE clause, so cross-tenant
// access fails here no matter what the caller resolved.
type CustomerRepository struct {
	db *sql.DB
}

// Compile-time check: CustomerRepository implements domain.CustomerRepository.
var _ domain.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) Create(ctx context.Context, c domain.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, tenant_id, name, email, plan_name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TenantID, c.Name, c.Email, c.PlanName, string(c.Status),
		c.CreatedAt.Format(timeFormat),
		c.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, email, plan_name, status, created_at, updated_at
		 FROM customers WHERE tenant_id = ? AND id = ?`, tenantID, id,
	))
}

func (r *CustomerRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, email, plan_name, status, created_at, updated_at
		 FROM customers WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomerFromRows(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

// SetStatus updates one customer's status. The single-statement UPDATE on
// the single-connection pool serializes concurrent writers; the last
// committed writer wins.
func (r *CustomerRepository) SetStatus(ctx context.Context, tenantID, id string, status domain.Status) (domain.Customer, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET status = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		string(status), time.Now().UTC().Format(timeFormat), tenantID, id,
	)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("updating customer status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Customer{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	return r.GetByID(ctx, tenantID, id)
}

// scanCustomer scans a single row from QueryRow into a domain.Customer.
func scanCustomer(row *sql.Row) (domain.Customer, error) {
	var c domain.Customer
	var status, createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.PlanName, &status, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("scanning customer: %w", err)
	}

	c.Status = domain.Status(status)
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return c, nil
}

// scanCustomerFromRows scans a single row from Rows (used in ListByTenant).
func scanCustomerFromRows(rows *sql.Rows) (domain.Customer, error) {
	var c domain.Customer
	var status, createdAt, updatedAt string

	err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.PlanName, &status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("scanning customer row: %w", err)
	}

	c.Status = domain.Status(status)
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return c, nil
}

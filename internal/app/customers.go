package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rtkops/ispcrm/internal/domain"
)

// CustomerService manages subscriber records within a tenant.
type CustomerService struct {
	tenants   domain.TenantRepository
	customers domain.CustomerRepository
}

// NewCustomerService creates a service with the given repositories.
func NewCustomerService(tenants domain.TenantRepository, customers domain.CustomerRepository) *CustomerService {
	return &CustomerService{tenants: tenants, customers: customers}
}

// Create persists a new customer under the given tenant, starting active.
func (s *CustomerService) Create(ctx context.Context, tenantID, name, email, planName string) (domain.Customer, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return domain.Customer{}, err
	}

	if strings.TrimSpace(name) == "" {
		return domain.Customer{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(planName) == "" {
		return domain.Customer{}, &domain.ValidationError{Field: "plan_name", Reason: "must not be empty"}
	}
	if !domain.ValidEmail(email) {
		return domain.Customer{}, &domain.ValidationError{Field: "email", Reason: "malformed address"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Customer{}, fmt.Errorf("generating customer id: %w", err)
	}

	customer := domain.NewCustomer(id, tenantID, name, email, planName)

	if err := s.customers.Create(ctx, customer); err != nil {
		return domain.Customer{}, fmt.Errorf("creating customer: %w", err)
	}

	return customer, nil
}

// Get returns a customer by ID within the given tenant's namespace.
func (s *CustomerService) Get(ctx context.Context, tenantID, customerID string) (domain.Customer, error) {
	return s.customers.GetByID(ctx, tenantID, customerID)
}

// ListByTenant returns all customers owned by the given tenant.
func (s *CustomerService) ListByTenant(ctx context.Context, tenantID string) ([]domain.Customer, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.customers.ListByTenant(ctx, tenantID)
}

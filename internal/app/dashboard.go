package app

import (
	"context"

	"github.com/rtkops/ispcrm/internal/domain"
)

// DashboardSummary aggregates one tenant's current state for display.
type DashboardSummary struct {
	TotalCustomers     int
	ActiveCustomers    int
	SuspendedCustomers int
	Providers          []domain.Provider
}

// DashboardService computes per-tenant aggregates at read time.
type DashboardService struct {
	tenants      domain.TenantRepository
	customers    domain.CustomerRepository
	integrations domain.IntegrationRepository
}

// NewDashboardService creates a service with the given repositories.
func NewDashboardService(
	tenants domain.TenantRepository,
	customers domain.CustomerRepository,
	integrations domain.IntegrationRepository,
) *DashboardService {
	return &DashboardService{
		tenants:      tenants,
		customers:    customers,
		integrations: integrations,
	}
}

// Summary returns the tenant's customer counts and configured providers.
func (s *DashboardService) Summary(ctx context.Context, tenantID string) (DashboardSummary, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return DashboardSummary{}, err
	}

	customers, err := s.customers.ListByTenant(ctx, tenantID)
	if err != nil {
		return DashboardSummary{}, err
	}

	configs, err := s.integrations.ListByTenant(ctx, tenantID)
	if err != nil {
		return DashboardSummary{}, err
	}

	out := DashboardSummary{TotalCustomers: len(customers)}
	for _, c := range customers {
		switch c.Status {
		case domain.StatusActive:
			out.ActiveCustomers++
		case domain.StatusSuspended:
			out.SuspendedCustomers++
		}
	}
	for _, cfg := range configs {
		out.Providers = append(out.Providers, cfg.Provider)
	}

	return out, nil
}

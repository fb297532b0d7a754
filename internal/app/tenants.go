package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rtkops/ispcrm/internal/domain"
)

// TenantService manages the company directory.
type TenantService struct {
	repo domain.TenantRepository
}

// NewTenantService creates a service with the given repository.
func NewTenantService(repo domain.TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

// Create persists a new tenant. An optional parent must already exist and
// must not sit on a looping branch of the hierarchy.
func (s *TenantService) Create(ctx context.Context, name, networkName, parentID string) (domain.Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Tenant{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(networkName) == "" {
		return domain.Tenant{}, &domain.ValidationError{Field: "network_name", Reason: "must not be empty"}
	}

	if parentID != "" {
		if _, err := s.repo.GetByID(ctx, parentID); err != nil {
			if errors.Is(err, domain.ErrTenantNotFound) {
				return domain.Tenant{}, &domain.ValidationError{Field: "parent_tenant_id", Reason: "does not reference an existing tenant"}
			}
			return domain.Tenant{}, fmt.Errorf("resolving parent tenant: %w", err)
		}
		if err := s.checkAncestry(ctx, parentID); err != nil {
			return domain.Tenant{}, err
		}
	}

	id, err := generateID()
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("generating tenant id: %w", err)
	}

	tenant := domain.NewTenant(id, name, networkName, parentID)

	if err := s.repo.Create(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("creating tenant: %w", err)
	}

	return tenant, nil
}

// checkAncestry walks the parent chain upward from parentID. A revisited
// tenant means the stored hierarchy already loops; attaching to that
// branch is refused.
func (s *TenantService) checkAncestry(ctx context.Context, parentID string) error {
	seen := map[string]bool{}
	current := parentID
	for current != "" {
		if seen[current] {
			return &domain.ParentCycleError{TenantID: current, ParentID: parentID}
		}
		seen[current] = true

		ancestor, err := s.repo.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrTenantNotFound) {
				return nil
			}
			return fmt.Errorf("walking tenant hierarchy: %w", err)
		}
		current = ancestor.ParentID
	}
	return nil
}

// GetByID returns a tenant by its unique identifier.
func (s *TenantService) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.repo.List(ctx)
}

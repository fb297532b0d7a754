package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rtkops/ispcrm/internal/domain"
)

// IntegrationService manages per-tenant provider credentials and their
// connection tests.
type IntegrationService struct {
	tenants      domain.TenantRepository
	integrations domain.IntegrationRepository
	testers      map[domain.Provider]domain.ConnectionTester
}

// NewIntegrationService creates a service with one tester per provider.
func NewIntegrationService(
	tenants domain.TenantRepository,
	integrations domain.IntegrationRepository,
	testers map[domain.Provider]domain.ConnectionTester,
) *IntegrationService {
	return &IntegrationService{
		tenants:      tenants,
		integrations: integrations,
		testers:      testers,
	}
}

// Save upserts a tenant's config for one provider.
func (s *IntegrationService) Save(ctx context.Context, tenantID string, provider domain.Provider, baseURL string, credentials map[string]string, timeoutSeconds int) (domain.IntegrationConfig, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return domain.IntegrationConfig{}, err
	}

	u, err := url.ParseRequestURI(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.IntegrationConfig{}, &domain.ValidationError{Field: "base_url", Reason: "must be an absolute http(s) URL"}
	}
	if timeoutSeconds < 0 {
		return domain.IntegrationConfig{}, &domain.ValidationError{Field: "timeout_seconds", Reason: "must not be negative"}
	}

	cfg := domain.IntegrationConfig{
		TenantID:       tenantID,
		Provider:       provider,
		BaseURL:        baseURL,
		Credentials:    credentials,
		TimeoutSeconds: timeoutSeconds,
		UpdatedAt:      time.Now().UTC(),
	}

	if err := s.integrations.Save(ctx, cfg); err != nil {
		return domain.IntegrationConfig{}, fmt.Errorf("saving integration config: %w", err)
	}

	return cfg, nil
}

// ListByTenant returns the tenant's configs with credentials redacted.
func (s *IntegrationService) ListByTenant(ctx context.Context, tenantID string) ([]domain.IntegrationConfig, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}

	configs, err := s.integrations.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.IntegrationConfig, len(configs))
	for i, cfg := range configs {
		out[i] = cfg.Redacted()
	}
	return out, nil
}

// Resolve returns the tenant's config for one provider, credentials intact.
// Callers are the outbound adapters; nothing here leaves the process.
func (s *IntegrationService) Resolve(ctx context.Context, tenantID string, provider domain.Provider) (domain.IntegrationConfig, error) {
	return s.integrations.GetByProvider(ctx, tenantID, provider)
}

// Test performs a lightweight authenticated round trip against the
// configured endpoint. Remote failure lands in the result; the only errors
// raised are an unknown tenant or a provider with no saved config.
func (s *IntegrationService) Test(ctx context.Context, tenantID string, provider domain.Provider) (domain.ConnectionTestResult, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return domain.ConnectionTestResult{}, err
	}

	cfg, err := s.integrations.GetByProvider(ctx, tenantID, provider)
	if err != nil {
		return domain.ConnectionTestResult{}, err
	}

	tester, ok := s.testers[provider]
	if !ok {
		return domain.ConnectionTestResult{OK: false, Detail: fmt.Sprintf("no tester for provider %q", provider)}, nil
	}

	return tester.Test(ctx, cfg), nil
}

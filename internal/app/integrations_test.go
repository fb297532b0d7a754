package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rtkops/ispcrm/internal/app"
	"github.com/rtkops/ispcrm/internal/domain"
)

func TestIntegrationService_Save(t *testing.T) {
	tenants := newMockTenantRepo()
	integrations := newMockIntegrationRepo()
	seedTenant(t, tenants, "t1")
	svc := app.NewIntegrationService(tenants, integrations, nil)

	cfg, err := svc.Save(context.Background(), "t1", domain.ProviderUISP,
		"https://uisp.example.com/api/v2.1", map[string]string{"app_key": "k"}, 5)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cfg.TimeoutSeconds != 5 {
		t.Errorf("TimeoutSeconds = %d, want 5", cfg.TimeoutSeconds)
	}

	stored, err := integrations.GetByProvider(context.Background(), "t1", domain.ProviderUISP)
	if err != nil {
		t.Fatalf("GetByProvider: %v", err)
	}
	if stored.Credentials["app_key"] != "k" {
		t.Error("credentials not persisted intact")
	}
}

func TestIntegrationService_Save_Overwrites(t *testing.T) {
	tenants := newMockTenantRepo()
	integrations := newMockIntegrationRepo()
	seedTenant(t, tenants, "t1")
	svc := app.NewIntegrationService(tenants, integrations, nil)

	for _, url := range []string{"https://first.example.com", "https://second.example.com"} {
		if _, err := svc.Save(context.Background(), "t1", domain.ProviderN8N, url, nil, 0); err != nil {
			t.Fatalf("Save %s: %v", url, err)
		}
	}

	stored, err := integrations.GetByProvider(context.Background(), "t1", domain.ProviderN8N)
	if err != nil {
		t.Fatalf("GetByProvider: %v", err)
	}
	if stored.BaseURL != "https://second.example.com" {
		t.Errorf("BaseURL = %q, want the later value", stored.BaseURL)
	}
}

func TestIntegrationService_Save_Validation(t *testing.T) {
	tenants := newMockTenantRepo()
	seedTenant(t, tenants, "t1")
	svc := app.NewIntegrationService(tenants, newMockIntegrationRepo(), nil)

	cases := []struct {
		name      string
		baseURL   string
		timeout   int
		wantField string
	}{
		{"relative URL", "/api/v2.1", 0, "base_url"},
		{"missing scheme", "uisp.example.com", 0, "base_url"},
		{"wrong scheme", "ftp://uisp.example.com", 0, "base_url"},
		{"negative timeout", "https://uisp.example.com", -1, "timeout_seconds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), "t1", domain.ProviderUISP, tc.baseURL, nil, tc.timeout)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}

func TestIntegrationService_Save_UnknownTenant(t *testing.T) {
	svc := app.NewIntegrationService(newMockTenantRepo(), newMockIntegrationRepo(), nil)

	_, err := svc.Save(context.Background(), "ghost", domain.ProviderUISP, "https://uisp.example.com", nil, 0)
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestIntegrationService_ListByTenant_Redacts(t *testing.T) {
	tenants := newMockTenantRepo()
	integrations := newMockIntegrationRepo()
	seedTenant(t, tenants, "t1")
	svc := app.NewIntegrationService(tenants, integrations, nil)

	if _, err := svc.Save(context.Background(), "t1", domain.ProviderUISP,
		"https://uisp.example.com", map[string]string{"app_key": "super-secret"}, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	configs, err := svc.ListByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ListByTenant: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("len = %d, want 1", len(configs))
	}
	if got := configs[0].Credentials["app_key"]; got != "********" {
		t.Errorf("Credentials[app_key] = %q, want masked", got)
	}

	// The stored copy keeps the real secret.
	stored, err := svc.Resolve(context.Background(), "t1", domain.ProviderUISP)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if stored.Credentials["app_key"] != "super-secret" {
		t.Error("Resolve must return credentials intact")
	}
}

func TestIntegrationService_Test(t *testing.T) {
	tenants := newMockTenantRepo()
	integrations := newMockIntegrationRepo()
	seedTenant(t, tenants, "t1")
	tester := &mockTester{result: domain.ConnectionTestResult{OK: true, Detail: "reachable"}}
	svc := app.NewIntegrationService(tenants, integrations, map[domain.Provider]domain.ConnectionTester{
		domain.ProviderUISP: tester,
	})

	if _, err := svc.Save(context.Background(), "t1", domain.ProviderUISP, "https://uisp.example.com", nil, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	result, err := svc.Test(context.Background(), "t1", domain.ProviderUISP)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if !result.OK || result.Detail != "reachable" {
		t.Errorf("result = %+v, want tester's result", result)
	}
	if tester.calls != 1 {
		t.Errorf("tester calls = %d, want 1", tester.calls)
	}
}

func TestIntegrationService_Test_NotConfigured(t *testing.T) {
	tenants := newMockTenantRepo()
	seedTenant(t, tenants, "t1")
	svc := app.NewIntegrationService(tenants, newMockIntegrationRepo(), nil)

	_, err := svc.Test(context.Background(), "t1", domain.ProviderUISP)
	if !errors.Is(err, domain.ErrIntegrationNotFound) {
		t.Errorf("expected ErrIntegrationNotFound, got %v", err)
	}
}

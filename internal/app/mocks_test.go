package app_test

import (
	"context"
	"sync"

	"github.com/rtkops/ispcrm/internal/domain"
)

// --- Mocks shared by the service tests ---

type mockTenantRepo struct {
	tenants map[string]domain.Tenant
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{tenants: make(map[string]domain.Tenant)}
}

func (m *mockTenantRepo) Create(_ context.Context, t domain.Tenant) error {
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantRepo) GetByID(_ context.Context, id string) (domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockTenantRepo) List(_ context.Context) ([]domain.Tenant, error) {
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

type mockCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]domain.Customer
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{customers: make(map[string]domain.Customer)}
}

func customerKey(tenantID, id string) string { return tenantID + "/" + id }

func (m *mockCustomerRepo) Create(_ context.Context, c domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customerKey(c.TenantID, c.ID)] = c
	return nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, tenantID, id string) (domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customerKey(tenantID, id)]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) ListByTenant(_ context.Context, tenantID string) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Customer
	for _, c := range m.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCustomerRepo) SetStatus(_ context.Context, tenantID, id string, status domain.Status) (domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := customerKey(tenantID, id)
	c, ok := m.customers[key]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	c.Status = status
	m.customers[key] = c
	return c, nil
}

type mockIntegrationRepo struct {
	configs map[string]domain.IntegrationConfig
}

func newMockIntegrationRepo() *mockIntegrationRepo {
	return &mockIntegrationRepo{configs: make(map[string]domain.IntegrationConfig)}
}

func configKey(tenantID string, p domain.Provider) string { return tenantID + "/" + string(p) }

func (m *mockIntegrationRepo) Save(_ context.Context, cfg domain.IntegrationConfig) error {
	m.configs[configKey(cfg.TenantID, cfg.Provider)] = cfg
	return nil
}

func (m *mockIntegrationRepo) GetByProvider(_ context.Context, tenantID string, p domain.Provider) (domain.IntegrationConfig, error) {
	cfg, ok := m.configs[configKey(tenantID, p)]
	if !ok {
		return domain.IntegrationConfig{}, domain.ErrIntegrationNotFound
	}
	return cfg, nil
}

func (m *mockIntegrationRepo) ListByTenant(_ context.Context, tenantID string) ([]domain.IntegrationConfig, error) {
	var out []domain.IntegrationConfig
	for _, cfg := range m.configs {
		if cfg.TenantID == tenantID {
			out = append(out, cfg)
		}
	}
	return out, nil
}

// tableValidator resolves transitions straight from the domain table.
type tableValidator struct{}

func (tableValidator) Apply(_ context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	for _, tr := range domain.Transitions {
		if tr.Event == event && tr.Src == current {
			return tr.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

type pushCall struct {
	tenantID   string
	customerID string
	target     domain.Status
	reason     string
}

type mockPlatform struct {
	mu     sync.Mutex
	result domain.StepResult
	calls  []pushCall
}

func (m *mockPlatform) PushStatus(_ context.Context, tenantID, customerID string, target domain.Status, reason string) domain.StepResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, pushCall{tenantID: tenantID, customerID: customerID, target: target, reason: reason})
	return m.result
}

func (m *mockPlatform) Search(_ context.Context, _, _ string) ([]domain.ExternalCustomerSummary, error) {
	return nil, nil
}

func (m *mockPlatform) ListServices(_ context.Context, _, _ string) ([]domain.ServiceSummary, error) {
	return nil, nil
}

type mockNotifier struct {
	mu     sync.Mutex
	result domain.StepResult
	events []domain.AutomationEvent
}

func (m *mockNotifier) Notify(_ context.Context, _ string, event domain.AutomationEvent) domain.StepResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.result
}

type publishedEvent struct {
	event    domain.Event
	customer domain.Customer
	previous domain.Status
	reason   string
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, c domain.Customer, previous domain.Status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{event: e, customer: c, previous: previous, reason: reason})
	return m.err
}

type mockTester struct {
	result domain.ConnectionTestResult
	calls  int
}

func (m *mockTester) Test(_ context.Context, _ domain.IntegrationConfig) domain.ConnectionTestResult {
	m.calls++
	return m.result
}

package domain

import "context"

// TenantRepository defines the persistence contract for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id string) (Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
}

// CustomerRepository defines the persistence contract for customers.
// Every operation is tenant-scoped: a customer is unreachable through any
// tenant other than its owner.
type CustomerRepository interface {
	Create(ctx context.Context, customer Customer) error
	GetByID(ctx context.Context, tenantID, id string) (Customer, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Customer, error)
	SetStatus(ctx context.Context, tenantID, id string, status Status) (Customer, error)
}

// IntegrationRepository defines the persistence contract for per-tenant
// provider configs. Save upserts by (tenant, provider).
type IntegrationRepository interface {
	Save(ctx context.Context, cfg IntegrationConfig) error
	GetByProvider(ctx context.Context, tenantID string, provider Provider) (IntegrationConfig, error)
	ListByTenant(ctx context.Context, tenantID string) ([]IntegrationConfig, error)
}

// TransitionValidator checks whether an event may fire from the current
// status and returns the resulting status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// PlatformAdapter translates status changes and lookups into the external
// ISP platform's API. PushStatus never returns an error: missing config
// and remote failure are encoded in the result so a platform outage
// cannot mask the already-committed local change.
type PlatformAdapter interface {
	PushStatus(ctx context.Context, tenantID, customerID string, target Status, reason string) StepResult
	Search(ctx context.Context, tenantID, query string) ([]ExternalCustomerSummary, error)
	ListServices(ctx context.Context, tenantID, externalCustomerID string) ([]ServiceSummary, error)
}

// AutomationNotifier delivers a best-effort lifecycle event to the
// tenant's automation endpoint. Same non-throwing contract as
// PlatformAdapter.PushStatus.
type AutomationNotifier interface {
	Notify(ctx context.Context, tenantID string, event AutomationEvent) StepResult
}

// ConnectionTester performs a lightweight authenticated round trip
// against one provider's configured endpoint.
type ConnectionTester interface {
	Test(ctx context.Context, cfg IntegrationConfig) ConnectionTestResult
}

// EventPublisher defines the contract for recording committed status
// changes as asynchronous domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, customer Customer, previous Status, reason string) error
}

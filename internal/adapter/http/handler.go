package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rtkops/ispcrm/internal/app"
	"github.com/rtkops/ispcrm/internal/domain"
)

// Services bundles the application services the API fronts.
type Services struct {
	Tenants       *app.TenantService
	Customers     *app.CustomerService
	Integrations  *app.IntegrationService
	StatusChanges *app.StatusChangeService
	Dashboard     *app.DashboardService
	Platform      domain.PlatformAdapter
}

// --- Responses ---

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	Name        string `json:"name" doc:"Display name"`
	NetworkName string `json:"network_name" doc:"Logical network the company operates"`
	ParentID    string `json:"parent_tenant_id,omitempty" doc:"Parent company, display-only grouping"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt   string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:          t.ID,
		Name:        t.Name,
		NetworkName: t.NetworkName,
		ParentID:    t.ParentID,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   t.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// CustomerResponse is the API representation of a customer.
type CustomerResponse struct {
	ID        string `json:"id" doc:"Unique identifier within the tenant"`
	TenantID  string `json:"tenant_id" doc:"Owning tenant"`
	Name      string `json:"name" doc:"Subscriber name"`
	Email     string `json:"email" doc:"Contact address"`
	PlanName  string `json:"plan_name" doc:"Subscribed plan"`
	Status    string `json:"status" doc:"Service state" enum:"active,suspended"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      c.Name,
		Email:     c.Email,
		PlanName:  c.PlanName,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// IntegrationResponse is the outward representation of a provider config.
// Credential values are always redacted before they reach this type.
type IntegrationResponse struct {
	Provider       string            `json:"provider" doc:"Connected system" enum:"uisp,n8n,chatwoot"`
	BaseURL        string            `json:"base_url" doc:"Endpoint the integration calls"`
	Credentials    map[string]string `json:"credentials" doc:"Secret bundle, values redacted"`
	TimeoutSeconds int               `json:"timeout_seconds" doc:"Outbound call deadline, 0 means system default"`
	UpdatedAt      string            `json:"updated_at" doc:"Last save timestamp (ISO 8601)"`
}

func toIntegrationResponse(cfg domain.IntegrationConfig) IntegrationResponse {
	return IntegrationResponse{
		Provider:       string(cfg.Provider),
		BaseURL:        cfg.BaseURL,
		Credentials:    cfg.Credentials,
		TimeoutSeconds: cfg.TimeoutSeconds,
		UpdatedAt:      cfg.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// StepResultResponse reports one outcome of a status change.
type StepResultResponse struct {
	OK     bool   `json:"ok" doc:"Whether this step succeeded"`
	Detail string `json:"detail,omitempty" doc:"Diagnostic detail"`
}

// StatusChangeResponse is the composite outcome of a status change. The
// local commit, the platform sync and the automation delivery are
// reported independently.
type StatusChangeResponse struct {
	Customer         CustomerResponse   `json:"customer" doc:"Customer after the local commit"`
	Local            StepResultResponse `json:"local" doc:"Local commit outcome"`
	ExternalPlatform StepResultResponse `json:"external_platform" doc:"UISP sync outcome"`
	Automation       StepResultResponse `json:"automation" doc:"Automation delivery outcome"`
}

// --- Tenants ---

type CreateTenantInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		NetworkName string `json:"network_name" minLength:"1" maxLength:"255" doc:"Logical network name"`
		ParentID    string `json:"parent_tenant_id,omitempty" required:"false" doc:"Existing parent company"`
	}
}

type CreateTenantOutput struct {
	Body TenantResponse
}

type GetTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type GetTenantOutput struct {
	Body TenantResponse
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

// --- Customers ---

type CreateCustomerInput struct {
	TenantID string `path:"tenantID" doc:"Owning tenant"`
	Body     struct {
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Subscriber name"`
		Email    string `json:"email" minLength:"3" doc:"Contact address"`
		PlanName string `json:"plan_name" minLength:"1" maxLength:"255" doc:"Subscribed plan"`
	}
}

type CreateCustomerOutput struct {
	Body CustomerResponse
}

type ListCustomersInput struct {
	TenantID string `path:"tenantID" doc:"Owning tenant"`
}

type ListCustomersOutput struct {
	Body []CustomerResponse
}

type GetCustomerInput struct {
	TenantID   string `path:"tenantID" doc:"Owning tenant"`
	CustomerID string `path:"customerID" doc:"Customer ID"`
}

type GetCustomerOutput struct {
	Body CustomerResponse
}

// --- Status change ---

type ChangeStatusInput struct {
	TenantID   string `path:"tenantID" doc:"Owning tenant"`
	CustomerID string `path:"customerID" doc:"Customer ID"`
	Body       struct {
		Status string `json:"status" doc:"Target service state" enum:"active,suspended"`
		Reason string `json:"reason,omitempty" required:"false" maxLength:"500" doc:"Operator note, forwarded downstream"`
	}
}

type ChangeStatusOutput struct {
	Body StatusChangeResponse
}

// --- Integrations ---

type SaveIntegrationInput struct {
	TenantID string `path:"tenantID" doc:"Owning tenant"`
	Provider string `path:"provider" doc:"Connected system" enum:"uisp,n8n,chatwoot"`
	Body     struct {
		BaseURL        string            `json:"base_url" minLength:"1" doc:"Endpoint to call"`
		Credentials    map[string]string `json:"credentials,omitempty" required:"false" doc:"Secret bundle"`
		TimeoutSeconds int               `json:"timeout_seconds,omitempty" required:"false" minimum:"0" maximum:"300" doc:"Outbound call deadline"`
	}
}

type SaveIntegrationOutput struct {
	Body IntegrationResponse
}

type ListIntegrationsInput struct {
	TenantID string `path:"tenantID" doc:"Owning tenant"`
}

type ListIntegrationsOutput struct {
	Body []IntegrationResponse
}

type TestIntegrationInput struct {
	TenantID string `path:"tenantID" doc:"Owning tenant"`
	Provider string `path:"provider" doc:"Connected system" enum:"uisp,n8n,chatwoot"`
}

type TestIntegrationOutput struct {
	Body StepResultResponse
}

// --- UISP proxy ---

type UISPSearchInput struct {
	TenantID string `path:"tenantID" doc:"Owning tenant"`
	Query    string `query:"query" doc:"Name, email or ID fragment"`
}

type ExternalCustomerResponse struct {
	ID    string `json:"id" doc:"UISP client ID"`
	Name  string `json:"name" doc:"Client name"`
	Email string `json:"email" doc:"Client login/email"`
}

type UISPSearchOutput struct {
	Body []ExternalCustomerResponse
}

type UISPServicesInput struct {
	TenantID   string `path:"tenantID" doc:"Owning tenant"`
	ExternalID string `path:"externalID" doc:"UISP client ID"`
}

type ServiceResponse struct {
	ID     string  `json:"id" doc:"Service ID"`
	Name   string  `json:"name" doc:"Service plan name"`
	Status string  `json:"status" doc:"Service state in UISP"`
	Price  float64 `json:"price" doc:"Recurring price"`
}

type UISPServicesOutput struct {
	Body []ServiceResponse
}

// --- Dashboard ---

type DashboardInput struct {
	TenantID string `path:"tenantID" doc:"Owning tenant"`
}

type DashboardResponse struct {
	TotalCustomers     int      `json:"total_customers" doc:"All customers"`
	ActiveCustomers    int      `json:"active_customers" doc:"Customers with active service"`
	SuspendedCustomers int      `json:"suspended_customers" doc:"Customers with suspended service"`
	Providers          []string `json:"providers" doc:"Configured integration providers"`
}

type DashboardOutput struct {
	Body DashboardResponse
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svcs Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants",
		Summary:     "Create a new tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *CreateTenantInput) (*CreateTenantOutput, error) {
		tenant, err := svcs.Tenants.Create(ctx, input.Body.Name, input.Body.NetworkName, input.Body.ParentID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetTenantOutput, error) {
		tenant, err := svcs.Tenants.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, _ *struct{}) (*ListTenantsOutput, error) {
		tenants, err := svcs.Tenants.List(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-customer",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{tenantID}/customers",
		Summary:     "Create a customer under a tenant",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *CreateCustomerInput) (*CreateCustomerOutput, error) {
		customer, err := svcs.Customers.Create(ctx, input.TenantID, input.Body.Name, input.Body.Email, input.Body.PlanName)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateCustomerOutput{Body: toCustomerResponse(customer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-customers",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenantID}/customers",
		Summary:     "List a tenant's customers",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *ListCustomersInput) (*ListCustomersOutput, error) {
		customers, err := svcs.Customers.ListByTenant(ctx, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]CustomerResponse, len(customers))
		for i, c := range customers {
			resp[i] = toCustomerResponse(c)
		}
		return &ListCustomersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-customer",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenantID}/customers/{customerID}",
		Summary:     "Get a customer by ID",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *GetCustomerInput) (*GetCustomerOutput, error) {
		customer, err := svcs.Customers.Get(ctx, input.TenantID, input.CustomerID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetCustomerOutput{Body: toCustomerResponse(customer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-customer-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{tenantID}/customers/{customerID}/status",
		Summary:     "Change a customer's service status",
		Description: "Commits the change locally, then syncs UISP and notifies the automation webhook. Downstream failure is reported per step, never as an HTTP error.",
		Tags:        []string{"Customers"},
	}, func(ctx context.Context, input *ChangeStatusInput) (*ChangeStatusOutput, error) {
		result, err := svcs.StatusChanges.Change(ctx, domain.StatusChangeRequest{
			TenantID:   input.TenantID,
			CustomerID: input.CustomerID,
			Target:     domain.Status(input.Body.Status),
			Reason:     input.Body.Reason,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ChangeStatusOutput{Body: StatusChangeResponse{
			Customer:         toCustomerResponse(result.Customer),
			Local:            StepResultResponse(result.Local),
			ExternalPlatform: StepResultResponse(result.ExternalPlatform),
			Automation:       StepResultResponse(result.Automation),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "save-integration",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{tenantID}/integrations/{provider}",
		Summary:     "Save a tenant's integration config",
		Description: "Upserts by (tenant, provider).",
		Tags:        []string{"Integrations"},
	}, func(ctx context.Context, input *SaveIntegrationInput) (*SaveIntegrationOutput, error) {
		provider, err := domain.ParseProvider(input.Provider)
		if err != nil {
			return nil, toHumaError(err)
		}
		cfg, err := svcs.Integrations.Save(ctx, input.TenantID, provider, input.Body.BaseURL, input.Body.Credentials, input.Body.TimeoutSeconds)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SaveIntegrationOutput{Body: toIntegrationResponse(cfg.Redacted())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-integrations",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenantID}/integrations",
		Summary:     "List a tenant's integration configs",
		Tags:        []string{"Integrations"},
	}, func(ctx context.Context, input *ListIntegrationsInput) (*ListIntegrationsOutput, error) {
		configs, err := svcs.Integrations.ListByTenant(ctx, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]IntegrationResponse, len(configs))
		for i, cfg := range configs {
			resp[i] = toIntegrationResponse(cfg)
		}
		return &ListIntegrationsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "test-integration",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{tenantID}/integrations/{provider}/test",
		Summary:     "Test a tenant's integration connectivity",
		Tags:        []string{"Integrations"},
	}, func(ctx context.Context, input *TestIntegrationInput) (*TestIntegrationOutput, error) {
		provider, err := domain.ParseProvider(input.Provider)
		if err != nil {
			return nil, toHumaError(err)
		}
		result, err := svcs.Integrations.Test(ctx, input.TenantID, provider)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TestIntegrationOutput{Body: StepResultResponse{OK: result.OK, Detail: result.Detail}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "uisp-search",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenantID}/uisp/search",
		Summary:     "Search the tenant's UISP customer directory",
		Tags:        []string{"UISP"},
	}, func(ctx context.Context, input *UISPSearchInput) (*UISPSearchOutput, error) {
		results, err := svcs.Platform.Search(ctx, input.TenantID, input.Query)
		if err != nil {
			return nil, toGatewayError(err)
		}

		resp := make([]ExternalCustomerResponse, len(results))
		for i, r := range results {
			resp[i] = ExternalCustomerResponse(r)
		}
		return &UISPSearchOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "uisp-list-services",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenantID}/uisp/customers/{externalID}/services",
		Summary:     "List a UISP customer's services",
		Tags:        []string{"UISP"},
	}, func(ctx context.Context, input *UISPServicesInput) (*UISPServicesOutput, error) {
		services, err := svcs.Platform.ListServices(ctx, input.TenantID, input.ExternalID)
		if err != nil {
			return nil, toGatewayError(err)
		}

		resp := make([]ServiceResponse, len(services))
		for i, s := range services {
			resp[i] = ServiceResponse(s)
		}
		return &UISPServicesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenantID}/dashboard",
		Summary:     "Aggregate customer and integration counts for a tenant",
		Tags:        []string{"Dashboard"},
	}, func(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
		summary, err := svcs.Dashboard.Summary(ctx, input.TenantID)
		if err != nil {
			return nil, toHumaError(err)
		}

		providers := make([]string, len(summary.Providers))
		for i, p := range summary.Providers {
			providers[i] = string(p)
		}
		return &DashboardOutput{Body: DashboardResponse{
			TotalCustomers:     summary.TotalCustomers,
			ActiveCustomers:    summary.ActiveCustomers,
			SuspendedCustomers: summary.SuspendedCustomers,
			Providers:          providers,
		}}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		return huma.Error404NotFound("tenant not found")
	case errors.Is(err, domain.ErrCustomerNotFound):
		return huma.Error404NotFound("customer not found")
	case errors.Is(err, domain.ErrIntegrationNotFound):
		return huma.Error404NotFound("integration not configured")
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return huma.Error422UnprocessableEntity(valErr.Error())
	}

	var cycleErr *domain.ParentCycleError
	if errors.As(err, &cycleErr) {
		return huma.Error409Conflict(cycleErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}

// toGatewayError translates UISP proxy errors: a missing config is the
// caller's 404, everything else is the remote side's fault.
func toGatewayError(err error) error {
	if errors.Is(err, domain.ErrIntegrationNotFound) {
		return huma.Error404NotFound("integration not configured")
	}
	return huma.Error502BadGateway(err.Error())
}

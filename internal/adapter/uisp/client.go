// Package uisp talks to the UISP CRM API, the external platform holding
// authoritative service state for a tenant's subscribers.
package uisp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rtkops/ispcrm/internal/domain"
)

// authHeader is the UISP CRM application-key header.
const authHeader = "X-Auth-App-Key"

// Compile-time checks: Client implements the outbound ports.
var (
	_ domain.PlatformAdapter  = (*Client)(nil)
	_ domain.ConnectionTester = (*Client)(nil)
)

// Client implements domain.PlatformAdapter against a per-tenant UISP
// instance. The endpoint and app key come from the tenant's saved config,
// resolved per call; nothing is cached so credential rotation takes
// effect immediately.
type Client struct {
	configs domain.IntegrationRepository
	client  *http.Client
}

// New creates a UISP client resolving per-tenant configs from the given
// repository. Timeouts are applied per call from each tenant's config.
func New(configs domain.IntegrationRepository) *Client {
	return &Client{
		configs: configs,
		client:  &http.Client{},
	}
}

// PushStatus mirrors a local status change into UISP. Missing config and
// remote failure are reported in the result, never raised: by the time
// this runs the local commit already happened.
func (c *Client) PushStatus(ctx context.Context, tenantID, customerID string, target domain.Status, reason string) domain.StepResult {
	cfg, err := c.configs.GetByProvider(ctx, tenantID, domain.ProviderUISP)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrationNotFound) {
			return domain.StepResult{OK: false, Detail: "not configured"}
		}
		return domain.StepResult{OK: false, Detail: err.Error()}
	}

	body, err := json.Marshal(map[string]string{
		"status": string(target),
		"note":   reason,
	})
	if err != nil {
		return domain.StepResult{OK: false, Detail: err.Error()}
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	endpoint := joinPath(cfg.BaseURL, "clients", customerID, "status")
	req, err := http.NewRequestWithContext(callCtx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.StepResult{OK: false, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authHeader, cfg.Credentials["app_key"])

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.StepResult{OK: false, Detail: callDetail(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.StepResult{OK: false, Detail: fmt.Sprintf("uisp returned %d", resp.StatusCode)}
	}

	return domain.StepResult{OK: true, Detail: "synced"}
}

// uispClient is the wire shape of a UISP client record.
type uispClient struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	Username    string `json:"username"`
}

// Search looks up customers in the tenant's UISP directory.
func (c *Client) Search(ctx context.Context, tenantID, query string) ([]domain.ExternalCustomerSummary, error) {
	cfg, err := c.configs.GetByProvider(ctx, tenantID, domain.ProviderUISP)
	if err != nil {
		return nil, err
	}

	endpoint := joinPath(cfg.BaseURL, "clients") + "?query=" + url.QueryEscape(query)
	var clients []uispClient
	if err := c.getJSON(ctx, cfg, endpoint, &clients); err != nil {
		return nil, err
	}

	out := make([]domain.ExternalCustomerSummary, len(clients))
	for i, cl := range clients {
		name := strings.TrimSpace(cl.FirstName + " " + cl.LastName)
		if name == "" {
			name = cl.CompanyName
		}
		out[i] = domain.ExternalCustomerSummary{
			ID:    strconv.FormatInt(cl.ID, 10),
			Name:  name,
			Email: cl.Username,
		}
	}
	return out, nil
}

// uispService is the wire shape of a UISP client service.
type uispService struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Status int     `json:"status"`
	Price  float64 `json:"price"`
}

// serviceStatusName maps UISP numeric service statuses to readable names.
func serviceStatusName(status int) string {
	switch status {
	case 0:
		return "prepared"
	case 1:
		return "active"
	case 2:
		return "ended"
	case 3:
		return "suspended"
	default:
		return "status " + strconv.Itoa(status)
	}
}

// ListServices lists the services subscribed by one UISP customer.
func (c *Client) ListServices(ctx context.Context, tenantID, externalCustomerID string) ([]domain.ServiceSummary, error) {
	cfg, err := c.configs.GetByProvider(ctx, tenantID, domain.ProviderUISP)
	if err != nil {
		return nil, err
	}

	endpoint := joinPath(cfg.BaseURL, "clients", externalCustomerID, "services")
	var services []uispService
	if err := c.getJSON(ctx, cfg, endpoint, &services); err != nil {
		return nil, err
	}

	out := make([]domain.ServiceSummary, len(services))
	for i, s := range services {
		out[i] = domain.ServiceSummary{
			ID:     strconv.FormatInt(s.ID, 10),
			Name:   s.Name,
			Status: serviceStatusName(s.Status),
			Price:  s.Price,
		}
	}
	return out, nil
}

// Test performs an authenticated no-op read against the configured
// instance. Remote failure lands in the result, not in an error.
func (c *Client) Test(ctx context.Context, cfg domain.IntegrationConfig) domain.ConnectionTestResult {
	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	endpoint := joinPath(cfg.BaseURL, "clients") + "?limit=1"
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ConnectionTestResult{OK: false, Detail: err.Error()}
	}
	req.Header.Set(authHeader, cfg.Credentials["app_key"])

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ConnectionTestResult{OK: false, Detail: callDetail(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.ConnectionTestResult{OK: false, Detail: fmt.Sprintf("uisp returned %d", resp.StatusCode)}
	}

	return domain.ConnectionTestResult{OK: true}
}

// getJSON performs an authenticated GET bounded by the config timeout and
// decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, cfg domain.IntegrationConfig, endpoint string, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating uisp request: %w", err)
	}
	req.Header.Set(authHeader, cfg.Credentials["app_key"])

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling uisp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("uisp returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding uisp response: %w", err)
	}
	return nil
}

// joinPath appends segments to a base URL without doubling slashes.
func joinPath(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	for _, s := range segments {
		out += "/" + s
	}
	return out
}

// callDetail flattens a transport error into a result detail, collapsing
// deadline expiry into the fixed "timeout" marker.
func callDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}

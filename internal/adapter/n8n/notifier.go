// Package n8n delivers customer lifecycle events to a tenant's workflow
// automation webhook.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rtkops/ispcrm/internal/domain"
)

// eventName identifies the lifecycle event carried by every payload.
const eventName = "customer.status_changed"

// Compile-time checks: Notifier implements the outbound ports.
var (
	_ domain.AutomationNotifier = (*Notifier)(nil)
	_ domain.ConnectionTester   = (*Notifier)(nil)
)

// Notifier implements domain.AutomationNotifier by POSTing the event to
// the tenant's configured webhook URL. Delivery is best effort: the
// status transition is already committed when this runs.
type Notifier struct {
	configs domain.IntegrationRepository
	client  *http.Client
}

// New creates a notifier resolving per-tenant configs from the given
// repository.
func New(configs domain.IntegrationRepository) *Notifier {
	return &Notifier{
		configs: configs,
		client:  &http.Client{},
	}
}

// payload is the wire shape of a delivered event.
type payload struct {
	Event          string `json:"event"`
	TenantID       string `json:"tenant_id"`
	CustomerID     string `json:"customer_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
}

// Notify posts the event to the webhook. Missing config and remote
// failure are reported in the result, never raised.
func (n *Notifier) Notify(ctx context.Context, tenantID string, event domain.AutomationEvent) domain.StepResult {
	cfg, err := n.configs.GetByProvider(ctx, tenantID, domain.ProviderN8N)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrationNotFound) {
			return domain.StepResult{OK: false, Detail: "not configured"}
		}
		return domain.StepResult{OK: false, Detail: err.Error()}
	}

	body, err := json.Marshal(payload{
		Event:          eventName,
		TenantID:       tenantID,
		CustomerID:     event.CustomerID,
		PreviousStatus: string(event.PreviousStatus),
		Status:         string(event.NewStatus),
		Reason:         event.Reason,
	})
	if err != nil {
		return domain.StepResult{OK: false, Detail: err.Error()}
	}

	status, err := n.post(ctx, cfg, body)
	if err != nil {
		return domain.StepResult{OK: false, Detail: callDetail(err)}
	}
	if status < 200 || status > 299 {
		return domain.StepResult{OK: false, Detail: fmt.Sprintf("webhook returned %d", status)}
	}

	return domain.StepResult{OK: true, Detail: "delivered"}
}

// Test posts a minimal test event to the webhook and reports whether the
// endpoint accepted it.
func (n *Notifier) Test(ctx context.Context, cfg domain.IntegrationConfig) domain.ConnectionTestResult {
	body, err := json.Marshal(map[string]string{"event": "connection.test"})
	if err != nil {
		return domain.ConnectionTestResult{OK: false, Detail: err.Error()}
	}

	status, err := n.post(ctx, cfg, body)
	if err != nil {
		return domain.ConnectionTestResult{OK: false, Detail: callDetail(err)}
	}
	if status < 200 || status > 299 {
		return domain.ConnectionTestResult{OK: false, Detail: fmt.Sprintf("webhook returned %d", status)}
	}

	return domain.ConnectionTestResult{OK: true}
}

// post sends a JSON body to the webhook URL, bounded by the config
// timeout, and returns the response status code. The base URL is the
// webhook itself; n8n routes on it directly.
func (n *Notifier) post(ctx context.Context, cfg domain.IntegrationConfig, body []byte) (int, error) {
	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := cfg.Credentials["token"]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return resp.StatusCode, nil
}

// callDetail flattens a transport error into a result detail, collapsing
// deadline expiry into the fixed "timeout" marker.
func callDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}

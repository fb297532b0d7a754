// Package chatwoot verifies connectivity to a tenant's Chatwoot
// messaging instance. Messaging itself is driven by automation workflows
// downstream; this service only holds and tests the credentials.
package chatwoot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rtkops/ispcrm/internal/domain"
)

// Compile-time check: Client implements domain.ConnectionTester.
var _ domain.ConnectionTester = (*Client)(nil)

// Client performs authenticated round trips against Chatwoot.
type Client struct {
	client *http.Client
}

// New creates a Chatwoot client.
func New() *Client {
	return &Client{client: &http.Client{}}
}

// Test fetches the token owner's profile, the cheapest authenticated
// read Chatwoot offers. Remote failure lands in the result.
func (c *Client) Test(ctx context.Context, cfg domain.IntegrationConfig) domain.ConnectionTestResult {
	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/api/v1/profile"
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ConnectionTestResult{OK: false, Detail: err.Error()}
	}
	req.Header.Set("api_access_token", cfg.Credentials["api_access_token"])

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ConnectionTestResult{OK: false, Detail: "timeout"}
		}
		return domain.ConnectionTestResult{OK: false, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.ConnectionTestResult{OK: false, Detail: fmt.Sprintf("chatwoot returned %d", resp.StatusCode)}
	}

	return domain.ConnectionTestResult{OK: true}
}

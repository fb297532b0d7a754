package domain

import "time"

// Provider identifies a third-party system a tenant can connect.
type Provider string

const (
	// ProviderUISP is the external ISP/billing platform holding
	// authoritative service state.
	ProviderUISP Provider = "uisp"
	// ProviderN8N is the workflow-automation receiver notified on
	// customer lifecycle events.
	ProviderN8N Provider = "n8n"
	// ProviderChatwoot is the customer-messaging platform. Only its
	// connection test is exercised by this service.
	ProviderChatwoot Provider = "chatwoot"
)

// ParseProvider validates a raw provider value.
func ParseProvider(raw string) (Provider, error) {
	switch Provider(raw) {
	case ProviderUISP, ProviderN8N, ProviderChatwoot:
		return Provider(raw), nil
	default:
		return "", &ValidationError{Field: "provider", Reason: "must be \"uisp\", \"n8n\" or \"chatwoot\""}
	}
}

// DefaultTimeout bounds outbound calls when a config does not set one.
const DefaultTimeout = 10 * time.Second

// IntegrationConfig holds a tenant's connection settings for one provider.
// At most one config exists per (tenant, provider); saves upsert.
type IntegrationConfig struct {
	TenantID       string
	Provider       Provider
	BaseURL        string
	Credentials    map[string]string
	TimeoutSeconds int
	UpdatedAt      time.Time
}

// Timeout returns the configured call deadline, falling back to the
// system default.
func (c IntegrationConfig) Timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// Redacted returns a copy safe for outward representation: credential
// values are blanked, keys are kept so operators can see what is set.
func (c IntegrationConfig) Redacted() IntegrationConfig {
	out := c
	out.Credentials = make(map[string]string, len(c.Credentials))
	for k := range c.Credentials {
		out.Credentials[k] = "********"
	}
	return out
}

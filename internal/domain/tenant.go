package domain

import "time"

// Tenant is an operator company owning its own customers and integration
// credentials. The parent reference builds a display-only hierarchy; it
// carries no permission semantics.
type Tenant struct {
	ID          string
	Name        string
	NetworkName string
	ParentID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTenant creates a tenant. ParentID may be empty for a root company.
func NewTenant(id, name, networkName, parentID string) Tenant {
	now := time.Now().UTC()
	return Tenant{
		ID:          id,
		Name:        name,
		NetworkName: networkName,
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

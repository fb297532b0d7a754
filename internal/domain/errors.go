package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrIntegrationNotFound = errors.New("integration not configured")
)

// ValidationError is returned when a field in a request is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParentCycleError is returned when a tenant's parent reference would
// close a loop in the company hierarchy.
type ParentCycleError struct {
	TenantID string
	ParentID string
}

func (e *ParentCycleError) Error() string {
	return fmt.Sprintf("parent %q would create a cycle for tenant %q", e.ParentID, e.TenantID)
}

// TransitionError is returned when a status change is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from status %q", e.Event, e.Current)
}

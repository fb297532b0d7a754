package domain

import (
	"strings"
	"time"
)

// Status represents a customer's service state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusActive, StatusSuspended:
		return Status(raw), nil
	default:
		return "", &ValidationError{Field: "status", Reason: "must be \"active\" or \"suspended\""}
	}
}

// Event represents an action that triggers a status transition.
type Event string

const (
	EventSuspend    Event = "suspend"
	EventReactivate Event = "reactivate"
)

// EventForStatus maps a requested target status to the transition event
// that drives it.
func EventForStatus(target Status) Event {
	if target == StatusSuspended {
		return EventSuspend
	}
	return EventReactivate
}

// Transition defines a valid state change: an event moves a customer from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid customer status changes. The machine is
// symmetric between the two states, and re-applying the current state is a
// valid no-op so repeated requests succeed. This is domain knowledge
// consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventSuspend, Src: StatusActive, Dst: StatusSuspended},
	{Event: EventSuspend, Src: StatusSuspended, Dst: StatusSuspended},
	{Event: EventReactivate, Src: StatusSuspended, Dst: StatusActive},
	{Event: EventReactivate, Src: StatusActive, Dst: StatusActive},
}

// Customer is an end subscriber of a tenant's network service. A customer
// belongs to exactly one tenant and is only ever addressed through it.
type Customer struct {
	ID        string
	TenantID  string
	Name      string
	Email     string
	PlanName  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCustomer creates a customer in the initial "active" state.
func NewCustomer(id, tenantID, name, email, planName string) Customer {
	now := time.Now().UTC()
	return Customer{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		PlanName:  planName,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidEmail does a minimal shape check: one "@" with a dot in the domain.
// Anything stricter belongs to the mail system, not the CRM.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	host := email[at+1:]
	dot := strings.Index(host, ".")
	return dot > 0 && dot < len(host)-1 && !strings.Contains(host, "@")
}

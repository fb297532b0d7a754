package domain

// StatusChangeRequest asks for one customer's status to move to Target.
// It lives only for the duration of a single orchestration call.
type StatusChangeRequest struct {
	TenantID   string
	CustomerID string
	Target     Status
	Reason     string
}

// StepResult reports one outcome of a status change: the local commit,
// the external platform sync, or the automation delivery. Downstream
// failure is data here, not an error.
type StepResult struct {
	OK     bool
	Detail string
}

// StatusChangeResult is the composite outcome of a status change. All
// three fields are always populated, even when a step was skipped.
type StatusChangeResult struct {
	Customer         Customer
	Local            StepResult
	ExternalPlatform StepResult
	Automation       StepResult
}

// AutomationEvent describes a committed status change for delivery to a
// tenant's automation endpoint.
type AutomationEvent struct {
	CustomerID     string
	PreviousStatus Status
	NewStatus      Status
	Reason         string
}

// ConnectionTestResult reports a lightweight round trip against a
// provider. Remote failure is reported in the result, never raised.
type ConnectionTestResult struct {
	OK     bool
	Detail string
}

// ExternalCustomerSummary is a read-only view of a customer record in
// the external platform's directory.
type ExternalCustomerSummary struct {
	ID    string
	Name  string
	Email string
}

// ServiceSummary is a read-only view of one service subscribed by an
// external platform customer.
type ServiceSummary struct {
	ID     string
	Name   string
	Status string
	Price  float64
}

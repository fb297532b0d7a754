package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/rtkops/ispcrm/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// StatusChangeJobArgs carries a committed status change for asynchronous
// processing. River serializes this as JSON into its job queue table. It
// includes a snapshot of the customer at commit time, so the worker never
// needs to query the database.
type StatusChangeJobArgs struct {
	Event          string `json:"event"`
	TenantID       string `json:"tenant_id"`
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	PlanName       string `json:"plan_name"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (StatusChangeJobArgs) Kind() string { return "customer.status_changed" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a status change as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, customer domain.Customer, previous domain.Status, reason string) error {
	_, err := p.client.Insert(ctx, StatusChangeJobArgs{
		Event:          string(event),
		TenantID:       customer.TenantID,
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		PlanName:       customer.PlanName,
		PreviousStatus: string(previous),
		Status:         string(customer.Status),
		Reason:         reason,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing status change job: %w", err)
	}
	return nil
}

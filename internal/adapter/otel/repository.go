package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rtkops/ispcrm/internal/domain"
)

const tracerName = "github.com/rtkops/ispcrm/internal/adapter/otel"

// TracingCustomerRepository wraps a domain.CustomerRepository with
// OpenTelemetry tracing. Each method creates a span with semantic
// attributes and records errors. This is the hot path of the status
// change orchestration, so it gets the instrumentation.
type TracingCustomerRepository struct {
	next   domain.CustomerRepository
	tracer trace.Tracer
}

// Compile-time check: TracingCustomerRepository implements domain.CustomerRepository.
var _ domain.CustomerRepository = (*TracingCustomerRepository)(nil)

// NewTracingCustomerRepository creates a tracing decorator around the
// given repository.
func NewTracingCustomerRepository(next domain.CustomerRepository) *TracingCustomerRepository {
	return &TracingCustomerRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingCustomerRepository) Create(ctx context.Context, customer domain.Customer) error {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.Create",
		trace.WithAttributes(
			attribute.String("tenant.id", customer.TenantID),
			attribute.String("customer.id", customer.ID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, customer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingCustomerRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.GetByID",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("customer.id", id),
		),
	)
	defer span.End()

	customer, err := r.next.GetByID(ctx, tenantID, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return customer, err
}

func (r *TracingCustomerRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.ListByTenant",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	customers, err := r.next.ListByTenant(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(customers)))
	}
	return customers, err
}

func (r *TracingCustomerRepository) SetStatus(ctx context.Context, tenantID, id string, status domain.Status) (domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "CustomerRepository.SetStatus",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("customer.id", id),
			attribute.String("customer.status", string(status)),
		),
	)
	defer span.End()

	customer, err := r.next.SetStatus(ctx, tenantID, id, status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return customer, err
}

package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rtkops/ispcrm/internal/domain"
)

// TracingPlatformAdapter wraps a domain.PlatformAdapter with OpenTelemetry
// tracing. PushStatus never returns an error, so the span records the
// result's ok/detail pair instead of an error status.
type TracingPlatformAdapter struct {
	next   domain.PlatformAdapter
	tracer trace.Tracer
}

// Compile-time check: TracingPlatformAdapter implements domain.PlatformAdapter.
var _ domain.PlatformAdapter = (*TracingPlatformAdapter)(nil)

// NewTracingPlatformAdapter creates a tracing decorator around the given
// adapter.
func NewTracingPlatformAdapter(next domain.PlatformAdapter) *TracingPlatformAdapter {
	return &TracingPlatformAdapter{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (a *TracingPlatformAdapter) PushStatus(ctx context.Context, tenantID, customerID string, target domain.Status, reason string) domain.StepResult {
	ctx, span := a.tracer.Start(ctx, "PlatformAdapter.PushStatus",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("customer.id", customerID),
			attribute.String("customer.status", string(target)),
		),
	)
	defer span.End()

	result := a.next.PushStatus(ctx, tenantID, customerID, target, reason)
	span.SetAttributes(
		attribute.Bool("push.ok", result.OK),
		attribute.String("push.detail", result.Detail),
	)
	return result
}

func (a *TracingPlatformAdapter) Search(ctx context.Context, tenantID, query string) ([]domain.ExternalCustomerSummary, error) {
	ctx, span := a.tracer.Start(ctx, "PlatformAdapter.Search",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	results, err := a.next.Search(ctx, tenantID, query)
	if err != nil {
		span.RecordError(err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(results)))
	}
	return results, err
}

func (a *TracingPlatformAdapter) ListServices(ctx context.Context, tenantID, externalCustomerID string) ([]domain.ServiceSummary, error) {
	ctx, span := a.tracer.Start(ctx, "PlatformAdapter.ListServices",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("external_customer.id", externalCustomerID),
		),
	)
	defer span.End()

	services, err := a.next.ListServices(ctx, tenantID, externalCustomerID)
	if err != nil {
		span.RecordError(err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(services)))
	}
	return services, err
}

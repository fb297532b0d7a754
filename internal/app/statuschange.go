package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rtkops/ispcrm/internal/domain"
)

// StatusChangeService coordinates a customer status transition: local
// commit first, then fan-out to the external platform and the automation
// endpoint. The local record is the source of truth; downstream systems
// are best-effort and their outcomes are reported, never fatal.
type StatusChangeService struct {
	tenants    domain.TenantRepository
	customers  domain.CustomerRepository
	validator  domain.TransitionValidator
	platform   domain.PlatformAdapter
	automation domain.AutomationNotifier
	publisher  domain.EventPublisher
}

// NewStatusChangeService creates the orchestrator with the given adapters.
func NewStatusChangeService(
	tenants domain.TenantRepository,
	customers domain.CustomerRepository,
	validator domain.TransitionValidator,
	platform domain.PlatformAdapter,
	automation domain.AutomationNotifier,
	publisher domain.EventPublisher,
) *StatusChangeService {
	return &StatusChangeService{
		tenants:    tenants,
		customers:  customers,
		validator:  validator,
		platform:   platform,
		automation: automation,
		publisher:  publisher,
	}
}

// Change applies one status transition. Tenant, customer and target are
// resolved and validated before anything mutates; after the local commit
// the two downstream calls run concurrently and their results are joined
// into the composite outcome.
func (s *StatusChangeService) Change(ctx context.Context, req domain.StatusChangeRequest) (domain.StatusChangeResult, error) {
	if _, err := s.tenants.GetByID(ctx, req.TenantID); err != nil {
		return domain.StatusChangeResult{}, err
	}

	customer, err := s.customers.GetByID(ctx, req.TenantID, req.CustomerID)
	if err != nil {
		return domain.StatusChangeResult{}, err
	}

	target, err := domain.ParseStatus(string(req.Target))
	if err != nil {
		return domain.StatusChangeResult{}, err
	}

	event := domain.EventForStatus(target)
	previous := customer.Status

	if _, err := s.validator.Apply(ctx, previous, event); err != nil {
		return domain.StatusChangeResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.StatusChangeResult{}, err
	}

	// Durable commit point. Everything after this reports, never aborts.
	updated, err := s.customers.SetStatus(ctx, req.TenantID, req.CustomerID, target)
	if err != nil {
		return domain.StatusChangeResult{}, err
	}

	var (
		wg            sync.WaitGroup
		platformRes   domain.StepResult
		automationRes domain.StepResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		platformRes = s.platform.PushStatus(ctx, req.TenantID, req.CustomerID, target, req.Reason)
	}()
	go func() {
		defer wg.Done()
		automationRes = s.automation.Notify(ctx, req.TenantID, domain.AutomationEvent{
			CustomerID:     req.CustomerID,
			PreviousStatus: previous,
			NewStatus:      target,
			Reason:         req.Reason,
		})
	}()
	wg.Wait()

	if err := s.publisher.Publish(ctx, event, updated, previous, req.Reason); err != nil {
		// The commit already happened; the audit trail must not undo it.
		slog.WarnContext(ctx, "publishing status change event failed",
			"tenant_id", req.TenantID,
			"customer_id", req.CustomerID,
			"error", err,
		)
	}

	return domain.StatusChangeResult{
		Customer:         updated,
		Local:            domain.StepResult{OK: true},
		ExternalPlatform: platformRes,
		Automation:       automationRes,
	}, nil
}

package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rtkops/ispcrm/internal/app"
	"github.com/rtkops/ispcrm/internal/domain"
)

type statusChangeFixture struct {
	tenants   *mockTenantRepo
	customers *mockCustomerRepo
	platform  *mockPlatform
	notifier  *mockNotifier
	publisher *mockPublisher
	svc       *app.StatusChangeService
}

func newStatusChangeFixture(t *testing.T) *statusChangeFixture {
	t.Helper()
	f := &statusChangeFixture{
		tenants:   newMockTenantRepo(),
		customers: newMockCustomerRepo(),
		platform:  &mockPlatform{result: domain.StepResult{OK: true, Detail: "synced"}},
		notifier:  &mockNotifier{result: domain.StepResult{OK: true, Detail: "delivered"}},
		publisher: &mockPublisher{},
	}
	f.svc = app.NewStatusChangeService(f.tenants, f.customers, tableValidator{}, f.platform, f.notifier, f.publisher)
	seedTenant(t, f.tenants, "t1")
	f.customers.customers[customerKey("t1", "c1")] = domain.Customer{
		ID: "c1", TenantID: "t1", Name: "Jane", Email: "jane@example.com",
		PlanName: "Fiber 100", Status: domain.StatusActive,
	}
	return f
}

func TestStatusChangeService_Suspend(t *testing.T) {
	f := newStatusChangeFixture(t)

	result, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
		TenantID:   "t1",
		CustomerID: "c1",
		Target:     domain.StatusSuspended,
		Reason:     "non-payment",
	})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}

	if result.Customer.Status != domain.StatusSuspended {
		t.Errorf("Customer.Status = %q, want %q", result.Customer.Status, domain.StatusSuspended)
	}
	if !result.Local.OK {
		t.Error("Local.OK = false, want true")
	}
	if !result.ExternalPlatform.OK || result.ExternalPlatform.Detail != "synced" {
		t.Errorf("ExternalPlatform = %+v", result.ExternalPlatform)
	}
	if !result.Automation.OK || result.Automation.Detail != "delivered" {
		t.Errorf("Automation = %+v", result.Automation)
	}

	stored, _ := f.customers.GetByID(context.Background(), "t1", "c1")
	if stored.Status != domain.StatusSuspended {
		t.Errorf("stored status = %q, want suspended", stored.Status)
	}

	if len(f.platform.calls) != 1 {
		t.Fatalf("platform calls = %d, want 1", len(f.platform.calls))
	}
	call := f.platform.calls[0]
	if call.target != domain.StatusSuspended || call.reason != "non-payment" {
		t.Errorf("platform call = %+v", call)
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("notifier events = %d, want 1", len(f.notifier.events))
	}
	event := f.notifier.events[0]
	if event.PreviousStatus != domain.StatusActive || event.NewStatus != domain.StatusSuspended {
		t.Errorf("automation event = %+v", event)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(f.publisher.events))
	}
	if f.publisher.events[0].event != domain.EventSuspend {
		t.Errorf("published event = %q, want %q", f.publisher.events[0].event, domain.EventSuspend)
	}
}

func TestStatusChangeService_Reactivate(t *testing.T) {
	f := newStatusChangeFixture(t)
	f.customers.customers[customerKey("t1", "c1")] = domain.Customer{
		ID: "c1", TenantID: "t1", Status: domain.StatusSuspended,
	}

	result, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
		TenantID: "t1", CustomerID: "c1", Target: domain.StatusActive,
	})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	if result.Customer.Status != domain.StatusActive {
		t.Errorf("Status = %q, want active", result.Customer.Status)
	}
}

func TestStatusChangeService_Repeat_IsNoOp(t *testing.T) {
	f := newStatusChangeFixture(t)

	for i := 0; i < 2; i++ {
		result, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
			TenantID: "t1", CustomerID: "c1", Target: domain.StatusSuspended, Reason: "non-payment",
		})
		if err != nil {
			t.Fatalf("Change #%d: %v", i+1, err)
		}
		if result.Customer.Status != domain.StatusSuspended {
			t.Errorf("Change #%d: status = %q, want suspended", i+1, result.Customer.Status)
		}
	}

	// Downstream systems still hear about the repeat; only locally it is
	// indistinguishable from a single suspension.
	if len(f.platform.calls) != 2 {
		t.Errorf("platform calls = %d, want 2", len(f.platform.calls))
	}
	second := f.notifier.events[1]
	if second.PreviousStatus != domain.StatusSuspended {
		t.Errorf("repeat PreviousStatus = %q, want suspended", second.PreviousStatus)
	}
}

func TestStatusChangeService_UnknownTenant(t *testing.T) {
	f := newStatusChangeFixture(t)

	_, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
		TenantID: "ghost", CustomerID: "c1", Target: domain.StatusSuspended,
	})
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
	assertNoSideEffects(t, f)
}

func TestStatusChangeService_CrossTenantCustomer(t *testing.T) {
	f := newStatusChangeFixture(t)
	seedTenant(t, f.tenants, "t2")

	_, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
		TenantID: "t2", CustomerID: "c1", Target: domain.StatusSuspended,
	})
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	assertNoSideEffects(t, f)
}

func TestStatusChangeService_UnknownTarget(t *testing.T) {
	f := newStatusChangeFixture(t)

	_, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
		TenantID: "t1", CustomerID: "c1", Target: domain.Status("archived"),
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	assertNoSideEffects(t, f)
}

func TestStatusChangeService_DownstreamFailureDoesNotAbort(t *testing.T) {
	f := newStatusChangeFixture(t)
	f.platform.result = domain.StepResult{OK: false, Detail: "not configured"}
	f.notifier.result = domain.StepResult{OK: false, Detail: "timeout"}

	result, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
		TenantID: "t1", CustomerID: "c1", Target: domain.StatusSuspended,
	})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}

	if !result.Local.OK {
		t.Error("Local.OK = false, want true despite downstream failures")
	}
	if result.ExternalPlatform.OK || result.ExternalPlatform.Detail != "not configured" {
		t.Errorf("ExternalPlatform = %+v", result.ExternalPlatform)
	}
	if result.Automation.OK || result.Automation.Detail != "timeout" {
		t.Errorf("Automation = %+v", result.Automation)
	}

	stored, _ := f.customers.GetByID(context.Background(), "t1", "c1")
	if stored.Status != domain.StatusSuspended {
		t.Error("local commit must survive downstream failures")
	}
}

func TestStatusChangeService_PublishFailureDoesNotAbort(t *testing.T) {
	f := newStatusChangeFixture(t)
	f.publisher.err = errors.New("queue unavailable")

	result, err := f.svc.Change(context.Background(), domain.StatusChangeRequest{
		TenantID: "t1", CustomerID: "c1", Target: domain.StatusSuspended,
	})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	if !result.Local.OK {
		t.Error("Local.OK = false, want true")
	}
}

func TestStatusChangeService_CancelledContextAborts(t *testing.T) {
	f := newStatusChangeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Change(ctx, domain.StatusChangeRequest{
		TenantID: "t1", CustomerID: "c1", Target: domain.StatusSuspended,
	})
	if err == nil {
		t.Fatal("expected an error from the cancelled context")
	}

	stored, _ := f.customers.GetByID(context.Background(), "t1", "c1")
	if stored.Status != domain.StatusActive {
		t.Error("cancelled request must not mutate the customer")
	}
}

func assertNoSideEffects(t *testing.T, f *statusChangeFixture) {
	t.Helper()
	if len(f.platform.calls) != 0 {
		t.Errorf("platform calls = %d, want 0", len(f.platform.calls))
	}
	if len(f.notifier.events) != 0 {
		t.Errorf("notifier events = %d, want 0", len(f.notifier.events))
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("published events = %d, want 0", len(f.publisher.events))
	}
	stored, err := f.customers.GetByID(context.Background(), "t1", "c1")
	if err == nil && stored.Status != domain.StatusActive {
		t.Errorf("customer mutated to %q", stored.Status)
	}
}

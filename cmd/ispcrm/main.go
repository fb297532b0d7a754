package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/rtkops/ispcrm/internal/adapter/chatwoot"
	"github.com/rtkops/ispcrm/internal/adapter/fsm"
	"github.com/rtkops/ispcrm/internal/adapter/n8n"
	"github.com/rtkops/ispcrm/internal/adapter/otel"
	riveradapter "github.com/rtkops/ispcrm/internal/adapter/river"
	"github.com/rtkops/ispcrm/internal/adapter/sqlite"
	"github.com/rtkops/ispcrm/internal/adapter/uisp"
	"github.com/rtkops/ispcrm/internal/app"
	"github.com/rtkops/ispcrm/internal/domain"

	handler "github.com/rtkops/ispcrm/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ispcrm: %v", err)
	}
}

func run() error {
	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "ispcrm.db")

	ctx := context.Background()

	// --- Telemetry ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	defer store.Close()

	riverClient, err := riveradapter.Setup(ctx, store.DB())
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}

	tenants := store.Tenants()
	customers := otel.NewTracingCustomerRepository(store.Customers())
	integrations := store.Integrations()

	platform := otel.NewTracingPlatformAdapter(uisp.New(integrations))
	notifier := n8n.New(integrations)
	publisher := riveradapter.NewPublisher(riverClient)

	// --- Application ---
	svcs := handler.Services{
		Tenants:   app.NewTenantService(tenants),
		Customers: app.NewCustomerService(tenants, customers),
		Integrations: app.NewIntegrationService(tenants, integrations, map[domain.Provider]domain.ConnectionTester{
			domain.ProviderUISP:     uisp.New(integrations),
			domain.ProviderN8N:      notifier,
			domain.ProviderChatwoot: chatwoot.New(),
		}),
		StatusChanges: app.NewStatusChangeService(tenants, customers, fsm.New(), platform, notifier, publisher),
		Dashboard:     app.NewDashboardService(tenants, customers, integrations),
		Platform:      platform,
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(otelchi.Middleware("ispcrm", otelchi.WithChiRoutes(router)))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	api := humachi.New(router, huma.DefaultConfig("ispcrm", "0.1.0"))
	handler.Register(api, svcs)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("ispcrm listening on :%s", port)
		log.Printf("API docs: http://localhost:%s/docs", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		log.Printf("river stop error: %v", err)
	}

	log.Println("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

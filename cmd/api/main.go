// cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"ecopass/internal/identity"
	"ecopass/internal/ledger"
	"ecopass/internal/passport"
	"ecopass/internal/platform/config"
	"ecopass/internal/platform/metrics"
	"ecopass/internal/platform/telemetry"
)

func main() {
	cfg := config.FromEnv()
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, "ecopass-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	historyLedger := ledger.New(db)
	store := passport.NewPostgresStore(db, historyLedger)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	directory := identity.NewPostgresDirectory(db)
	if err := directory.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure profiles schema: %v", err)
	}

	m := metrics.New()
	svc := passport.NewService(store)
	passportHandler := passport.NewHandler(svc, m)
	identityHandler := identity.NewHandler(directory)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Get("/ledger", ledger.ExportHandler(historyLedger))
	router.Mount("/identity", identityHandler.Routes())
	router.Mount("/", passportHandler.Routes())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("Starting ecopass API on %s", cfg.Addr)
	log.Fatal(server.ListenAndServe())
}

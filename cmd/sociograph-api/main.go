package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"sociograph/internal/config"
	server "sociograph/internal/http"
	"sociograph/internal/jobs"
	"sociograph/internal/migrate"
	"sociograph/internal/provider"
	"sociograph/internal/store"
	"sociograph/internal/transform"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	role := flag.String("role", "all", "process role: api|worker|all")
	flag.Parse()

	cfg := config.Load(*configPath)

	// Run migrations on a short-lived connection
	if err := migrate.Run(cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// Create a shared *sql.DB with pooling for the Store
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db failed: %v", err)
	}
	// Basic pool settings; adjust as needed
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	st := store.New(db)

	// Ensure initial admin API key if configured
	if cfg.Auth.Enabled && cfg.Auth.InitialAdminKey != "" {
		if _, err := st.EnsureAdminAPIKey(context.Background(), cfg.Auth.InitialAdminKey, "initial-admin"); err != nil {
			log.Fatalf("ensure admin api key failed: %v", err)
		}
	}

	// Set up logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	gateways := map[string]provider.Gateway{
		"apify":   provider.NewApify(cfg.Providers.Apify),
		"cluster": provider.NewCluster(cfg.Providers.Cluster),
	}

	orch := jobs.NewOrchestrator(cfg, st, gateways, logger)
	tr := transform.New(st, logger)
	orch.SetTransform(func(ctx context.Context, jobID uuid.UUID) error {
		_, err := tr.TransformJob(ctx, jobID)
		return err
	})
	runner := jobs.NewRunner(cfg, st, orch, logger)

	rootCtx := context.Background()

	switch *role {
	case "api":
		// API-only: jobs start via the HTTP endpoint, background
		// claiming is left to a worker process.
		s := server.NewServer(cfg, st, orch, tr, logger)
		if err := s.Listen(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	case "worker":
		// Worker-only: claim pending jobs and block.
		runner.Start(rootCtx)
	case "all":
		// Default: run both API and worker in one process.
		go runner.Start(rootCtx)
		s := server.NewServer(cfg, st, orch, tr, logger)
		if err := s.Listen(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	default:
		log.Fatalf("invalid role: %s (expected api|worker|all)", *role)
	}
}

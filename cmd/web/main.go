package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/manchuscript/internal/anthropic"
	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/db/postgres"
	"github.com/jusunglee/manchuscript/internal/db/sqlite"
	"github.com/jusunglee/manchuscript/internal/gloss"
	"github.com/jusunglee/manchuscript/internal/google"
	"github.com/jusunglee/manchuscript/internal/llm"
	"github.com/jusunglee/manchuscript/internal/logger"
	"github.com/jusunglee/manchuscript/internal/metrics"
	"github.com/jusunglee/manchuscript/internal/web"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("manchuscript-web")

	var (
		port            = fs.Int64Long("port", 3000, "HTTP server port")
		databaseURL     = fs.StringLong("database-url", "manchuscript.db", "PostgreSQL URL (postgres://...) or SQLite file path")
		llmProvider     = fs.StringEnumLong("llm-provider", "LLM provider for word glossing", "none", "anthropic", "google")
		llmModel        = fs.StringLong("llm-model", "", "LLM model name (provider default when empty)")
		anthropicAPIKey = fs.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey    = fs.StringLong("google-api-key", "", "Google API key")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(errors.New("main exited"))

	repo, err := openRepository(ctx, log, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	var glosser *gloss.Glosser
	if *llmProvider != "none" {
		llmClient, model, err := newLLMClient(ctx, *llmProvider, *llmModel, *anthropicAPIKey, *googleAPIKey)
		if err != nil {
			return err
		}
		glosser = gloss.NewGlosser(llmClient, repo, *llmProvider, model)
		log.InfoContext(ctx, "glossing enabled", "provider", *llmProvider, "model", model)
	}

	router := web.NewRouter(repo, log, glosser)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// openRepository picks the backend from the URL shape: postgres:// URLs get
// the pooled pgx backend, anything else is treated as a SQLite file path.
func openRepository(ctx context.Context, log *slog.Logger, databaseURL string) (db.Repository, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		repo, err := postgres.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		log.InfoContext(ctx, "connected to PostgreSQL database")

		// Periodically export pgxpool stats as Prometheus gauges
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s := repo.PoolStats()
					metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
					metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
					metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
					metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
				case <-ctx.Done():
					return
				}
			}
		}()

		return repo, nil
	}

	repo, err := sqlite.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	log.InfoContext(ctx, "opened SQLite database", "path", databaseURL)
	return repo, nil
}

func newLLMClient(ctx context.Context, provider, model, anthropicAPIKey, googleAPIKey string) (llm.Client, string, error) {
	switch provider {
	case "anthropic":
		if anthropicAPIKey == "" {
			return nil, "", errors.New("anthropic-api-key is required when using anthropic provider")
		}
		m := anthropic.Model(model)
		if m == "" {
			m = anthropic.DefaultModel
		}
		return anthropic.NewClient(anthropicAPIKey, m), string(m), nil
	case "google":
		if googleAPIKey == "" {
			return nil, "", errors.New("google-api-key is required when using google provider")
		}
		m := google.Model(model)
		if m == "" {
			m = google.DefaultModel
		}
		client, err := google.NewClient(ctx, googleAPIKey, m)
		if err != nil {
			return nil, "", fmt.Errorf("creating Google client: %w", err)
		}
		return client, string(m), nil
	default:
		return nil, "", fmt.Errorf("unknown llm provider: %s", provider)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/jusunglee/manchuscript/internal/anthropic"
	"github.com/jusunglee/manchuscript/internal/bot"
	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/db/postgres"
	"github.com/jusunglee/manchuscript/internal/db/sqlite"
	"github.com/jusunglee/manchuscript/internal/gloss"
	"github.com/jusunglee/manchuscript/internal/google"
	"github.com/jusunglee/manchuscript/internal/health"
	"github.com/jusunglee/manchuscript/internal/llm"
	"github.com/jusunglee/manchuscript/internal/logger"
	"golang.org/x/sync/errgroup"
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

	discordToken := os.Getenv("DISCORD_TOKEN")
	if discordToken == "" {
		return errors.New("DISCORD_TOKEN environment variable is required")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "manchuscript.db"
	}

	healthPort := 8081
	if v := os.Getenv("HEALTH_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing HEALTH_PORT: %w", err)
		}
		healthPort = p
	}

	log := logger.New()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(errors.New("main exited"))

	repo, err := openRepository(ctx, log, databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	glosser, err := newGlosser(ctx, log, repo)
	if err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + discordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}

	b := bot.New(
		bot.NewLogger(log),
		bot.NewDiscordSession(session),
		repo,
		glosser,
		bot.Config{
			GuildID:         os.Getenv("DISCORD_GUILD_ID"),
			CleanupInterval: time.Hour,
			RetentionPeriod: 90 * 24 * time.Hour,
		},
	)

	healthServer := health.New(healthPort)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return b.Run(gctx, cancel)
	})
	g.Go(func() error {
		log.InfoContext(gctx, "starting health server", "port", healthPort)
		return healthServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepository(ctx context.Context, log *slog.Logger, databaseURL string) (db.Repository, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		repo, err := postgres.New(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		log.InfoContext(ctx, "connected to PostgreSQL database")
		return repo, nil
	}

	repo, err := sqlite.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	log.InfoContext(ctx, "opened SQLite database", "path", databaseURL)
	return repo, nil
}

// newGlosser wires an LLM client from environment variables. Returns nil when
// no provider is configured, which disables the /gloss command.
func newGlosser(ctx context.Context, log *slog.Logger, repo db.Repository) (*gloss.Glosser, error) {
	provider := os.Getenv("LLM_PROVIDER")
	model := os.Getenv("LLM_MODEL")

	var client llm.Client
	switch provider {
	case "":
		return nil, nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
		m := anthropic.Model(model)
		if m == "" {
			m = anthropic.DefaultModel
		}
		client = anthropic.NewClient(apiKey, m)
		model = string(m)
	case "google":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, errors.New("GOOGLE_API_KEY is required when LLM_PROVIDER=google")
		}
		m := google.Model(model)
		if m == "" {
			m = google.DefaultModel
		}
		c, err := google.NewClient(ctx, apiKey, m)
		if err != nil {
			return nil, fmt.Errorf("creating Google client: %w", err)
		}
		client = c
		model = string(m)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER: %s", provider)
	}

	log.InfoContext(ctx, "glossing enabled", "provider", provider, "model", model)
	return gloss.NewGlosser(client, repo, provider, model), nil
}

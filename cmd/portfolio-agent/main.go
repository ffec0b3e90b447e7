package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/stonexlabs/portfolio-agent/pkg/agent"
	"github.com/stonexlabs/portfolio-agent/pkg/config"
	"github.com/stonexlabs/portfolio-agent/pkg/model"
	"github.com/stonexlabs/portfolio-agent/pkg/model/gemini"
	"github.com/stonexlabs/portfolio-agent/pkg/model/openai"
	"github.com/stonexlabs/portfolio-agent/pkg/search"
	"github.com/stonexlabs/portfolio-agent/pkg/server"
	"github.com/stonexlabs/portfolio-agent/pkg/store/sqlite"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
	"github.com/stonexlabs/portfolio-agent/pkg/tools"
)

func main() {
	// Setup logger.
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(logger)

	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		slog.Error("API key environment variable not set", "provider", cfg.Provider)
		os.Exit(1)
	}

	ctx := context.Background()

	// Tracing. The agent emits spans unconditionally; without a provider
	// they are no-ops.
	if cfg.TraceStdout {
		shutdown, err := setupTracing(ctx)
		if err != nil {
			slog.Error("Failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	// Portfolio store.
	os.MkdirAll(filepath.Dir(cfg.Database), 0755)
	db, err := sqlite.New(cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Earnings search.
	searcher, err := search.NewWeaviate(cfg.Weaviate.Host, cfg.Weaviate.Scheme, cfg.Weaviate.Class)
	if err != nil {
		slog.Error("Failed to initialize earnings search", "error", err)
		os.Exit(1)
	}

	// Tool registry.
	registry, err := tool.NewRegistry(
		tools.PortfolioSummary(db),
		tools.MarketData(db),
		tools.PortfolioRisk(db),
		tools.EarningsSearch(searcher),
	)
	if err != nil {
		slog.Error("Failed to build tool registry", "error", err)
		os.Exit(1)
	}

	// Model provider.
	var provider model.Provider
	switch cfg.Provider {
	case "gemini":
		p, err := gemini.New(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			slog.Error("Failed to initialize Gemini provider", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		provider = p
	case "openai":
		provider = openai.New(cfg.APIKey, cfg.Model)
	}

	a := agent.New(provider, registry, agent.Config{
		SystemPrompt: cfg.SystemPrompt,
		MaxCycles:    cfg.MaxCycles,
		ToolTimeout:  time.Duration(cfg.ToolTimeout),
	})

	srv := server.New(a, provider)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// setupTracing installs a stdout span exporter for local inspection of
// phase-transition spans.
func setupTracing(ctx context.Context) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", "portfolio-agent"),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Command realsearch is the CLI entry point for the hybrid real-estate
// retrieval engine: it provisions search indices and runs the registered
// demo query families against them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danverstone/realsearch/internal/config"
	"github.com/danverstone/realsearch/internal/health"
	"github.com/danverstone/realsearch/internal/observe"
	"github.com/danverstone/realsearch/internal/resilience"
	"github.com/danverstone/realsearch/pkg/provider/embeddings"
	"github.com/danverstone/realsearch/pkg/provider/embeddings/mock"
	"github.com/danverstone/realsearch/pkg/provider/embeddings/ollama"
	"github.com/danverstone/realsearch/pkg/provider/embeddings/openai"
	"github.com/danverstone/realsearch/pkg/searchbackend"
	"github.com/danverstone/realsearch/pkg/searchbackend/es"
)

// Exit codes per the CLI surface contract.
const (
	exitOK             = 0
	exitUsageError     = 2
	exitBackendDown    = 3
	exitPartialFailure = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	var metricsAddr string

	root := &cobra.Command{
		Use:           "realsearch",
		Short:         "Hybrid lexical + semantic retrieval engine over a real-estate catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve /healthz, /readyz, and /metrics on")

	root.AddCommand(newIndicesCmd(&configPath, &metricsAddr))
	root.AddCommand(newDemoCmd(&configPath, &metricsAddr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "realsearch"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "realsearch: init telemetry:", err)
		return exitUsageError
	}
	defer func() { _ = shutdown(context.Background()) }()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "realsearch:", err)
		if ce, ok := err.(*cliError); ok {
			return ce.code
		}
		return exitUsageError
	}
	return exitOK
}

// cliError carries a specific process exit code alongside its message.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func newCLIError(code int, err error) *cliError { return &cliError{code: code, err: err} }

// ── shared bootstrap ─────────────────────────────────────────────────────────

// app bundles everything a subcommand needs once config has been loaded and
// the backend dialed.
type app struct {
	cfg     *config.Config
	backend searchbackend.Backend
}

func bootstrap(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, newCLIError(exitUsageError, fmt.Errorf("load config: %w", err))
	}

	configureLogging(cfg.LogLevel)

	esBackend, err := es.New(es.Config{
		URLs:               cfg.SearchBackend.Hosts,
		Username:           authUsername(cfg.SearchBackend.Auth),
		Password:           authPassword(cfg.SearchBackend.Auth),
		HealthcheckTimeout: cfg.SearchBackend.RequestTimeout.Duration(),
	}, log.Logger)
	if err != nil {
		return nil, newCLIError(exitBackendDown, fmt.Errorf("dial search backend: %w", err))
	}

	var backend searchbackend.Backend = searchbackend.NewResilient(esBackend,
		resilience.CircuitBreakerConfig{Name: "search_backend"},
		resilience.RetryConfig{MaxAttempts: cfg.SearchBackend.MaxRetries},
		observe.DefaultMetrics())

	readiness := health.Checker{Name: "search_backend", Check: backend.Ping}
	if err := readiness.Check(ctx); err != nil {
		return nil, newCLIError(exitBackendDown, fmt.Errorf("search backend not ready: %w", err))
	}

	return &app{cfg: cfg, backend: backend}, nil
}

func configureLogging(level config.LogLevel) {
	zerolog.TimeFieldFormat = time.RFC3339
	switch level {
	case config.LogDebug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.LogWarn:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case config.LogError:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func authUsername(a *config.SearchBackendAuth) string {
	if a == nil {
		return ""
	}
	return a.Username
}

func authPassword(a *config.SearchBackendAuth) string {
	if a == nil {
		return ""
	}
	return a.Password
}

// newEmbeddingRegistry returns a registry seeded with every built-in
// embedding provider factory.
func newEmbeddingRegistry() *config.Registry {
	reg := config.NewRegistry()
	reg.Register("openai", func(c config.EmbeddingConfig) (embeddings.Provider, error) {
		return openai.New(c.APIKey, c.Model)
	})
	reg.Register("ollama", func(c config.EmbeddingConfig) (embeddings.Provider, error) {
		return ollama.New(c.BaseURL, c.Model)
	})
	reg.Register("mock", func(c config.EmbeddingConfig) (embeddings.Provider, error) {
		return &mock.Provider{DimensionsValue: c.Dimension, ModelIDValue: c.Model}, nil
	})
	return reg
}

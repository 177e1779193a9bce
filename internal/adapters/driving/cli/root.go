// Package cli provides the cobra command tree for unisearch.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/ports/driven"
	"github.com/four-robots/unisearch/internal/core/ports/driving"
)

// version is overridden at build time.
var version = "dev"

// skipApp marks commands that run without wired services.
const skipApp = "unisearch/skip-app"

// App holds the wired services commands run against.
type App struct {
	Search    driving.SearchService
	Documents driving.DocumentService
	Config    driven.ConfigStore
	Log       *zap.Logger

	// Metrics is served at /metrics by "mcp serve --port". Optional.
	Metrics http.Handler

	// Watch follows configuration changes until ctx ends. Optional.
	Watch func(ctx context.Context) error

	// Close releases stores and worker pools. Optional.
	Close func() error
}

// Options are the global flags handed to the Builder.
type Options struct {
	ConfigDir string
	Verbose   bool
	LogFormat string
}

// Builder wires an App from the global options.
type Builder func(ctx context.Context, opts Options) (*App, error)

var (
	builder    Builder
	app        *App
	ownsApp    bool
	globalOpts Options
)

// ErrNotConfigured is returned when a command needs services but none were wired.
var ErrNotConfigured = errors.New("unisearch is not configured")

var rootCmd = &cobra.Command{
	Use:   "unisearch",
	Short: "Federated search across notes, cards, wiki pages, scraped pages and code",
	Long: `unisearch sends one query to every configured backend (memory notes,
kanban cards, wiki pages, the scraper service and GitHub code search),
then merges, deduplicates, ranks and paginates the answers.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: teardownApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigDir, "config-dir", "",
		"configuration directory (default ~/.unisearch)")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogFormat, "log-format", "console", "log format: console or json")
}

// Execute runs the command tree. build wires services on demand.
func Execute(ctx context.Context, v string, build Builder) error {
	if v != "" {
		version = v
	}
	builder = build
	loadDotEnv()
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardownApp(nil, nil); err == nil {
		err = cerr
	}
	return err
}

// loadDotEnv reads .env from the working directory, then from the config
// directory. Variables already set in the environment win.
func loadDotEnv() {
	candidates := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".unisearch", ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipApp] == "true" || app != nil {
		return nil
	}
	if builder == nil {
		return ErrNotConfigured
	}
	a, err := builder(cmd.Context(), globalOpts)
	if err != nil {
		return err
	}
	app, ownsApp = a, true
	return nil
}

func teardownApp(_ *cobra.Command, _ []string) error {
	if !ownsApp || app == nil {
		return nil
	}
	var err error
	if app.Close != nil {
		err = app.Close()
	}
	if app.Log != nil {
		_ = app.Log.Sync()
	}
	app, ownsApp = nil, false
	return err
}

// requireApp returns the wired app or ErrNotConfigured.
func requireApp() (*App, error) {
	if app == nil || app.Search == nil {
		return nil, ErrNotConfigured
	}
	return app, nil
}

func appLogger() *zap.Logger {
	if app == nil || app.Log == nil {
		return zap.NewNop()
	}
	return app.Log
}

package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trigen/pkg/buildinfo"
	"github.com/matzehuels/trigen/pkg/cache"
	"github.com/matzehuels/trigen/pkg/canon"
	"github.com/matzehuels/trigen/pkg/dedup"
	"github.com/matzehuels/trigen/pkg/observability"
	"github.com/matzehuels/trigen/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "trigen"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags.
	workers int
	store   string
	noCache bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "trigen enumerates minimally 3-connected graphs",
		Long: `trigen grows minimally 3-connected graphs from a root graph by extension
and coextension rules, keeping one graph per isomorphism class and bucket.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.registerHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().IntVar(&c.workers, "workers", 0, "worker goroutines per step (default: number of CPUs)")
	root.PersistentFlags().StringVar(&c.store, "store", "", "certificate store backend: memory, badger, redis, mongo")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the step cache")

	root.AddCommand(c.seedCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// registerHooks routes pipeline and store events to the logger.
func (c *CLI) registerHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetStoreHooks(h)
	observability.SetCacheHooks(h)
}

// =============================================================================
// Runner Factory
// =============================================================================

// applyFlags overrides cfg with the global flags, fills defaults and
// validates the result.
func (c *CLI) applyFlags(cfg *pipeline.Config) error {
	if c.workers != 0 {
		cfg.Workers = c.workers
	}
	if c.store != "" {
		cfg.Store.Backend = c.store
	}
	cfg.SetDefaults()
	return cfg.Validate()
}

// newRunner creates a pipeline runner for cfg.
func (c *CLI) newRunner(ctx context.Context, cfg *pipeline.Config) (*pipeline.Runner, error) {
	if err := c.applyFlags(cfg); err != nil {
		return nil, err
	}
	factory, err := dedup.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	stepCache, err := newCache(c.noCache)
	if err != nil {
		factory.Close()
		return nil, err
	}
	certs := dedup.NewCachingCertifier(canon.Canonical{}, cache.NewMemoryCache(), nil)
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return pipeline.NewRunner(stepCache, keyer, dedup.New(certs, factory), c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/trigen/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

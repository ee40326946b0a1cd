// Package cli implements the islandlink command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/islandlink/pkg/buildinfo"
	"github.com/matzehuels/islandlink/pkg/cache"
	"github.com/matzehuels/islandlink/pkg/config"
	"github.com/matzehuels/islandlink/pkg/pipeline"
	"github.com/matzehuels/islandlink/pkg/store"
)

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
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is loaded when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "islandlink",
		Short: "islandlink plans cable networks between islands",
		Long: `islandlink connects every island of a group to its main island with a
cable network and reports the population-weighted average number of days
a message needs to reach the main island.

Networks are built with the Esau-Williams savings heuristic: every island
starts with its own cable to the main island and is relinked to a neighbor
whenever that shortens the total cable.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/islandlink/config.toml)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and installs the logging hooks.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	registerHooks(c.Logger)
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return c.runnerFor(ch, nil), nil
}

// runnerFor wraps an open cache in a runner. A nil keyer selects the
// default keys.
func (c *CLI) runnerFor(ch cache.Cache, keyer cache.Keyer) *pipeline.Runner {
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.SolutionTTL = c.Config.Cache.TTL.Duration
	return r
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	ch, err := cache.Open(ctx, cache.OpenOptions{
		Backend: cc.Backend,
		Dir:     cc.Dir,
		Redis: cache.RedisOptions{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return ch, nil
}

// openHistory opens the run database, or returns nil when history is off.
func (c *CLI) openHistory(disabled bool) (*store.DB, error) {
	if disabled || !c.Config.History.Enabled || c.Config.History.Path == "" {
		return nil, nil
	}
	path := c.Config.History.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return store.Open(path)
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions builds pipeline options from the loaded configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		MaxSites: c.Config.MaxSites,
		Labels:   c.Config.Render.Labels,
		Scale:    c.Config.Render.Scale,
		Logger:   c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

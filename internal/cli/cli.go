// Package cli implements the seqgraph command-line interface.
//
// Graph files move between commands as ".sg" bundles, so a typical session
// chains them:
//
//	seqgraph make -r ref.fa --vcf calls.vcf.gz -o sample.sg
//	seqgraph variant-to-nodes sample.sg --vcf calls.vcf.gz -o sample.vn
//	seqgraph serve sample.sg
//
// Every command accepts --verbose for debug logging and --config to point
// at a TOML file; flags given on the command line win over file values.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgraph/pkg/buildinfo"
	"github.com/matzehuels/seqgraph/pkg/cache"
	"github.com/matzehuels/seqgraph/pkg/config"
	"github.com/matzehuels/seqgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "seqgraph"

	// cacheConnectTimeout bounds connecting to a shared cache.
	cacheConnectTimeout = 5 * time.Second
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

	configPath string
	config     config.Config
	out        io.Writer
	stderr     io.Writer
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
		out:    os.Stdout,
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Build and query sequence variation graphs",
		Long: `seqgraph builds variation graphs from a reference genome and a VCF of small
variants, adds the dummy nodes that make every variant addressable, and answers
coordinate and variant queries against the frozen graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/seqgraph/config.toml)")

	root.AddCommand(c.makeCommand())
	root.AddCommand(c.dummyCommand())
	root.AddCommand(c.alleleFrequenciesCommand())
	root.AddCommand(c.variantToNodesCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, path, err := config.Find(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.config.Cache.TTL.Duration
	return r, nil
}

// newCache picks the first configured backend: redis, mongo, then the file
// cache. An unusable cache directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config.Cache
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, cacheConnectTimeout)
	defer cancel()
	switch {
	case cfg.RedisURL != "":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL, Prefix: cfg.Prefix})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return rc, nil
	case cfg.MongoURI != "":
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{URI: cfg.MongoURI})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return mc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// cache location (~/.cache/seqgraph/).
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cacheDir()
}

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

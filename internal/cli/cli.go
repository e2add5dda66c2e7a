// Package cli implements the msttree command-line interface.
//
// The CLI loads an input document (a node/link graph or a rooted tree),
// contracts short links, computes the radial layout and writes the result
// as a layout file or rendered artifacts. It can also serve the same
// pipeline over HTTP.
//
// # Commands
//
//   - layout: compute positions and write <input>.layout.json
//   - collapse: print the groups produced by a threshold
//   - render: write SVG, PNG, PDF, HTML, DOT or JSON output
//   - serve: run the HTTP API
//   - cache: inspect or clear the local layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the [CLI] struct and is handed to the pipeline runner.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/msttree/pkg/buildinfo"
	"github.com/matzehuels/msttree/pkg/cache"
	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/errors"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "msttree"

	// defaultFormat is rendered when no --format is given.
	defaultFormat = pipeline.FormatSVG
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

	// Global flags.
	configPath string
	threshold  float64
	noCache    bool
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
		Short: "msttree lays out minimum spanning trees radially",
		Long: `msttree contracts the short links of a minimum spanning tree into merged
nodes and places the remaining tree on a radial, non-overlapping layout.`,
		Version:      buildinfo.Resolved(),
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "settings file (TOML)")
	flags.Float64Var(&c.threshold, "threshold", 0, "collapse links at or below this length (default: node_collapsed_value from settings)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.collapseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	cache, err := newCache(c.noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
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
// Options Helpers
// =============================================================================

// options builds pipeline options from the global flags. Settings come
// from --config when given; otherwise the pipeline falls back to the
// input's saved settings or the defaults. An unset --threshold keeps the
// node_collapsed_value of those settings.
func (c *CLI) options(cmd *cobra.Command, in *mstio.Input) (pipeline.Options, error) {
	opts := pipeline.Options{Logger: c.Logger, Refresh: c.noCache}

	if c.configPath != "" {
		if err := errors.ValidatePath(c.configPath); err != nil {
			return opts, fmt.Errorf("config: %w", err)
		}
		s, err := config.Load(c.configPath)
		if err != nil {
			return opts, fmt.Errorf("load config: %w", err)
		}
		opts.Settings = &s
	}

	switch {
	case cmd.Flags().Changed("threshold"):
		opts.Threshold = c.threshold
	case opts.Settings != nil:
		opts.Threshold = opts.Settings.NodeCollapsedValue
	case in.Layout != nil:
		opts.Threshold = in.Layout.NodesLinks.NodeCollapsedValue
	}
	return opts, nil
}

// loadInput reads the input document at path.
func loadInput(path string) (*mstio.Input, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	in, err := mstio.ImportInput(path)
	if err != nil {
		return nil, fmt.Errorf("load input %s: %w", path, err)
	}
	return in, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .html, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/msttree/).
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

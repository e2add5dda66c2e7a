// Package pipeline provides the build → collapse → layout → render pipeline.
//
// The same pipeline backs the CLI and the HTTP API, so both produce
// identical layouts for identical input and settings.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: Turn an input document into a rooted tree
//  2. Collapse: Merge links at or below the threshold into groups
//  3. Layout: Compute radial positions for the collapsed tree
//  4. Render: Generate output in various formats (SVG, PNG, PDF, HTML, DOT, JSON)
//
// Layouts are cached by a hash of the input document, the threshold and the
// settings. Collapsing always runs, since rendering needs the collapsed
// tree; a cached layout skips stage 3 only. Positions saved in the input's
// layout_data are collapsed along with the tree and, when they place every
// visible node, replace stage 3 as well.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Threshold: 2,
//	    Formats:   []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/msttree/pkg/cache"
	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/errors"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/tree"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatHTML: true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: svg, png, pdf, html, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma separated format list and validates it.
func ParseFormats(s string) ([]string, error) {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			formats = append(formats, f)
		}
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Threshold is the collapse threshold. It is stored in the layout's
	// settings bag as node_collapsed_value.
	Threshold float64 `json:"threshold"`

	// Settings is the display and layout settings bag. Nil uses the
	// settings saved in the input's layout_data, or the defaults.
	Settings *config.Settings `json:"settings,omitempty"`

	// Formats lists the artifacts to render. Empty renders nothing.
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives progress messages. Nil uses the runner's logger.
	Logger *log.Logger `json:"-"`
}

// Validate checks the threshold, settings and formats.
func (o *Options) Validate() error {
	if err := errors.ValidateNonNegative("threshold", o.Threshold); err != nil {
		return err
	}
	if o.Settings != nil {
		if err := o.Settings.Validate(); err != nil {
			return err
		}
	}
	return ValidateFormats(o.Formats)
}

// resolve fills in the settings and logger and validates the result.
// The returned options own their settings.
func (o Options) resolve(in *mstio.Input) (Options, error) {
	var s config.Settings
	switch {
	case o.Settings != nil:
		s = *o.Settings
	case in != nil && in.Layout != nil:
		s = in.Layout.NodesLinks
	default:
		s = config.Default()
	}
	s.NodeCollapsedValue = o.Threshold
	o.Settings = &s
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Threshold: o.Threshold, Settings: o.Settings}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Settings: o.Settings}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the collapsed tree the layout was computed for.
	Tree *tree.Tree

	// Layout is the saved view: positions, settings and groups.
	Layout mstio.LayoutData

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the layout came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes        int // nodes before collapsing
	Visible      int // nodes after collapsing
	Merged       int
	Iterations   int
	Restored     bool // positions came from the input's layout_data
	BuildTime    time.Duration
	CollapseTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/msttree/pkg/cache"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/observability"
	"github.com/matzehuels/msttree/pkg/tree"
	"github.com/matzehuels/msttree/pkg/tree/collapse"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different inputs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, messages are discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → collapse → layout → render pipeline
// with caching. The context is checked between stages only.
func (r *Runner) Execute(ctx context.Context, in *mstio.Input, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts, err := opts.resolve(in)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Build
	start := time.Now()
	t, err := r.Build(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Stats.BuildTime = time.Since(start)
	result.Stats.Nodes = t.Len()
	logger.Info("built tree", "nodes", t.Len(), "links", t.LinkCount(), "duration", result.Stats.BuildTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Collapse
	start = time.Now()
	collapser := collapse.New(t, opts.Settings.SizingPolicy(in.Records()))
	collapsed, err := r.Collapse(ctx, collapser, opts.Threshold, savedPositions(in, opts))
	if err != nil {
		return nil, fmt.Errorf("collapse: %w", err)
	}
	result.Tree = collapsed.Tree
	result.Stats.CollapseTime = time.Since(start)
	result.Stats.Visible = collapsed.Tree.Len()
	result.Stats.Merged = collapsed.Merged
	logger.Info("collapsed tree",
		"threshold", opts.Threshold,
		"merged", collapsed.Merged,
		"visible", collapsed.Tree.Len(),
		"duration", result.Stats.CollapseTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Layout
	start = time.Now()
	inputHash, err := hashInput(in)
	if err != nil {
		return nil, err
	}
	if saved, ok := restore(in, collapser, collapsed, opts); ok {
		result.Layout = *saved
		result.Stats.Restored = true
		logger.Info("restored saved layout", "nodes", len(saved.NodePositions))
	} else {
		layout, iterations, hit, err := r.layoutCached(ctx, inputHash, collapsed.Tree, collapsed.Groups, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Layout = *layout
		result.CacheHit = hit
		result.Stats.Iterations = iterations
	}
	result.Stats.LayoutTime = time.Since(start)
	logger.Info("computed layout",
		"converged", result.Layout.Converged,
		"cached", result.CacheHit,
		"duration", result.Stats.LayoutTime)
	if !result.Layout.Converged {
		logger.Warn("layout did not converge; subtrees may overlap")
	}

	if len(opts.Formats) == 0 {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Render
	start = time.Now()
	artifacts, err := r.Render(ctx, collapsed.Tree, &result.Layout, in, opts.Formats, inputHash, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)

	return result, nil
}

// layoutCached computes the layout of t or loads it from the cache. The
// iteration count is zero for cached layouts.
func (r *Runner) layoutCached(ctx context.Context, inputHash string, t *tree.Tree, groups map[string][]string, opts Options) (*mstio.LayoutData, int, bool, error) {
	key := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached mstio.LayoutData
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, 0, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	layout, res, err := r.Layout(ctx, t, groups, *opts.Settings)
	if err != nil {
		return nil, 0, false, err
	}

	if data, err := json.Marshal(layout); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return layout, res.Iterations, false, nil
}

// Render generates artifacts with caching. Artifacts are keyed by the input
// hash and the layout, so a changed layout never serves stale pictures.
func (r *Runner) Render(ctx context.Context, t *tree.Tree, l *mstio.LayoutData, in *mstio.Input, formats []string, inputHash string, refresh bool) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(append([]byte(inputHash), layoutData...))
	keyOpts := Options{Settings: &l.NodesLinks}

	artifacts := make(map[string][]byte, len(formats))
	var missing []string
	for _, format := range formats {
		if !refresh {
			key := r.Keyer.ArtifactKey(layoutHash, keyOpts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := RenderArtifacts(t, l, in, missing)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, keyOpts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// hashInput hashes the parts of the input that determine the tree.
func hashInput(in *mstio.Input) (string, error) {
	key := *in
	key.Layout = nil
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(key); err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topodraw/pkg/cache"
	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/observability"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and warnings behave the same.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, t topology.Topology, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	stats := t.Stats()
	result := &Result{
		Topology:  t,
		Artifacts: make(map[string][]byte),
		Stats:     Stats{Nodes: stats.TopNodes + stats.BottomNodes, Ports: stats.Ports, Edges: stats.Edges},
	}
	if data, err := topology.Marshal(t); err == nil {
		result.TopologyHash = cache.Hash(data)
	}

	layoutStart := time.Now()
	d, layoutHit, err := r.LayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Unresolved = len(d.Unresolved)
	result.CacheInfo.LayoutHit = layoutHit
	result.Warnings = Warnings(t, d, opts)

	opts.Logger.Info("computed layout",
		"groups", len(d.Groups),
		"shapes", len(d.Shapes),
		"edges", len(d.Edges),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo validates t and computes its diagram with caching.
// Warnings about the input are logged, not returned as errors.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, t topology.Topology, opts Options) (layout.Diagram, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Diagram{}, false, err
	}
	if err := topology.Validate(t); err != nil {
		return layout.Diagram{}, false, err
	}

	data, err := topology.Marshal(t)
	if err != nil {
		return layout.Diagram{}, false, fmt.Errorf("serialize topology for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if d, err := layout.UnmarshalDiagram(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "layout")
				return d, true, nil
			}
		}
	}
	cacheHooks.OnCacheMiss(ctx, "layout")

	stats := t.Stats()
	start := time.Now()
	hooks.OnLayoutStart(ctx, opts.Orientation, stats.TopNodes+stats.BottomNodes, stats.Edges)
	d := layout.Compute(t, opts.LayoutConfig())
	hooks.OnLayoutComplete(ctx, opts.Orientation, len(d.Unresolved), time.Since(start), nil)

	for _, w := range Warnings(t, d, opts) {
		opts.Logger.Warn(w)
	}

	if data, err := layout.MarshalDiagram(d); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Debug("cache write failed", "stage", "layout", "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}

	return d, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, t topology.Topology, opts Options) (layout.Diagram, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, t, opts)
	return d, err
}

// RenderWithCacheInfo serializes d in every requested format with caching.
// The render stage is a cache hit only when every format was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d layout.Diagram, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := layout.MarshalDiagram(d)
	if err != nil {
		return nil, false, fmt.Errorf("serialize diagram for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	cacheHooks.OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderDiagram(ctx, d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d layout.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

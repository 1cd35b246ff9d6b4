package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clusterflow/pkg/cache"
	"github.com/matzehuels/clusterflow/pkg/config"
	"github.com/matzehuels/clusterflow/pkg/diagram"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Config *config.Config
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer] and a nil config means [config.Default].
func NewRunner(c cache.Cache, keyer cache.Keyer, cfg *config.Config, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Config: cfg, Logger: logger}
}

// Execute lays out d and serializes it in every requested format.
func (r *Runner) Execute(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.Resolve(r.Config, d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	data, err := diagram.MarshalDiagram(d)
	if err != nil {
		return nil, err
	}
	result := &Result{
		DiagramHash: cache.Hash(data),
		Stats: Stats{
			NodeCount: len(d.Nodes),
			EdgeCount: len(d.Edges),
		},
	}
	layoutKey := r.Keyer.LayoutKey(result.DiagramHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if r.fromCache(ctx, layoutKey, opts, result) {
			r.Logger.Debug("layout cache hit", "diagram", result.Layout.ID, "key", layoutKey)
			return result, nil
		}
	}

	start := time.Now()
	res, err := Layout(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Loops = res.Loops.Loops
	result.Stats.Dropped = len(res.Dropped)
	result.Layout = res.Export()

	r.Logger.Info("computed layout",
		"diagram", res.ID,
		"engine", opts.Engine,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LayoutTime)
	for _, de := range res.Dropped {
		r.Logger.Warn("dropped edge", "cluster", de.Cluster, "v", de.V, "w", de.W, "reason", de.Reason)
	}

	start = time.Now()
	artifacts, err := Artifacts(res, result.Layout, opts.Formats)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)

	r.store(ctx, layoutKey, result)
	return result, nil
}

// fromCache fills result from a cached layout. It succeeds only when every
// requested format can be served without rendering.
func (r *Runner) fromCache(ctx context.Context, layoutKey string, opts Options, result *Result) bool {
	data, hit, err := r.Cache.Get(ctx, layoutKey)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", layoutKey, "error", err)
		return false
	}
	if !hit {
		return false
	}
	l, err := diagram.UnmarshalLayout(data)
	if err != nil {
		return false
	}

	layoutHash := cache.Hash(data)
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if format == FormatJSON {
			artifacts[format] = data
			continue
		}
		blob, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format}))
		if err != nil || !hit {
			return false
		}
		artifacts[format] = blob
	}

	result.Layout = l
	result.Artifacts = artifacts
	result.Stats.Dropped = len(l.Dropped)
	result.CacheInfo = CacheInfo{LayoutHit: true, RenderHit: true}
	return true
}

// store writes the layout and its non-JSON artifacts. Failures only log.
func (r *Runner) store(ctx context.Context, layoutKey string, result *Result) {
	data, err := diagram.MarshalLayout(result.Layout)
	if err != nil {
		return
	}
	ttl := r.ttl()
	if err := r.Cache.Set(ctx, layoutKey, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", layoutKey, "error", err)
		return
	}
	layoutHash := cache.Hash(data)
	for format, blob := range result.Artifacts {
		if format == FormatJSON {
			continue
		}
		key := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format})
		if err := r.Cache.Set(ctx, key, blob, ttl); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
}

func (r *Runner) ttl() time.Duration {
	if r.Config != nil && r.Config.Cache.TTL.Duration > 0 {
		return r.Config.Cache.TTL.Duration
	}
	return cache.TTLLayout
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

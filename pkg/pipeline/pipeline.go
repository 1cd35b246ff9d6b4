// Package pipeline runs diagram layouts with caching.
//
// This package implements the read → layout → render flow shared by the
// CLI and the HTTP server. By centralizing it, both entry points resolve
// spacing, pick engines and use the cache the same way.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, cfg, logger)
//	result, err := runner.Execute(ctx, d, pipeline.Options{
//	    Engine:  "dot",
//	    Formats: []string{"json", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Layouts are cached under the hash of the diagram JSON plus the resolved
// options. A cache hit skips the layout entirely; artifacts that cannot be
// rebuilt from the cached layout (SVG) are cached separately.
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clusterflow/pkg/cache"
	"github.com/matzehuels/clusterflow/pkg/config"
	"github.com/matzehuels/clusterflow/pkg/diagram"
	"github.com/matzehuels/clusterflow/pkg/errors"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = []string{FormatJSON, FormatSVG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. Zero values take the config file's
// values, then the built-in defaults. The JSON form is the request body
// options of the HTTP API.
type Options struct {
	Engine      string   `json:"engine,omitempty"`
	NodeSpacing float64  `json:"nodeSpacing,omitempty"`
	RankSpacing float64  `json:"rankSpacing,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// resolved by Resolve
	titleMargin float64
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that an engine name is known.
func ValidateEngine(name string) error {
	if !slices.Contains(config.Engines, name) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid engine: %q (must be one of: %s)", name, strings.Join(config.Engines, ", "))
	}
	return nil
}

// Resolve fills unset options from cfg for a diagram and validates the
// result. Per-call spacing wins over the diagram's own config, which wins
// over the config file.
func (o *Options) Resolve(cfg *config.Config, d *diagram.Diagram) error {
	if cfg == nil {
		cfg = config.Default()
	}
	if o.Engine == "" {
		o.Engine = cfg.Layout.Engine
	}
	if o.Engine == "" {
		o.Engine = config.DefaultEngine
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := errors.ValidateSpacing("nodeSpacing", o.NodeSpacing); err != nil {
		return err
	}
	if err := errors.ValidateSpacing("rankSpacing", o.RankSpacing); err != nil {
		return err
	}
	o.NodeSpacing, o.RankSpacing = cfg.Spacing(d.Type,
		first(o.NodeSpacing, d.Config.NodeSpacing),
		first(o.RankSpacing, d.Config.RankSpacing))
	o.titleMargin = cfg.Layout.TitleMargin()

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// LayoutKeyOpts returns the cache key options of resolved options.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Engine:      o.Engine,
		NodeSpacing: o.NodeSpacing,
		RankSpacing: o.RankSpacing,
		TitleMargin: o.titleMargin,
	}
}

func first(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// DiagramHash is the content hash of the input diagram.
	DiagramHash string

	Layout *diagram.Layout

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains execution statistics. Loops is zero on a cache hit.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Loops      int
	Dropped    int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// Package cache stores computed layouts and rendered artifacts.
//
// Layouts are content-addressed: the key is derived from the hash of the
// diagram JSON plus every option that changes the result, so entries never
// need invalidation beyond their TTL. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// Wrap any backend with [Instrument] to report hits and misses through
// pkg/observability.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key prefixes.
const (
	prefixLayout   = "layout"
	prefixArtifact = "artifact"
)

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Engine      string  `json:"engine"`
	NodeSpacing float64 `json:"node_spacing"`
	RankSpacing float64 `json:"rank_spacing"`
	TitleMargin float64 `json:"title_margin"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey(prefixLayout, diagramHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, layoutHash, opts)
}

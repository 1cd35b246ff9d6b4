// Package config loads clusterflow settings from a TOML file.
//
// A missing file at the default location is not an error: every field has a
// default. Unknown keys are rejected so typos do not pass silently.
//
//	[layout]
//	engine = "layered"
//	node_spacing = 50
//	rank_spacing = 50
//	subgraph_title_margin_top = 0
//	subgraph_title_margin_bottom = 0
//
//	[types.state]
//	rank_spacing = 30
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	timeout = "30s"
//
// Spacing follows a fallback chain, see [Config.Spacing].
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/clusterflow/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "clusterflow"

// Defaults used when neither the file nor the caller sets a value.
const (
	DefaultEngine      = "layered"
	DefaultNodeSpacing = 50.0
	DefaultRankSpacing = 50.0
	DefaultBackend     = "file"
	DefaultAddr        = ":8080"
	DefaultTTL         = 24 * time.Hour
	DefaultTimeout     = 30 * time.Second
)

// Engines and cache backends accepted by [Config.Validate].
var (
	Engines  = []string{"layered", "dot"}
	Backends = []string{"file", "redis", "none"}
)

// Config is the decoded configuration file.
type Config struct {
	Layout Layout             `toml:"layout"`
	Types  map[string]Spacing `toml:"types"`
	Cache  Cache              `toml:"cache"`
	Server Server             `toml:"server"`
}

// Layout holds global layout settings.
type Layout struct {
	Engine            string  `toml:"engine"`
	NodeSpacing       float64 `toml:"node_spacing"`
	RankSpacing       float64 `toml:"rank_spacing"`
	TitleMarginTop    float64 `toml:"subgraph_title_margin_top"`
	TitleMarginBottom float64 `toml:"subgraph_title_margin_bottom"`
}

// Spacing holds per diagram type overrides. Zero means unset.
type Spacing struct {
	NodeSpacing float64 `toml:"node_spacing"`
	RankSpacing float64 `toml:"rank_spacing"`
}

// Cache selects the layout cache backend.
type Cache struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`

	// Prefix is prepended to every cache key.
	Prefix string `toml:"prefix"`
}

// Server configures the HTTP server.
type Server struct {
	Addr    string   `toml:"addr"`
	Timeout Duration `toml:"timeout"`
}

// Duration decodes TOML strings such as "30s" into a time.Duration.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// DefaultPath returns $XDG_CONFIG_HOME/clusterflow/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the file at path. An empty path loads [DefaultPath] and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	switch {
	case err == nil:
	case !explicit && os.IsNotExist(err):
		return Default(), nil
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes configuration from TOML text.
func Parse(data string) (*Config, error) {
	c := &Config{}
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %s", undecoded[0].String())
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetDefaults fills unset fields. It is idempotent.
func (c *Config) SetDefaults() {
	if c.Layout.Engine == "" {
		c.Layout.Engine = DefaultEngine
	}
	if c.Layout.NodeSpacing == 0 {
		c.Layout.NodeSpacing = DefaultNodeSpacing
	}
	if c.Layout.RankSpacing == 0 {
		c.Layout.RankSpacing = DefaultRankSpacing
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultBackend
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = DefaultTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Timeout.Duration == 0 {
		c.Server.Timeout.Duration = DefaultTimeout
	}
}

// Validate checks enumerations and rejects negative sizes.
func (c *Config) Validate() error {
	if !slices.Contains(Engines, c.Layout.Engine) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid engine: %q (must be one of: %s)", c.Layout.Engine, strings.Join(Engines, ", "))
	}
	if !slices.Contains(Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache backend: %q (must be one of: %s)", c.Cache.Backend, strings.Join(Backends, ", "))
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
	}
	checks := []check{
		{"layout.node_spacing", c.Layout.NodeSpacing},
		{"layout.rank_spacing", c.Layout.RankSpacing},
		{"layout.subgraph_title_margin_top", c.Layout.TitleMarginTop},
		{"layout.subgraph_title_margin_bottom", c.Layout.TitleMarginBottom},
	}
	for typ, s := range c.Types {
		checks = append(checks,
			check{"types." + typ + ".node_spacing", s.NodeSpacing},
			check{"types." + typ + ".rank_spacing", s.RankSpacing},
		)
	}
	for _, chk := range checks {
		if err := errors.ValidateSpacing(chk.name, chk.v); err != nil {
			return err
		}
	}
	return nil
}

// Spacing resolves node and rank spacing for one render. Each value falls
// back from the explicit per-call value to the diagram type's entry and then
// to the global layout setting. Zero means unset at every step.
func (c *Config) Spacing(diagramType string, nodeSpacing, rankSpacing float64) (float64, float64) {
	typ := c.Types[diagramType]
	return first(nodeSpacing, typ.NodeSpacing, c.Layout.NodeSpacing, DefaultNodeSpacing),
		first(rankSpacing, typ.RankSpacing, c.Layout.RankSpacing, DefaultRankSpacing)
}

// TitleMargin returns the total vertical margin reserved around subgraph titles.
func (l Layout) TitleMargin() float64 {
	return l.TitleMarginTop + l.TitleMarginBottom
}

type check struct {
	name string
	v    float64
}

func first(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

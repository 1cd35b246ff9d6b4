package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/clusterflow/pkg/errors"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Layout.Engine != DefaultEngine {
		t.Errorf("Engine = %q, want %q", c.Layout.Engine, DefaultEngine)
	}
	if c.Layout.NodeSpacing != 50 || c.Layout.RankSpacing != 50 {
		t.Errorf("spacing = %v/%v, want 50/50", c.Layout.NodeSpacing, c.Layout.RankSpacing)
	}
	if c.Cache.TTL.Duration != DefaultTTL {
		t.Errorf("TTL = %v, want %v", c.Cache.TTL.Duration, DefaultTTL)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(`
[layout]
engine = "dot"
rank_spacing = 70
subgraph_title_margin_top = 10
subgraph_title_margin_bottom = 5

[types.state]
node_spacing = 30

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "1h"
prefix = "staging:"

[server]
timeout = "5s"
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Layout.Engine != "dot" {
		t.Errorf("Engine = %q, want dot", c.Layout.Engine)
	}
	if c.Layout.NodeSpacing != DefaultNodeSpacing {
		t.Errorf("NodeSpacing = %v, want default", c.Layout.NodeSpacing)
	}
	if got := c.Layout.TitleMargin(); got != 15 {
		t.Errorf("TitleMargin() = %v, want 15", got)
	}
	if c.Cache.TTL.Duration != time.Hour {
		t.Errorf("TTL = %v, want 1h", c.Cache.TTL.Duration)
	}
	if c.Cache.Prefix != "staging:" {
		t.Errorf("Prefix = %q, want staging:", c.Cache.Prefix)
	}
	if c.Server.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Server.Timeout.Duration)
	}
	if c.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", c.Server.Addr, DefaultAddr)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "[layout"},
		{"unknown key", "[layout]\nengine = \"dot\"\ncolour = 1"},
		{"bad engine", "[layout]\nengine = \"spring\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"negative spacing", "[layout]\nnode_spacing = -1"},
		{"negative type spacing", "[types.flowchart]\nrank_spacing = -5"},
		{"bad duration", "[server]\ntimeout = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestSpacingFallback(t *testing.T) {
	c := Default()
	c.Layout.RankSpacing = 60
	c.Types = map[string]Spacing{"state": {NodeSpacing: 30}}

	tests := []struct {
		name     string
		typ      string
		node     float64
		rank     float64
		wantNode float64
		wantRank float64
	}{
		{"explicit wins", "state", 10, 20, 10, 20},
		{"type config", "state", 0, 0, 30, 60},
		{"global", "flowchart", 0, 0, 50, 60},
		{"mixed", "state", 0, 15, 30, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, r := c.Spacing(tt.typ, tt.node, tt.rank)
			if n != tt.wantNode || r != tt.wantRank {
				t.Errorf("Spacing() = %v/%v, want %v/%v", n, r, tt.wantNode, tt.wantRank)
			}
		})
	}

	var empty Config
	if n, r := empty.Spacing("", 0, 0); n != DefaultNodeSpacing || r != DefaultRankSpacing {
		t.Errorf("zero Config Spacing() = %v/%v, want defaults", n, r)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[layout]\nengine = \"dot\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Layout.Engine != "dot" {
		t.Errorf("Engine = %q, want dot", c.Layout.Engine)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load() of explicit missing file returned nil error")
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Layout.Engine != DefaultEngine {
		t.Errorf("Engine = %q, want default", c.Layout.Engine)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", AppName, "config.toml"); p != want {
		t.Errorf("DefaultPath() = %q, want %q", p, want)
	}
}

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/clusterflow/pkg/cache"
	"github.com/matzehuels/clusterflow/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	tests := []struct {
		name    string
		cache   config.Cache
		want    string
		wantErr bool
	}{
		{"default", config.Cache{Backend: "file"}, filepath.Join("/tmp/xdg", appName), false},
		{"configured", config.Cache{Backend: "file", Dir: "/srv/cache"}, "/srv/cache", false},
		{"redis", config.Cache{Backend: "redis", RedisURL: "redis://cache:6379/0"}, "redis://cache:6379/0", false},
		{"none", config.Cache{Backend: "none"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cachePath(&config.Config{Cache: tt.cache})
			if (err != nil) != tt.wantErr {
				t.Fatalf("cachePath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("cachePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"flow.json", "", "flow"},
		{"dir/flow.json", "", "dir/flow"},
		{"-", "", "diagram"},
		{"flow.json", "out/x", "out/x"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.input, tt.output); got != tt.want {
			t.Errorf("outputBase(%q, %q) = %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", got)
	}
	if got := parseFormats("svg, json,"); len(got) != 2 || got[1] != "json" {
		t.Errorf("parseFormats() = %v, want [svg json]", got)
	}
}

func TestNewKeyer(t *testing.T) {
	opts := cache.LayoutKeyOpts{Engine: "layered"}
	plain := cache.NewDefaultKeyer().LayoutKey("abc", opts)

	cfg := config.Default()
	if got := newKeyer(cfg).LayoutKey("abc", opts); got != plain {
		t.Errorf("LayoutKey() = %q, want %q", got, plain)
	}

	cfg.Cache.Prefix = "staging:"
	got := newKeyer(cfg).LayoutKey("abc", opts)
	if got != "staging:"+plain {
		t.Errorf("LayoutKey() = %q, want %q", got, "staging:"+plain)
	}
	if !strings.HasPrefix(newKeyer(cfg).ArtifactKey("abc", cache.ArtifactKeyOpts{Format: "svg"}), "staging:") {
		t.Error("ArtifactKey() not scoped")
	}
}

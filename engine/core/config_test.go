package core

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor", "config.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	type tc struct {
		yaml string
		want func(*Config)
	}

	tests := map[string]tc{
		"partial file keeps defaults": {
			yaml: "title: demo\nvsync: false\n",
			want: func(c *Config) { c.Title, c.VSync = "demo", false },
		},
		"invalid sizes normalized": {
			yaml: "width: -1\nheight: 0\nmax_quads: 0\natlas_size: 1024\natlas_max_size: 256\n",
			want: func(c *Config) { c.AtlasSize, c.AtlasMaxSize = 1024, 4096 },
		},
		"window geometry": {
			yaml: "window: {x: 5, y: 6, width: 800, height: 600, maximized: true}\n",
			want: func(c *Config) {
				c.Window = &WindowConfig{X: 5, Y: 6, Width: 800, Height: 600, Maximized: true}
			},
		},
		"clear color": {
			yaml: "clear_color: [0.5, 0.25, 0, 1]\n",
			want: func(c *Config) { c.ClearColor = [4]float32{0.5, 0.25, 0, 1} },
		},
		"minimum size": {
			yaml: "min_width: 400\nmin_height: -3\n",
			want: func(c *Config) { c.MinWidth = 400 },
		},
		"unparsable falls back": {
			yaml: "title: [unterminated\n",
			want: func(*Config) {},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			want := DefaultConfig()
			tt.want(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Title = "round trip"
	cfg.Locale = "fr-FR"
	cfg.Window = &WindowConfig{X: -20, Y: 40, Width: 1024, Height: 768}

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if w, h := got.Size(); w != 1024 || h != 768 {
		t.Errorf("Size() = %dx%d, want saved window size", w, h)
	}
}

func TestConfig_Level(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := (Config{LogLevel: in}).Level(); got != want {
				t.Errorf("Level() = %v, want %v", got, want)
			}
		})
	}
}

func TestConfig_Size(t *testing.T) {
	tests := map[string]struct {
		cfg          Config
		wantW, wantH int
	}{
		"configured":        {Config{Width: 800, Height: 600}, 800, 600},
		"saved geometry":    {Config{Width: 800, Height: 600, Window: &WindowConfig{Width: 1000, Height: 700}}, 1000, 700},
		"empty saved size":  {Config{Width: 800, Height: 600, Window: &WindowConfig{X: 3}}, 800, 600},
		"raised to minimum": {Config{Width: 300, Height: 600, MinWidth: 640, MinHeight: 480}, 640, 600},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if w, h := tt.cfg.Size(); w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

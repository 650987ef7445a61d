package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Field.Breakpoint != 768 || cfg.Field.NarrowCount != 20 || cfg.Field.WideCount != 38 {
		t.Errorf("field = %+v, want 768/20/38", cfg.Field)
	}
	if !cfg.Field.Buoyancy || !cfg.Field.TopClamp {
		t.Errorf("variants should default on: %+v", cfg.Field)
	}
	if len(cfg.Colors()) != 8 {
		t.Errorf("palette has %d colors, want 8", len(cfg.Colors()))
	}
	r, g, b := cfg.Colors()[0].RGB255()
	if r != 0xFF || g != 0xD5 || b != 0x4F {
		t.Errorf("palette[0] = #%02X%02X%02X, want #FFD54F", r, g, b)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
field:
  wide_count: 50
  buoyancy: false
palette: ["#112233"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Field.WideCount != 50 {
		t.Errorf("wide_count = %d, want 50", cfg.Field.WideCount)
	}
	if cfg.Field.NarrowCount != 20 {
		t.Errorf("narrow_count = %d, want default 20", cfg.Field.NarrowCount)
	}
	if cfg.Field.Buoyancy {
		t.Error("buoyancy should be overridden to false")
	}
	if len(cfg.Palette) != 1 {
		t.Errorf("palette = %v, want one entry", cfg.Palette)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad palette", `palette: ["#FFD54F", "yellow"]`, "palette[1]"},
		{"empty palette", `palette: []`, "palette is empty"},
		{"negative count", "field:\n  narrow_count: -1", "must not be negative"},
		{"zero window", "window:\n  width: 0", "window size"},
		{"smoothing", "audio:\n  smoothing: 1.5", "audio.smoothing"},
		{"negative max boost", "audio:\n  max_boost: -3", "audio.max_boost"},
		{"negative gain", "audio:\n  gain: -10", "audio.gain"},
		{"not yaml", "field: [", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Load() error = %v, want reading config file", err)
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/cwbudde/wavmeta/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be reported absent")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	def := config.Default()
	if cfg.Scan.Workers != def.Scan.Workers {
		t.Fatalf("workers = %d, want %d", cfg.Scan.Workers, def.Scan.Workers)
	}
	if cfg.ALE.FPS != 24 || cfg.AAF.FPS != 25 {
		t.Fatalf("unexpected fps defaults: ale=%d aaf=%d", cfg.ALE.FPS, cfg.AAF.FPS)
	}
	if !slices.Contains(cfg.ALE.Excluded, "Sample Width") {
		t.Fatalf("default exclusions missing Sample Width: %v", cfg.ALE.Excluded)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[scan]
extensions = ["WAV", " .aif "]
workers = 8
min_size = 1024
audio_only = true

[ale]
fps = 30

[ucs]
csv_path = "ucs.csv"

[log]
level = "DEBUG"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}

	if want := []string{".wav", ".aif"}; !slices.Equal(cfg.Scan.Extensions, want) {
		t.Fatalf("extensions = %v, want %v", cfg.Scan.Extensions, want)
	}
	if cfg.Scan.Workers != 8 || cfg.Scan.MinSize != 1024 || !cfg.Scan.AudioOnly {
		t.Fatalf("unexpected scan section: %+v", cfg.Scan)
	}
	if cfg.ALE.FPS != 30 {
		t.Fatalf("ale fps = %d", cfg.ALE.FPS)
	}
	if cfg.ALE.VideoFormat != "1080" {
		t.Fatalf("unset keys should keep defaults, got video format %q", cfg.ALE.VideoFormat)
	}
	if !filepath.IsAbs(cfg.UCS.CSVPath) {
		t.Fatalf("csv path not expanded: %q", cfg.UCS.CSVPath)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"workers", "[scan]\nworkers = 0\n", "scan.workers"},
		{"fps", "[aaf]\nfps = -1\n", "aaf.fps"},
		{"format", "[log]\nformat = \"yaml\"\n", "log.format"},
		{"unknown key", "[scan]\nbogus = 1\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultRoundTripsThroughTOML(t *testing.T) {
	def := config.Default()

	data, err := toml.Marshal(def)
	if err != nil {
		t.Fatalf("marshal defaults: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ALE.AudioFormat != def.ALE.AudioFormat || cfg.Logging.Format != def.Logging.Format {
		t.Fatalf("defaults did not survive a TOML round trip: %+v", cfg)
	}
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.FFmpegPath != "ffmpeg" {
		t.Errorf("ffmpeg path = %q, want ffmpeg", cfg.Engine.FFmpegPath)
	}
	if cfg.Output.Width != 1280 || cfg.Output.Height != 720 {
		t.Errorf("output size = %dx%d, want 1280x720", cfg.Output.Width, cfg.Output.Height)
	}
	if cfg.Export.SegmentSeconds != 10 {
		t.Errorf("segment seconds = %d, want 10", cfg.Export.SegmentSeconds)
	}
	if cfg.Server.Port != 7446 {
		t.Errorf("port = %d, want 7446", cfg.Server.Port)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipforge.yaml")
	content := `
work_dir: /tmp/forge
engine:
  threads: 4
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.WorkDir != "/tmp/forge" {
		t.Errorf("work dir = %q", cfg.WorkDir)
	}
	if cfg.Engine.Threads != 4 {
		t.Errorf("threads = %d, want 4", cfg.Engine.Threads)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.Engine.FFmpegPath != "ffmpeg" {
		t.Errorf("ffmpeg path = %q, want the default", cfg.Engine.FFmpegPath)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipforge.yaml")
	if err := os.WriteFile(path, []byte("work_dir: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipforge.yaml")

	cfg := defaultConfig()
	cfg.Server.Port = 8123
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Port != 8123 {
		t.Errorf("port = %d, want 8123", loaded.Server.Port)
	}
}

func TestContextRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.WorkDir = "/somewhere"

	ctx := WithConfig(context.Background(), cfg)
	if got := FromContext(ctx); got.WorkDir != "/somewhere" {
		t.Errorf("work dir = %q, want /somewhere", got.WorkDir)
	}

	// A bare context falls back to defaults rather than nil.
	if got := FromContext(context.Background()); got == nil || got.Server.Port != 7446 {
		t.Error("FromContext without a stored config did not return defaults")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := Default()
	if *cfg != *def {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromPath_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "merge_dwell_ms: 450\nmin_visible: 80\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MergeDwellMs != 450 {
		t.Fatalf("expected merge_dwell_ms=450, got %d", cfg.MergeDwellMs)
	}
	if cfg.MinVisible != 80 {
		t.Fatalf("expected min_visible=80, got %d", cfg.MinVisible)
	}
	// Untouched fields keep the builtin values.
	if cfg.CascadeStep != Default().CascadeStep {
		t.Fatalf("expected default cascade_step, got %d", cfg.CascadeStep)
	}
}

func TestLoadFromPath_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("min_visible: [oops\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate_RejectsDefaultSmallerThanMinimum(t *testing.T) {
	cfg := Default()
	cfg.DefaultWindowWidth = cfg.MinWindowWidth - 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("builtin defaults must validate: %v", err)
	}
}

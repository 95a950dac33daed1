// Package config loads the floatile configuration: builtin defaults
// merged under an optional YAML file in the user's config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine tunables. Zero fields in the user file keep the
// builtin defaults.
type Config struct {
	// Minimum window/container dimensions during a resize.
	MinWindowWidth  int `yaml:"min_window_width"`
	MinWindowHeight int `yaml:"min_window_height"`

	// Default size for containers created without an explicit geometry.
	DefaultWindowWidth  int `yaml:"default_window_width"`
	DefaultWindowHeight int `yaml:"default_window_height"`

	// MinVisible is how many pixels of a container must stay reachable
	// inside the viewport on every edge during a drag.
	MinVisible int `yaml:"min_visible"`

	// EdgeMargin is how far a resizing edge may cross the viewport bounds.
	EdgeMargin int `yaml:"edge_margin"`

	// Cascade placement for successive containers: offset from viewport
	// center grows by CascadeStep per container, wrapping at CascadeMax.
	CascadeStep int `yaml:"cascade_step"`
	CascadeMax  int `yaml:"cascade_max"`

	// DragThreshold is the movement (px) below which a header press is a
	// click, not a drag.
	DragThreshold int `yaml:"drag_threshold"`

	// MergeDwellMs is how long a dragged container must hover over a
	// target before releasing merges them.
	MergeDwellMs int `yaml:"merge_dwell_ms"`

	// SurfacePollMs is the fallback poll interval for detached surfaces
	// whose host offers no close event.
	SurfacePollMs int `yaml:"surface_poll_ms"`
}

// Default returns the builtin configuration.
func Default() *Config {
	return &Config{
		MinWindowWidth:      200,
		MinWindowHeight:     120,
		DefaultWindowWidth:  520,
		DefaultWindowHeight: 360,
		MinVisible:          50,
		EdgeMargin:          10,
		CascadeStep:         30,
		CascadeMax:          210,
		DragThreshold:       5,
		MergeDwellMs:        300,
		SurfacePollMs:       500,
	}
}

// MergeDwell returns the merge dwell delay as a duration.
func (c *Config) MergeDwell() time.Duration {
	return time.Duration(c.MergeDwellMs) * time.Millisecond
}

// SurfacePoll returns the detached-surface poll interval as a duration.
func (c *Config) SurfacePoll() time.Duration {
	return time.Duration(c.SurfacePollMs) * time.Millisecond
}

// Validate rejects configurations the engine cannot operate under.
func (c *Config) Validate() error {
	if c.MinWindowWidth < 1 || c.MinWindowHeight < 1 {
		return fmt.Errorf("min window size must be positive, got %dx%d", c.MinWindowWidth, c.MinWindowHeight)
	}
	if c.DefaultWindowWidth < c.MinWindowWidth || c.DefaultWindowHeight < c.MinWindowHeight {
		return fmt.Errorf(
			"default window size %dx%d is below the minimum %dx%d",
			c.DefaultWindowWidth, c.DefaultWindowHeight, c.MinWindowWidth, c.MinWindowHeight,
		)
	}
	if c.MinVisible < 1 {
		return fmt.Errorf("min_visible must be positive, got %d", c.MinVisible)
	}
	if c.EdgeMargin < 0 {
		return fmt.Errorf("edge_margin must not be negative, got %d", c.EdgeMargin)
	}
	if c.CascadeStep < 0 || c.CascadeMax < 1 {
		return fmt.Errorf("invalid cascade settings: step=%d max=%d", c.CascadeStep, c.CascadeMax)
	}
	if c.DragThreshold < 0 {
		return fmt.Errorf("drag_threshold must not be negative, got %d", c.DragThreshold)
	}
	if c.MergeDwellMs < 0 {
		return fmt.Errorf("merge_dwell_ms must not be negative, got %d", c.MergeDwellMs)
	}
	if c.SurfacePollMs < 1 {
		return fmt.Errorf("surface_poll_ms must be positive, got %d", c.SurfacePollMs)
	}
	return nil
}

// DefaultConfigPath returns the standard location of the user config file.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "floatile", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the builtin defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit file path, merging
// it over the builtin defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.merge(&file)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays non-zero fields from the file config.
func (c *Config) merge(file *Config) {
	if file.MinWindowWidth > 0 {
		c.MinWindowWidth = file.MinWindowWidth
	}
	if file.MinWindowHeight > 0 {
		c.MinWindowHeight = file.MinWindowHeight
	}
	if file.DefaultWindowWidth > 0 {
		c.DefaultWindowWidth = file.DefaultWindowWidth
	}
	if file.DefaultWindowHeight > 0 {
		c.DefaultWindowHeight = file.DefaultWindowHeight
	}
	if file.MinVisible > 0 {
		c.MinVisible = file.MinVisible
	}
	if file.EdgeMargin > 0 {
		c.EdgeMargin = file.EdgeMargin
	}
	if file.CascadeStep > 0 {
		c.CascadeStep = file.CascadeStep
	}
	if file.CascadeMax > 0 {
		c.CascadeMax = file.CascadeMax
	}
	if file.DragThreshold > 0 {
		c.DragThreshold = file.DragThreshold
	}
	if file.MergeDwellMs > 0 {
		c.MergeDwellMs = file.MergeDwellMs
	}
	if file.SurfacePollMs > 0 {
		c.SurfacePollMs = file.SurfacePollMs
	}
}

// Print writes the effective configuration as YAML.
func (c *Config) Print() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(out), nil
}

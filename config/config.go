// Package config reads the JSON file that describes a photo sphere and merges CLI overrides into it.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-sphere/engine/overlay"
	"github.com/Carmen-Shannon/oxy-sphere/engine/panel"
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

// Defaults applied by Resolve.
const (
	DefaultTitle        = "oxy-sphere"
	DefaultWidth        = 1280
	DefaultHeight       = 720
	DefaultMarkerRadius = 12.0
)

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `json:"title,omitempty" jsonschema:"description=Window title"`
	Width  int    `json:"width,omitempty" jsonschema:"minimum=1,description=Initial window width in pixels"`
	Height int    `json:"height,omitempty" jsonschema:"minimum=1,description=Initial window height in pixels"`
}

// SphereConfig is the JSON file describing one photo sphere.
type SphereConfig struct {
	Photo         string                   `json:"photo" jsonschema:"title=Photo,description=Path or http(s) URL of an equirectangular image"`
	StartPosition *spherical.PixelPosition `json:"startPosition,omitempty" jsonschema:"description=Source pixel the view initially faces; defaults to the image midpoint"`
	AutoRotate    bool                     `json:"autoRotate,omitempty" jsonschema:"description=Rotate the view until the first interaction"`
	Features      []overlay.Feature        `json:"features,omitempty" jsonschema:"description=Hotspots anchored at source image pixels"`

	Window         WindowConfig `json:"window,omitempty"`
	MaxTextureSize int          `json:"maxTextureSize,omitempty" jsonschema:"minimum=0,description=Largest texture side; 0 uses the GPU limit"`
	FrameLimit     float64      `json:"frameLimit,omitempty" jsonschema:"minimum=0,description=Frame rate cap; 0 is uncapped"`
	MarkerRadius   float64      `json:"markerRadius,omitempty" jsonschema:"minimum=0,description=Click radius around feature markers in pixels"`
	Profile        bool         `json:"profile,omitempty" jsonschema:"description=Log frame statistics every second"`
	BridgeAddr     string       `json:"bridgeAddr,omitempty" jsonschema:"description=Listen address of the websocket event bridge; empty disables it"`
}

// Load reads a JSON config file and returns SphereConfig.
// Fields not set in the file keep their zero values.
func Load(path string) (SphereConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SphereConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg SphereConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SphereConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Photo      string
	AutoRotate bool
	Width      int
	Height     int
	Profile    bool
	Bridge     string
}

// Resolve applies flag overrides, fills defaults and drops features that cannot be placed.
// CLI flags take priority when non-zero/non-empty.
func (c *SphereConfig) Resolve(flags Flags) {
	if flags.Photo != "" {
		c.Photo = flags.Photo
	}
	if flags.AutoRotate {
		c.AutoRotate = true
	}
	if flags.Width > 0 {
		c.Window.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Window.Height = flags.Height
	}
	if flags.Profile {
		c.Profile = true
	}
	if flags.Bridge != "" {
		c.BridgeAddr = flags.Bridge
	}

	if c.Window.Title == "" {
		c.Window.Title = DefaultTitle
	}
	if c.Window.Width <= 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height <= 0 {
		c.Window.Height = DefaultHeight
	}
	if c.MarkerRadius <= 0 {
		c.MarkerRadius = DefaultMarkerRadius
	}
	if c.MaxTextureSize < 0 {
		c.MaxTextureSize = 0
	}
	if c.FrameLimit < 0 {
		c.FrameLimit = 0
	}
	if c.StartPosition != nil && (c.StartPosition.X < 0 || c.StartPosition.Y < 0) {
		log.Printf("[Config] ignoring negative start position (%.0f, %.0f)", c.StartPosition.X, c.StartPosition.Y)
		c.StartPosition = nil
	}

	// Negative feature coordinates are kept: they wrap around the sphere like any other angle.
	seen := make(map[int]bool, len(c.Features))
	kept := c.Features[:0]
	for _, f := range c.Features {
		if seen[f.ID] {
			log.Printf("[Config] dropping feature %d %q: duplicate id", f.ID, f.Name)
			continue
		}
		seen[f.ID] = true
		kept = append(kept, f)
	}
	c.Features = kept
}

// PanelConfig returns the panel view settings.
func (c SphereConfig) PanelConfig() panel.Config {
	return panel.Config{
		PhotoURL:      c.Photo,
		StartPosition: c.StartPosition,
		AutoRotate:    c.AutoRotate,
		Features:      append([]overlay.Feature(nil), c.Features...),
	}
}

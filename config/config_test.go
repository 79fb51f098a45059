package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-sphere/engine/overlay"
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sphere.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{
		"photo": "pano.jpg",
		"startPosition": {"x": 3119, "y": 1500},
		"autoRotate": true,
		"features": [{"id": 1, "name": "door", "x": 100, "y": 200}],
		"window": {"title": "Lobby", "width": 800}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Photo != "pano.jpg" || !cfg.AutoRotate {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.StartPosition == nil || *cfg.StartPosition != (spherical.PixelPosition{X: 3119, Y: 1500}) {
		t.Fatalf("start = %v", cfg.StartPosition)
	}
	if len(cfg.Features) != 1 || cfg.Features[0] != (overlay.Feature{ID: 1, Name: "door", X: 100, Y: 200}) {
		t.Fatalf("features = %+v", cfg.Features)
	}
	if cfg.Window.Title != "Lobby" || cfg.Window.Width != 800 || cfg.Window.Height != 0 {
		t.Fatalf("window = %+v", cfg.Window)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "config: read") {
		t.Fatalf("missing file error = %v", err)
	}
	if _, err := Load(writeFile(t, `{"photo": `)); err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Fatalf("malformed file error = %v", err)
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg SphereConfig
	cfg.Resolve(Flags{})

	if cfg.Window.Title != DefaultTitle || cfg.Window.Width != DefaultWidth || cfg.Window.Height != DefaultHeight {
		t.Fatalf("window = %+v", cfg.Window)
	}
	if cfg.MarkerRadius != DefaultMarkerRadius {
		t.Fatalf("marker radius = %v", cfg.MarkerRadius)
	}
	if cfg.AutoRotate || cfg.Profile || cfg.BridgeAddr != "" {
		t.Fatalf("unexpected toggles: %+v", cfg)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := SphereConfig{Photo: "a.jpg", Window: WindowConfig{Width: 640, Height: 480}}
	cfg.Resolve(Flags{Photo: "b.jpg", AutoRotate: true, Width: 1920, Profile: true, Bridge: ":8080"})

	if cfg.Photo != "b.jpg" {
		t.Fatalf("photo = %q, want b.jpg", cfg.Photo)
	}
	if !cfg.AutoRotate || !cfg.Profile || cfg.BridgeAddr != ":8080" {
		t.Fatalf("toggles = %+v", cfg)
	}
	if cfg.Window.Width != 1920 || cfg.Window.Height != 480 {
		t.Fatalf("window = %+v, want 1920x480", cfg.Window)
	}
}

func TestResolveSanitisesFeatures(t *testing.T) {
	cfg := SphereConfig{
		StartPosition: &spherical.PixelPosition{X: -1, Y: 5},
		Features: []overlay.Feature{
			{ID: 1, X: 10, Y: 10},
			{ID: 2, X: -5, Y: 10},
			{ID: 1, X: 20, Y: 20},
			{ID: 3, X: 0, Y: 0},
		},
	}
	cfg.Resolve(Flags{})

	if cfg.StartPosition != nil {
		t.Fatalf("start = %v, want nil", cfg.StartPosition)
	}
	var ids []int
	for _, f := range cfg.Features {
		ids = append(ids, f.ID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("feature ids = %v, want [1 2 3]", ids)
	}
	if cfg.Features[1].X != -5 {
		t.Fatalf("negative x = %v, want -5 kept as is", cfg.Features[1].X)
	}
	if cfg.Features[0].X != 10 {
		t.Fatal("first occurrence of a duplicate id must win")
	}
}

func TestPanelConfig(t *testing.T) {
	start := spherical.PixelPosition{X: 1, Y: 2}
	cfg := SphereConfig{Photo: "p.jpg", StartPosition: &start, AutoRotate: true, Features: []overlay.Feature{{ID: 4}}}
	pc := cfg.PanelConfig()

	if pc.PhotoURL != "p.jpg" || pc.StartPosition != &start || !pc.AutoRotate || len(pc.Features) != 1 {
		t.Fatalf("panel config = %+v", pc)
	}
	pc.Features[0].ID = 99
	if cfg.Features[0].ID != 4 {
		t.Fatal("panel config must not alias the feature slice")
	}
}

func TestSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema", "sphere.schema.json")
	if err := WriteSchema(path); err != nil {
		t.Fatalf("WriteSchema: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc["title"] != "oxy-sphere config" {
		t.Fatalf("title = %v", doc["title"])
	}
	for _, want := range []string{`"photo"`, `"features"`, `"startPosition"`, `"markerRadius"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("schema missing %s", want)
		}
	}
}

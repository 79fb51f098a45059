// Package overlay projects panorama features onto the viewport.
//
// A Feature is anchored at a pixel of the equirectangular source. Every frame the panel maps each
// anchor onto the sphere, pushes it through the camera and converts the result to canvas pixels.
// Nothing here touches the GPU, so the whole pass is testable with a plain Camera.
package overlay

import (
	"math"

	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

// Feature is a point of interest anchored at a fixed pixel of the source image.
type Feature struct {
	ID   int     `json:"id" jsonschema:"required,description=Unique feature identifier"`
	Name string  `json:"name" jsonschema:"description=Display name"`
	X    float64 `json:"x" jsonschema:"required,description=Anchor x in source image pixels"`
	Y    float64 `json:"y" jsonschema:"required,description=Anchor y in source image pixels"`
}

// Position returns the feature anchor as a pixel position.
func (f Feature) Position() spherical.PixelPosition {
	return spherical.PixelPosition{X: f.X, Y: f.Y}
}

// ProjectedFeature is a Feature placed on the canvas for the current frame.
type ProjectedFeature struct {
	Feature
	ScreenX int  `json:"screenX"`
	ScreenY int  `json:"screenY"`
	Hidden  bool `json:"hidden"`
}

// Projector maps a world-space point to normalized device coordinates.
// camera.Camera satisfies it.
type Projector interface {
	Project(x, y, z float32) (ndcX, ndcY, ndcZ float32, ok bool)
}

// ToScreen converts normalized device coordinates to canvas pixels. The y axis is flipped so that
// ndcY = 1 lands on the top row.
//
// Parameters:
//   - ndcX, ndcY: normalized device coordinates
//   - width, height: canvas size in pixels
//
// Returns:
//   - sx, sy: canvas pixel coordinates
func ToScreen(ndcX, ndcY float64, width, height int) (sx, sy int) {
	sx = int(math.Round((0.5 + ndcX/2) * float64(width)))
	sy = int(math.Round((0.5 - ndcY/2) * float64(height)))
	return sx, sy
}

// Visible reports whether a normalized depth is in front of the viewer. Anything past 1 is either
// behind the eye or beyond the far plane.
func Visible(ndcZ float64) bool {
	return ndcZ <= 1
}

// Project places every feature on the canvas.
// A degenerate viewport or an unknown image dimension yields every feature hidden at (0, 0).
//
// Parameters:
//   - p: the camera to project through
//   - dim: natural size of the panorama the anchors refer to
//   - radius: sphere radius shared with the mesh
//   - features: the features to project
//   - width, height: canvas size in pixels
//
// Returns:
//   - []ProjectedFeature: one entry per feature, in input order
func Project(p Projector, dim spherical.Dimension, radius float64, features []Feature, width, height int) []ProjectedFeature {
	out := make([]ProjectedFeature, len(features))
	degenerate := p == nil || width <= 0 || height <= 0 || !dim.Valid()
	for i, f := range features {
		out[i] = ProjectedFeature{Feature: f, Hidden: true}
		if degenerate {
			continue
		}

		dir, err := spherical.PixelToDirection(radius, f.Position(), dim)
		if err != nil {
			continue
		}
		x, y, z := dir.Float32()
		ndcX, ndcY, ndcZ, ok := p.Project(x, y, z)
		if !ok {
			continue
		}

		out[i].ScreenX, out[i].ScreenY = ToScreen(float64(ndcX), float64(ndcY), width, height)
		out[i].Hidden = !Visible(float64(ndcZ))
	}
	return out
}

// HitTest returns the visible projected feature closest to (x, y) within radius pixels.
//
// Parameters:
//   - projected: the features of the current frame
//   - x, y: canvas position to test
//   - radius: marker radius in pixels
//
// Returns:
//   - ProjectedFeature: the nearest hit
//   - bool: false when nothing visible is within radius
func HitTest(projected []ProjectedFeature, x, y, radius float64) (ProjectedFeature, bool) {
	best := -1
	bestDist := radius * radius
	for i, pf := range projected {
		if pf.Hidden {
			continue
		}
		dx := float64(pf.ScreenX) - x
		dy := float64(pf.ScreenY) - y
		if d := dx*dx + dy*dy; d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return ProjectedFeature{}, false
	}
	return projected[best], true
}

// CountVisible returns how many projected features are not hidden.
func CountVisible(projected []ProjectedFeature) int {
	n := 0
	for _, pf := range projected {
		if !pf.Hidden {
			n++
		}
	}
	return n
}

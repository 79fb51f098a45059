package panel

import (
	"github.com/Carmen-Shannon/oxy-sphere/engine/camera"
)

// PanelBuilderOption is a functional option for configuring a Panel via NewPanel.
type PanelBuilderOption func(*panel)

// WithCamera supplies the camera instead of the default one. If the camera has no controller one is
// created from the panel config.
//
// Parameters:
//   - cam: the camera to drive
//
// Returns:
//   - PanelBuilderOption: a function that applies the camera to a panel
func WithCamera(cam camera.Camera) PanelBuilderOption {
	return func(p *panel) {
		p.cam = cam
	}
}

// WithMarkerRadius sets the click radius around projected features.
//
// Parameters:
//   - radius: radius in canvas pixels
//
// Returns:
//   - PanelBuilderOption: a function that applies the marker radius to a panel
func WithMarkerRadius(radius float64) PanelBuilderOption {
	return func(p *panel) {
		if radius > 0 {
			p.markerRadius = radius
		}
	}
}

// WithClickSlop sets how far a press may travel and still activate a feature.
//
// Parameters:
//   - slop: distance in canvas pixels
//
// Returns:
//   - PanelBuilderOption: a function that applies the click slop to a panel
func WithClickSlop(slop float64) PanelBuilderOption {
	return func(p *panel) {
		if slop >= 0 {
			p.clickSlop = slop
		}
	}
}

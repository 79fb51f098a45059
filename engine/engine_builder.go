package engine

import (
	"github.com/Carmen-Shannon/oxy-sphere/engine/panel"
	"github.com/Carmen-Shannon/oxy-sphere/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate caps the frame rate in frames per second.
// Values <= 0 leave the loop uncapped; vsync still paces presentation.
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.frameLimit = frameDuration(fps)
	}
}

// WithWindow sets the window whose message pump drives the engine.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
		if w != nil {
			e.loop = w
		}
	}
}

// WithPanel registers a panel at the given key during engine construction.
//
// Parameters:
//   - key: ordering key (lower frames first)
//   - p: the panel
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPanel(key int, p panel.Panel) EngineBuilderOption {
	return func(e *engine) {
		e.panels[key] = p
	}
}

package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultScrollScale converts one notch of wheel travel into wheel delta units. Browsers report about
// 100 units per notch, which is what the zoom sensitivity is tuned for.
const DefaultScrollScale = 100.0

// Window provides platform windowing and pointer input for the panorama viewer.
// Every Set*Callback accepts nil to unsubscribe; a cleared callback is never invoked again.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels (or nil to disable)
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical wheel delta; positive means the wheel moved away
	//     from the user (zoom out), matching browser wheel events
	SetScrollCallback(callback func(deltaY float64))

	// SetPointerDownCallback sets the callback for mouse button presses.
	//
	// Parameters:
	//   - callback: function receiving the cursor position and whether the left (primary) button was pressed
	SetPointerDownCallback(callback func(x, y float64, primary bool))

	// SetPointerMoveCallback sets the callback for cursor movement. The mouse is the only pointer, so
	// moves are always reported as primary.
	//
	// Parameters:
	//   - callback: function receiving the cursor position and the primary flag
	SetPointerMoveCallback(callback func(x, y float64, primary bool))

	// SetPointerUpCallback sets the callback for mouse button releases.
	//
	// Parameters:
	//   - callback: function receiving the cursor position and whether the left (primary) button was released
	SetPointerUpCallback(callback func(x, y float64, primary bool))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// SetTitle updates the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Input callbacks run to completion inside the event poll,
	// then the update callback runs once per iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	// scrollScale multiplies GLFW wheel offsets into browser-like delta units.
	scrollScale float64

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(deltaY float64)
	onPointerDown func(x, y float64, primary bool)
	onPointerMove func(x, y float64, primary bool)
	onPointerUp   func(x, y float64, primary bool)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newEngineWindow applies defaults and options without touching the platform layer.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:       "oxy-sphere",
		maxWidth:    3840,
		maxHeight:   2160,
		minWidth:    320,
		minHeight:   200,
		width:       1280,
		height:      720,
		scrollScale: DefaultScrollScale,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(deltaY float64)) {
	w.onScroll = callback
}

func (w *engineWindow) SetPointerDownCallback(callback func(x, y float64, primary bool)) {
	w.onPointerDown = callback
}

func (w *engineWindow) SetPointerMoveCallback(callback func(x, y float64, primary bool)) {
	w.onPointerMove = callback
}

func (w *engineWindow) SetPointerUpCallback(callback func(x, y float64, primary bool)) {
	w.onPointerUp = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// dispatchScroll converts a GLFW vertical wheel offset (positive = scrolled up) into a
// browser-style deltaY and forwards it.
func (w *engineWindow) dispatchScroll(yoff float64) {
	if w.onScroll != nil {
		w.onScroll(-yoff * w.scrollScale)
	}
}

// dispatchButton forwards a button press or release. leftButton marks the primary pointer.
func (w *engineWindow) dispatchButton(x, y float64, leftButton, pressed bool) {
	if pressed {
		if w.onPointerDown != nil {
			w.onPointerDown(x, y, leftButton)
		}
		return
	}
	if w.onPointerUp != nil {
		w.onPointerUp(x, y, leftButton)
	}
}

func (w *engineWindow) dispatchMove(x, y float64) {
	if w.onPointerMove != nil {
		w.onPointerMove(x, y, true)
	}
}

func (w *engineWindow) dispatchResize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

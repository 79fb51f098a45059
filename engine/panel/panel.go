// Package panel drives one photo sphere view: it owns the camera and its controller, applies the
// panorama once the loader delivers it, and reprojects the hotspot features every frame.
//
// Every method except the loader's background decode runs on the frame loop thread. Input
// callbacks, Frame and the resize handler are all invoked by the same message pump.
package panel

import (
	"log"
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-sphere/common"
	"github.com/Carmen-Shannon/oxy-sphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-sphere/engine/loader"
	"github.com/Carmen-Shannon/oxy-sphere/engine/overlay"
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

const (
	// DefaultMarkerRadius is the pixel radius around a projected feature that accepts a click.
	DefaultMarkerRadius = 12.0
	// DefaultClickSlop is how far the pointer may travel between press and release and still count
	// as a click rather than a drag.
	DefaultClickSlop = 4.0
)

// SphereRenderer draws the textured sphere.
type SphereRenderer interface {
	SetPanorama(data common.TextureStagingData) error
	Render(viewProj [16]float32) error
	Resize(width, height int)
	Width() int
	Height() int
}

// InputSource delivers pointer, wheel and resize events. Passing nil unsubscribes.
type InputSource interface {
	SetPointerDownCallback(callback func(x, y float64, primary bool))
	SetPointerMoveCallback(callback func(x, y float64, primary bool))
	SetPointerUpCallback(callback func(x, y float64, primary bool))
	SetScrollCallback(callback func(deltaY float64))
	SetResizeCallback(callback func(width, height int))
}

// ImageLoader loads a panorama in the background. Close cancels outstanding loads.
type ImageLoader interface {
	Load(source string) <-chan loader.Result
	Close()
}

// Config describes what a panel shows.
type Config struct {
	// PhotoURL is a local path or http(s) URL of an equirectangular image.
	PhotoURL string `json:"photoUrl"`
	// StartPosition is the source pixel the view initially faces; nil means the image midpoint.
	StartPosition *spherical.PixelPosition `json:"startPosition,omitempty"`
	// AutoRotate spins the view until the first user interaction.
	AutoRotate bool `json:"autoRotate"`
	// Features are hotspots anchored at source pixels.
	Features []overlay.Feature `json:"features"`
}

// FeatureEvent is emitted when the user activates a feature.
type FeatureEvent struct {
	Feature overlay.Feature `json:"feature"`
	ScreenX int             `json:"screenX"`
	ScreenY int             `json:"screenY"`
}

// panel is the implementation of the Panel interface.
type panel struct {
	mu *sync.Mutex

	cfg      Config
	renderer SphereRenderer
	input    InputSource
	loader   ImageLoader
	cam      camera.Camera
	ctrl     camera.CameraController

	pending     <-chan loader.Result
	initialized bool
	dimension   spherical.Dimension
	projected   []overlay.ProjectedFeature

	markerRadius float64
	clickSlop    float64
	pressX       float64
	pressY       float64
	pressed      bool

	onActivated []func(FeatureEvent)
	onProjected func([]overlay.ProjectedFeature)
	onLoaded    func(loader.Result)

	closed bool
}

// Panel is a single interactive photo sphere.
type Panel interface {
	// Frame advances one frame: it applies a finished load, steps auto-rotation, updates the
	// camera, renders and reprojects the features.
	Frame()

	// Resize applies a new viewport size to the camera and renderer and reprojects at once.
	//
	// Parameters:
	//   - width, height: the new canvas size in pixels
	Resize(width, height int)

	// Zoom changes the field of view by one wheel step.
	//
	// Parameters:
	//   - deltaY: wheel delta; positive zooms out
	Zoom(deltaY float64)

	// Initialized reports whether the panorama has been applied.
	Initialized() bool

	// Dimension returns the natural panorama size, zero until initialized.
	Dimension() spherical.Dimension

	// Features returns a copy of the most recent projection.
	Features() []overlay.ProjectedFeature

	// Orientation returns the current view orientation.
	Orientation() camera.Orientation

	// Camera returns the panel's camera.
	Camera() camera.Camera

	// PixelAt returns the source pixel under a canvas point.
	//
	// Parameters:
	//   - x, y: canvas coordinates
	//
	// Returns:
	//   - spherical.PixelPosition: the source pixel
	//   - bool: false before initialization or for a degenerate viewport
	PixelAt(x, y float64) (spherical.PixelPosition, bool)

	// ActivateFeature emits a FeatureEvent for a visible feature.
	//
	// Parameters:
	//   - id: the feature ID
	//
	// Returns:
	//   - bool: true if the feature exists and is visible
	ActivateFeature(id int) bool

	// OnFeatureActivated registers a listener for feature activation.
	OnFeatureActivated(callback func(FeatureEvent))

	// OnProjected registers a listener called with every fresh projection.
	OnProjected(callback func([]overlay.ProjectedFeature))

	// OnLoaded registers a listener called once the load result has been handled.
	OnLoaded(callback func(loader.Result))

	// Close unsubscribes from input, cancels any drag, stops the loader and stops reacting to frames.
	Close()
}

var _ Panel = &panel{}

// NewPanel creates a panel, subscribes to input and starts loading cfg.PhotoURL.
// Panics if any collaborator is nil.
//
// Parameters:
//   - cfg: the view configuration
//   - r: the sphere renderer
//   - in: the input source
//   - ld: the image loader
//   - options: functional options to configure the panel
//
// Returns:
//   - Panel: the new panel
func NewPanel(cfg Config, r SphereRenderer, in InputSource, ld ImageLoader, options ...PanelBuilderOption) Panel {
	if r == nil {
		panic("panel: NewPanel requires a non-nil SphereRenderer")
	}
	if in == nil {
		panic("panel: NewPanel requires a non-nil InputSource")
	}
	if ld == nil {
		panic("panel: NewPanel requires a non-nil ImageLoader")
	}

	p := &panel{
		mu:           &sync.Mutex{},
		cfg:          cfg,
		renderer:     r,
		input:        in,
		loader:       ld,
		markerRadius: DefaultMarkerRadius,
		clickSlop:    DefaultClickSlop,
	}
	p.cfg.Features = append([]overlay.Feature(nil), cfg.Features...)

	for _, option := range options {
		option(p)
	}

	if p.cam == nil {
		p.ctrl = camera.NewCameraController(camera.WithAutoRotate(cfg.AutoRotate))
		p.cam = camera.NewCamera(camera.WithController(p.ctrl))
	} else {
		p.ctrl = p.cam.Controller()
		if p.ctrl == nil {
			p.ctrl = camera.NewCameraController(camera.WithAutoRotate(cfg.AutoRotate))
			p.cam.SetController(p.ctrl)
		} else {
			p.ctrl.SetAutoRotate(cfg.AutoRotate)
		}
	}
	p.cam.SetViewport(r.Width(), r.Height())

	in.SetPointerDownCallback(p.pointerDown)
	in.SetPointerMoveCallback(p.pointerMove)
	in.SetPointerUpCallback(p.pointerUp)
	in.SetScrollCallback(p.Zoom)
	in.SetResizeCallback(p.Resize)

	p.pending = ld.Load(cfg.PhotoURL)
	return p
}

func (p *panel) Frame() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	var (
		res    loader.Result
		loaded bool
	)
	if p.pending != nil {
		select {
		case r, ok := <-p.pending:
			p.pending = nil
			res, loaded = r, ok
			if !ok {
				log.Printf("[Panel] load of %q abandoned", p.cfg.PhotoURL)
			}
		default:
		}
	}
	p.mu.Unlock()

	if loaded {
		p.applyLoad(res)
	}

	initialized := p.Initialized()
	if initialized {
		p.ctrl.Tick()
		p.cam.Update()
	}

	if err := p.renderer.Render(p.cam.ViewProjectionMatrix()); err != nil {
		log.Printf("[Panel] render: %v", err)
	}

	if initialized {
		p.reproject()
	}
}

// applyLoad sets the initial orientation and uploads the texture. A failed load leaves the panel
// uninitialized.
func (p *panel) applyLoad(res loader.Result) {
	defer func() {
		p.mu.Lock()
		cb := p.onLoaded
		p.mu.Unlock()
		if cb != nil {
			cb(res)
		}
	}()

	if res.Err != nil {
		log.Printf("[Panel] failed to load %q: %v", res.Source, res.Err)
		return
	}
	if !res.Dimension.Valid() {
		log.Printf("[Panel] %q has no usable size %.0fx%.0f", res.Source, res.Dimension.Width, res.Dimension.Height)
		return
	}

	start := res.Dimension.Center()
	if p.cfg.StartPosition != nil {
		start = *p.cfg.StartPosition
	}
	if err := p.ctrl.LookAtPixel(start, res.Dimension); err != nil {
		log.Printf("[Panel] start position: %v", err)
		return
	}

	if err := p.renderer.SetPanorama(res.Texture); err != nil {
		log.Printf("[Panel] upload %q: %v", res.Source, err)
		return
	}
	p.cam.Update()

	p.mu.Lock()
	p.dimension = res.Dimension
	p.initialized = true
	p.mu.Unlock()
	log.Printf("[Panel] loaded %q (%.0fx%.0f), %d features", res.Source, res.Dimension.Width, res.Dimension.Height, len(p.cfg.Features))
}

// reproject recomputes the projected features and publishes them.
func (p *panel) reproject() {
	p.mu.Lock()
	projected := overlay.Project(p.cam, p.dimension, p.ctrl.Radius(), p.cfg.Features, p.renderer.Width(), p.renderer.Height())
	p.projected = projected
	cb := p.onProjected
	p.mu.Unlock()

	if cb != nil {
		cb(append([]overlay.ProjectedFeature(nil), projected...))
	}
}

func (p *panel) Resize(width, height int) {
	if p.isClosed() {
		return
	}
	// Degenerate sizes leave the renderer and the last projection untouched.
	if !p.cam.SetViewport(width, height) {
		return
	}
	p.renderer.Resize(width, height)
	if p.Initialized() {
		p.reproject()
	}
}

func (p *panel) Zoom(deltaY float64) {
	if p.isClosed() {
		return
	}
	p.cam.Zoom(float32(deltaY))
}

func (p *panel) pointerDown(x, y float64, primary bool) {
	if !primary || p.isClosed() {
		return
	}
	p.ctrl.PointerDown(x, y, primary)

	p.mu.Lock()
	p.pressX, p.pressY, p.pressed = x, y, true
	p.mu.Unlock()
}

func (p *panel) pointerMove(x, y float64, primary bool) {
	if !primary || p.isClosed() {
		return
	}
	p.ctrl.PointerMove(x, y, primary)
}

func (p *panel) pointerUp(x, y float64, primary bool) {
	if !primary || p.isClosed() {
		return
	}
	session, ok := p.ctrl.PointerUp(primary)

	p.mu.Lock()
	wasPressed := p.pressed
	p.pressed = false
	slop := p.clickSlop
	p.mu.Unlock()

	if !ok || !wasPressed || session.Moved(x, y, slop) {
		return
	}
	p.click(x, y)
}

// click activates the visible feature nearest to a canvas point, if any is within the marker radius.
func (p *panel) click(x, y float64) {
	p.mu.Lock()
	hit, ok := overlay.HitTest(p.projected, x, y, p.markerRadius)
	p.mu.Unlock()
	if ok {
		p.emit(hit)
	}
}

func (p *panel) emit(pf overlay.ProjectedFeature) {
	p.mu.Lock()
	listeners := slices.Clone(p.onActivated)
	p.mu.Unlock()

	ev := FeatureEvent{Feature: pf.Feature, ScreenX: pf.ScreenX, ScreenY: pf.ScreenY}
	log.Printf("[Panel] feature %d %q activated at (%d, %d)", ev.Feature.ID, ev.Feature.Name, ev.ScreenX, ev.ScreenY)
	for _, cb := range listeners {
		cb(ev)
	}
}

func (p *panel) ActivateFeature(id int) bool {
	p.mu.Lock()
	var (
		found overlay.ProjectedFeature
		ok    bool
	)
	for _, pf := range p.projected {
		if pf.ID == id && !pf.Hidden {
			found, ok = pf, true
			break
		}
	}
	p.mu.Unlock()

	if ok {
		p.emit(found)
	}
	return ok
}

func (p *panel) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

func (p *panel) Dimension() spherical.Dimension {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimension
}

func (p *panel) Features() []overlay.ProjectedFeature {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]overlay.ProjectedFeature(nil), p.projected...)
}

func (p *panel) Orientation() camera.Orientation {
	return p.ctrl.Orientation()
}

func (p *panel) Camera() camera.Camera {
	return p.cam
}

func (p *panel) PixelAt(x, y float64) (spherical.PixelPosition, bool) {
	p.mu.Lock()
	dim := p.dimension
	initialized := p.initialized
	p.mu.Unlock()

	w, h := p.renderer.Width(), p.renderer.Height()
	if !initialized || w <= 0 || h <= 0 {
		return spherical.PixelPosition{}, false
	}

	ndcX := float32(x/float64(w)*2 - 1)
	ndcY := float32(1 - y/float64(h)*2)
	px, py, pz := p.cam.Unproject(ndcX, ndcY)
	ex, ey, ez := p.cam.Position()

	hit, ok := raySphere(
		spherical.Vector3{X: float64(ex), Y: float64(ey), Z: float64(ez)},
		spherical.Vector3{X: float64(px - ex), Y: float64(py - ey), Z: float64(pz - ez)},
		p.ctrl.Radius(),
	)
	if !ok {
		return spherical.PixelPosition{}, false
	}

	pos, err := spherical.AngleToPixel(spherical.DirectionToAngle(hit), dim)
	if err != nil {
		return spherical.PixelPosition{}, false
	}
	return pos, true
}

// raySphere intersects a ray starting inside a sphere centred on the origin with that sphere.
func raySphere(origin, dir spherical.Vector3, radius float64) (spherical.Vector3, bool) {
	l := math.Sqrt(dir.X*dir.X + dir.Y*dir.Y + dir.Z*dir.Z)
	if l == 0 {
		return spherical.Vector3{}, false
	}
	dx, dy, dz := dir.X/l, dir.Y/l, dir.Z/l

	b := origin.X*dx + origin.Y*dy + origin.Z*dz
	c := origin.X*origin.X + origin.Y*origin.Y + origin.Z*origin.Z - radius*radius
	disc := b*b - c
	if disc < 0 {
		return spherical.Vector3{}, false
	}
	t := -b + math.Sqrt(disc)
	if t < 0 {
		return spherical.Vector3{}, false
	}
	return spherical.Vector3{X: origin.X + t*dx, Y: origin.Y + t*dy, Z: origin.Z + t*dz}, true
}

func (p *panel) OnFeatureActivated(callback func(FeatureEvent)) {
	if callback == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onActivated = append(p.onActivated, callback)
}

func (p *panel) OnProjected(callback func([]overlay.ProjectedFeature)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProjected = callback
}

func (p *panel) OnLoaded(callback func(loader.Result)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onLoaded = callback
}

func (p *panel) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.pending = nil
	p.pressed = false
	p.mu.Unlock()

	p.input.SetPointerDownCallback(nil)
	p.input.SetPointerMoveCallback(nil)
	p.input.SetPointerUpCallback(nil)
	p.input.SetScrollCallback(nil)
	p.input.SetResizeCallback(nil)
	p.ctrl.CancelDrag()
	p.loader.Close()
}

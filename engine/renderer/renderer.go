package renderer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-sphere/common"
	"github.com/Carmen-Shannon/oxy-sphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-sphere/engine/model"
	"github.com/Carmen-Shannon/oxy-sphere/engine/window"
)

// ErrInvalidPanorama is returned by SetPanorama when the staging data is empty or its pixel buffer
// does not match its size.
var ErrInvalidPanorama = errors.New("renderer: invalid panorama staging data")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend
	sphere  model.Model

	width, height int
	hasPanorama   bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
	sampler              SamplerStagingData
	clearColor           [3]float64
}

// Renderer draws an equirectangular panorama on the inside of a sphere.
//
// The renderer owns the GPU device, the surface, one pipeline and the sphere mesh. Callers hand it
// a decoded panorama once and a view-projection matrix every frame.
type Renderer interface {
	// SetPanorama uploads the panorama texture, replacing any previous one.
	//
	// Parameters:
	//   - data: RGBA8 pixels and their size
	//
	// Returns:
	//   - error: ErrInvalidPanorama for malformed data, or the GPU error
	SetPanorama(data common.TextureStagingData) error

	// Render draws one frame with the given camera matrix and presents it. Before a panorama is set
	// the frame is only cleared. A zero-sized surface skips the frame.
	//
	// Parameters:
	//   - viewProj: combined view-projection matrix (column-major)
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	Render(viewProj [16]float32) error

	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Width returns the current surface width in pixels.
	Width() int

	// Height returns the current surface height in pixels.
	Height() int

	// MaxTextureDimension returns the largest texture side the device accepts.
	//
	// Returns:
	//   - int: the limit in texels
	MaxTextureDimension() int

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Release frees every GPU resource held by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the WebGPU renderer for a window, builds the sphere pipeline and configures the
// surface for the window's current framebuffer size.
//
// Parameters:
//   - win: the window to present into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the ready renderer
func NewRenderer(win window.Window, options ...RendererBuilderOption) Renderer {
	if win == nil {
		panic("renderer: NewRenderer requires a non-nil Window")
	}
	r := &renderer{
		mu:          &sync.Mutex{},
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
		clearColor:  [3]float64{0.05, 0.05, 0.05},
	}
	for _, opt := range options {
		opt(r)
	}
	if r.sphere == nil {
		r.sphere = model.NewSphere()
	}

	r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.clearColor)
	r.backend.SetPresentMode(r.presentMode)
	r.resize(win.Width(), win.Height())

	if err := r.backend.InitPipeline(); err != nil {
		panic(err)
	}
	if err := r.backend.InitMesh(r.sphere.VertexData(), r.sphere.IndexData(), r.sphere.IndexCount()); err != nil {
		panic(err)
	}
	return r
}

func (r *renderer) SetPanorama(data common.TextureStagingData) error {
	if !data.Valid() {
		return ErrInvalidPanorama
	}
	if err := r.backend.SetPanorama(data, r.sampler); err != nil {
		return err
	}
	r.mu.Lock()
	r.hasPanorama = true
	r.mu.Unlock()
	return nil
}

func (r *renderer) Render(viewProj [16]float32) error {
	r.mu.Lock()
	w, h, draw := r.width, r.height, r.hasPanorama
	r.mu.Unlock()
	if w <= 0 || h <= 0 {
		return nil
	}

	uniform := camera.GPUCameraUniform{ViewProj: viewProj}
	r.backend.WriteCamera(uniform.Marshal())

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	if draw {
		r.backend.DrawPanorama()
	}
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.resize(width, height)
}

func (r *renderer) resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	if width <= 0 || height <= 0 {
		// minimized; keep the previous configuration until a real size arrives
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

func (r *renderer) Height() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.height
}

func (r *renderer) MaxTextureDimension() int {
	return int(r.backend.MaxTextureDimension())
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Release() {
	r.backend.Release()
}

package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-sphere/common"
)

const (
	// DefaultFov is the initial vertical field of view in degrees.
	DefaultFov = 85.0
	// DefaultMinFov is the narrowest field of view reachable by zooming, in degrees.
	DefaultMinFov = 10.0
	// DefaultMaxFov is the widest field of view reachable by zooming, in degrees.
	DefaultMaxFov = 75.0
	// DefaultZoomSpeed is the field of view change in degrees per unit of wheel delta.
	DefaultZoomSpeed = 0.05
)

type cameraImpl struct {
	mu *sync.Mutex

	up [3]float32

	fov    float32 // degrees
	aspect float32
	near   float32
	far    float32

	minFov    float32
	maxFov    float32
	zoomSpeed float32

	position [3]float32
	target   [3]float32

	viewMatrix                  [16]float32
	projectionMatrix            [16]float32
	viewProjectionMatrix        [16]float32
	inverseViewProjectionMatrix [16]float32

	controller CameraController
}

// Camera defines the interface for the photo sphere camera.
// The camera holds perspective settings, computes view/projection matrices from an attached
// CameraController each frame via Update(), and projects world points to normalized device
// coordinates for overlay placement.
type Camera interface {
	// Up returns the camera's up vector.
	//
	// Returns:
	//   - x, y, z: up vector components
	Up() (x, y, z float32)

	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// FovBounds returns the field of view range reachable through Zoom.
	//
	// Returns:
	//   - minFov, maxFov: bounds in degrees
	FovBounds() (minFov, maxFov float32)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Position returns the eye position used by the last matrix update.
	//
	// Returns:
	//   - x, y, z: world-space eye position
	Position() (x, y, z float32)

	// Target returns the look-at point used by the last matrix update.
	//
	// Returns:
	//   - x, y, z: world-space look-at point
	Target() (x, y, z float32)

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Project transforms a world-space point into normalized device coordinates with the current
	// view-projection matrix. Points behind the eye come out with ndcZ > 1.
	//
	// Parameters:
	//   - x, y, z: world-space point
	//
	// Returns:
	//   - ndcX, ndcY, ndcZ: normalized device coordinates
	//   - ok: false when the point lies on the eye plane and cannot be divided
	Project(x, y, z float32) (ndcX, ndcY, ndcZ float32, ok bool)

	// Unproject returns the world-space point on the far half of the frustum under the given
	// normalized device coordinates.
	//
	// Parameters:
	//   - ndcX, ndcY: normalized device coordinates in [-1, 1]
	//
	// Returns:
	//   - x, y, z: world-space point
	Unproject(ndcX, ndcY float32) (x, y, z float32)

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position/target from the controller and recomputes matrices.
	// Should be called once per frame after the controller ticks.
	// If no controller is attached, this method does nothing.
	Update()

	// Zoom adjusts the field of view by wheel input: fov += deltaY * zoomSpeed, clamped to the
	// fov bounds. The projection matrix is recomputed immediately.
	//
	// Parameters:
	//   - deltaY: vertical wheel delta (positive widens the view)
	//
	// Returns:
	//   - float32: the resulting field of view in degrees
	Zoom(deltaY float32) float32

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - x, y, z: up vector components
	SetUp(x, y, z float32)

	// SetFov sets the field of view in degrees and recomputes matrices. The value is not clamped;
	// only Zoom enforces the fov bounds.
	//
	// Parameters:
	//   - fov: field of view in degrees
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Non-positive ratios are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetViewport derives the aspect ratio from a viewport size. A degenerate viewport (either side
	// zero or negative) leaves the aspect untouched.
	//
	// Parameters:
	//   - width, height: viewport size in pixels
	//
	// Returns:
	//   - bool: true if the aspect was updated
	SetViewport(width, height int) bool

	// SetNear sets the near clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the photo sphere perspective defaults: 85 degree vertical
// field of view, aspect 1, near 0.1 and far 1000. Zoom is bounded to [10, 75] degrees.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:        &sync.Mutex{},
		up:        [3]float32{0, 1, 0},
		fov:       DefaultFov,
		aspect:    1.0,
		near:      0.1,
		far:       1000.0,
		minFov:    DefaultMinFov,
		maxFov:    DefaultMaxFov,
		zoomSpeed: DefaultZoomSpeed,
		target:    [3]float32{0, 0, -1},
	}
	common.Identity(c.viewMatrix[:])
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.readController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Up() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up[0], c.up[1], c.up[2]
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) FovBounds() (minFov, maxFov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minFov, c.maxFov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *cameraImpl) Target() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target[0], c.target[1], c.target[2]
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Project(x, y, z float32) (ndcX, ndcY, ndcZ float32, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ProjectPoint(c.viewProjectionMatrix[:], x, y, z)
}

func (c *cameraImpl) Unproject(ndcX, ndcY float32) (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := common.TransformPoint(c.inverseViewProjectionMatrix[:], ndcX, ndcY, 0.5)
	return p[0], p[1], p[2]
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.readController()
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(deltaY float32) float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(c.fov+deltaY*c.zoomSpeed, c.minFov, c.maxFov)
	c.updateMatrices()
	return c.fov
}

func (c *cameraImpl) SetUp(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetViewport(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.SetAspect(float32(width) / float32(height))
	return true
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

// readController copies the eye position and look-at point from the controller.
// Caller must hold the mutex (or be the constructor).
func (c *cameraImpl) readController() {
	px, py, pz := c.controller.Position()
	tx, ty, tz := c.controller.Target()
	c.position = [3]float32{px, py, pz}
	c.target = [3]float32{tx, ty, tz}
}

// updateMatrices recalculates the view, projection, view-projection and inverse view-projection
// matrices from the cached eye, target and perspective settings.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:],
		c.position[0], c.position[1], c.position[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)

	common.Perspective(c.projectionMatrix[:],
		float32(common.DegToRad(float64(c.fov))), c.aspect, c.near, c.far,
	)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	common.Invert4(c.inverseViewProjectionMatrix[:], c.viewProjectionMatrix[:])
}

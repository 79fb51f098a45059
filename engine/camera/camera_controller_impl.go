package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

// cameraControllerImpl is the single implementation of CameraController.
// The eye sits near the sphere centre and the target is the point on the sphere the orientation
// faces. Drag and auto-rotate both write the same orientation; the latch decides which one wins.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position [3]float32
	radius   float64

	orientation Orientation
	minLat      float64
	maxLat      float64

	// session is non-nil exactly while the drag state machine is in DragActive.
	session     *DragSession
	sensitivity float64

	autoRotate     bool
	autoRotateStep float64
	interacted     bool
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller with the photo sphere defaults: eye at
// (0, 0, 0.1), unit sphere, latitude bounds [-85, 85], drag sensitivity 0.1 degrees per pixel and an
// auto-rotate step of 0.01 degrees per frame.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 0, 0.1},
		radius:   1,

		minLat: DefaultMinLat,
		maxLat: DefaultMaxLat,

		sensitivity:    0.1,
		autoRotateStep: 0.01,
	}

	for _, option := range options {
		option(cc)
	}

	if cc.minLat > cc.maxLat {
		cc.minLat, cc.maxLat = cc.maxLat, cc.minLat
	}
	cc.orientation = cc.orientation.Clamped(cc.minLat, cc.maxLat)
	return cc
}

// setOrientation stores o with the latitude clamp applied.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) setOrientation(o Orientation) {
	cc.orientation = o.Clamped(cc.minLat, cc.maxLat)
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) SetPosition(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = [3]float32{x, y, z}
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.orientation.Direction(cc.radius).Float32()
}

func (cc *cameraControllerImpl) Radius() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Orientation() Orientation {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.orientation
}

func (cc *cameraControllerImpl) SetOrientation(o Orientation) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.setOrientation(o)
}

func (cc *cameraControllerImpl) LookAtPixel(pos spherical.PixelPosition, dim spherical.Dimension) error {
	o, err := OrientationFromPixel(pos, dim)
	if err != nil {
		return err
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.setOrientation(o)
	return nil
}

func (cc *cameraControllerImpl) LatBounds() (minLat, maxLat float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minLat, cc.maxLat
}

func (cc *cameraControllerImpl) Tick() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	next := cc.orientation
	if cc.autoRotate && !cc.interacted {
		next.Lng += cc.autoRotateStep
	}
	cc.setOrientation(next)
}

// --- dragCameraController implementation ---

func (cc *cameraControllerImpl) PointerDown(x, y float64, primary bool) {
	if !primary {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.interacted = true
	cc.session = &DragSession{
		StartX:   x,
		StartY:   y,
		Baseline: cc.orientation,
	}
}

func (cc *cameraControllerImpl) PointerMove(x, y float64, primary bool) {
	if !primary {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.session == nil {
		return
	}
	cc.setOrientation(cc.session.OrientationAt(x, y, cc.sensitivity))
}

func (cc *cameraControllerImpl) PointerUp(primary bool) (DragSession, bool) {
	if !primary {
		return DragSession{}, false
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.session == nil {
		return DragSession{}, false
	}
	ended := *cc.session
	cc.session = nil
	return ended, true
}

func (cc *cameraControllerImpl) CancelDrag() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.session = nil
}

func (cc *cameraControllerImpl) DragState() DragState {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.session == nil {
		return DragIdle
	}
	return DragActive
}

func (cc *cameraControllerImpl) Session() (DragSession, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.session == nil {
		return DragSession{}, false
	}
	return *cc.session, true
}

func (cc *cameraControllerImpl) Sensitivity() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sensitivity
}

// --- autoRotateCameraController implementation ---

func (cc *cameraControllerImpl) AutoRotate() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.autoRotate
}

func (cc *cameraControllerImpl) SetAutoRotate(enabled bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.autoRotate = enabled
}

func (cc *cameraControllerImpl) AutoRotateStep() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.autoRotateStep
}

func (cc *cameraControllerImpl) Interacted() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.interacted
}

func (cc *cameraControllerImpl) MarkInteracted() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.interacted = true
}

func (cc *cameraControllerImpl) Rotating() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.autoRotate && !cc.interacted
}

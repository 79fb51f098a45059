package camera

import (
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

// CameraController defines the union interface for the photo sphere's control model.
// The controller owns the view orientation and the eye position; Camera reads Position and
// Target from it and computes view/projection matrices. Embeds dragCameraController and
// autoRotateCameraController so pointer drags and auto-rotation act on the same orientation.
type CameraController interface {
	dragCameraController
	autoRotateCameraController

	// Position returns the camera's world-space eye position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// SetPosition sets the camera's world-space eye position.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// Target returns the point on the panorama sphere the camera looks at, derived from the
	// current orientation.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Radius returns the radius of the sphere the panorama is mapped onto.
	//
	// Returns:
	//   - float64: sphere radius shared with the mesh geometry
	Radius() float64

	// Orientation returns the current view orientation. Lat is always within the latitude bounds.
	//
	// Returns:
	//   - Orientation: latitude/longitude in degrees
	Orientation() Orientation

	// SetOrientation replaces the view orientation. Lat is clamped to the latitude bounds.
	//
	// Parameters:
	//   - o: the new orientation
	SetOrientation(o Orientation)

	// LookAtPixel points the view at a pixel of the panorama.
	//
	// Parameters:
	//   - pos: the pixel to face
	//   - dim: the natural size of the panorama
	//
	// Returns:
	//   - error: spherical.ErrInvalidDimension if the dimension is not known
	LookAtPixel(pos spherical.PixelPosition, dim spherical.Dimension) error

	// LatBounds returns the latitude clamp range in degrees.
	//
	// Returns:
	//   - minLat, maxLat: the latitude bounds
	LatBounds() (minLat, maxLat float64)

	// Tick advances one frame: applies the auto-rotate step when it is allowed and re-clamps the
	// latitude.
	Tick()
}

// dragCameraController defines the pointer-drag state machine (Idle -> Dragging -> Idle).
// Only the primary pointer is honoured; secondary pointers are ignored at every stage.
type dragCameraController interface {
	// PointerDown starts a drag session for a primary pointer: records the screen position,
	// snapshots the orientation as the baseline and latches the interaction flag.
	//
	// Parameters:
	//   - x, y: pointer screen coordinates
	//   - primary: whether the event belongs to the primary pointer
	PointerDown(x, y float64, primary bool)

	// PointerMove recomputes the orientation from the session baseline while dragging.
	//
	// Parameters:
	//   - x, y: pointer screen coordinates
	//   - primary: whether the event belongs to the primary pointer
	PointerMove(x, y float64, primary bool)

	// PointerUp ends the drag session for the primary pointer.
	//
	// Parameters:
	//   - primary: whether the event belongs to the primary pointer
	//
	// Returns:
	//   - DragSession: the session that ended
	//   - bool: false if no session was active or the pointer was not primary
	PointerUp(primary bool) (DragSession, bool)

	// CancelDrag discards any active session without further orientation changes.
	CancelDrag()

	// DragState returns the state of the drag state machine.
	//
	// Returns:
	//   - DragState: DragIdle or DragActive
	DragState() DragState

	// Session returns the active drag session.
	//
	// Returns:
	//   - DragSession: the active session
	//   - bool: false when idle
	Session() (DragSession, bool)

	// Sensitivity returns the drag sensitivity in degrees per pixel.
	//
	// Returns:
	//   - float64: degrees per pixel of pointer travel
	Sensitivity() float64
}

// autoRotateCameraController defines auto-rotation and the one-way user-interaction latch.
type autoRotateCameraController interface {
	// AutoRotate returns whether auto-rotation has been requested.
	//
	// Returns:
	//   - bool: true if the sphere configuration asks for auto-rotation
	AutoRotate() bool

	// SetAutoRotate requests or withdraws auto-rotation. It has no effect once the user has
	// interacted.
	//
	// Parameters:
	//   - enabled: the requested auto-rotate flag
	SetAutoRotate(enabled bool)

	// AutoRotateStep returns the longitude increment in degrees applied per frame.
	//
	// Returns:
	//   - float64: degrees per frame
	AutoRotateStep() float64

	// Interacted returns the user-interaction latch.
	//
	// Returns:
	//   - bool: true once any pointer interaction has been recorded
	Interacted() bool

	// MarkInteracted sets the user-interaction latch. The latch never resets.
	MarkInteracted()

	// Rotating returns whether the next Tick will advance the longitude.
	//
	// Returns:
	//   - bool: true while auto-rotate is requested and the latch is unset
	Rotating() bool
}

package camera

// DragState is the state of the pointer-drag state machine.
type DragState int

const (
	// DragIdle means no primary pointer is held down.
	DragIdle DragState = iota
	// DragActive means a primary pointer went down and has not been released yet.
	DragActive
)

func (s DragState) String() string {
	switch s {
	case DragActive:
		return "dragging"
	default:
		return "idle"
	}
}

// DragSession is the record owned by one primary pointer-down to pointer-up interval. It is created
// on entry to DragActive and discarded on release or cancellation.
type DragSession struct {
	// StartX, StartY are the screen coordinates of the pointer-down event.
	StartX, StartY float64
	// Baseline is the orientation snapshot taken at pointer-down.
	Baseline Orientation
}

// OrientationAt computes the orientation for the pointer at (x, y) relative to the session baseline.
// The result depends only on the session and the current pointer position, so intermediate move
// events never accumulate error.
//
// Parameters:
//   - x, y: current pointer screen coordinates
//   - sensitivity: degrees per pixel
//
// Returns:
//   - Orientation: the unclamped orientation
func (s DragSession) OrientationAt(x, y, sensitivity float64) Orientation {
	return Orientation{
		Lat: (y-s.StartY)*sensitivity + s.Baseline.Lat,
		Lng: (s.StartX-x)*sensitivity + s.Baseline.Lng,
	}
}

// Moved reports whether the pointer at (x, y) travelled farther than slop pixels from the press.
func (s DragSession) Moved(x, y, slop float64) bool {
	dx := x - s.StartX
	dy := y - s.StartY
	return dx*dx+dy*dy > slop*slop
}

package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the eye position.
//
// Parameters:
//   - x, y, z: world-space eye position
//
// Returns:
//   - CameraControllerOption: functional option to set the eye position
func WithPosition(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = [3]float32{x, y, z}
	}
}

// WithRadius sets the radius of the sphere the panorama is mapped onto.
// Non-positive values are ignored.
//
// Parameters:
//   - radius: sphere radius shared with the mesh geometry
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if radius > 0 {
			cc.radius = radius
		}
	}
}

// WithOrientation sets the initial orientation.
//
// Parameters:
//   - o: initial latitude/longitude in degrees (clamped after all options apply)
//
// Returns:
//   - CameraControllerOption: functional option to set the orientation
func WithOrientation(o Orientation) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orientation = o
	}
}

// WithLatBounds sets the latitude clamp range.
//
// Parameters:
//   - minLat: lowest latitude in degrees
//   - maxLat: highest latitude in degrees
//
// Returns:
//   - CameraControllerOption: functional option to set latitude bounds
func WithLatBounds(minLat, maxLat float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minLat = minLat
		cc.maxLat = maxLat
	}
}

// WithSensitivity sets the drag sensitivity.
//
// Parameters:
//   - sensitivity: degrees of rotation per pixel of pointer travel
//
// Returns:
//   - CameraControllerOption: functional option to set drag sensitivity
func WithSensitivity(sensitivity float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sensitivity = sensitivity
	}
}

// WithAutoRotate requests auto-rotation until the first user interaction.
//
// Parameters:
//   - enabled: true to rotate while the user has not interacted
//
// Returns:
//   - CameraControllerOption: functional option to set auto-rotation
func WithAutoRotate(enabled bool) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.autoRotate = enabled
	}
}

// WithAutoRotateStep sets the longitude advanced per frame while auto-rotating.
//
// Parameters:
//   - step: degrees per frame
//
// Returns:
//   - CameraControllerOption: functional option to set the auto-rotate step
func WithAutoRotateStep(step float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.autoRotateStep = step
	}
}

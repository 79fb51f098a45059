package camera

import (
	"github.com/Carmen-Shannon/oxy-sphere/common"
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

const (
	// DefaultMinLat is the lowest latitude the view may reach, kept short of the pole so the
	// look-at basis never degenerates.
	DefaultMinLat = -85.0
	// DefaultMaxLat is the highest latitude the view may reach.
	DefaultMaxLat = 85.0
)

// Orientation is the authoritative view direction in degrees. Lat is the elevation above the
// horizon and Lng the azimuth. Lng is unbounded and wraps through the trigonometry.
type Orientation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Clamped returns a copy with Lat limited to [minLat, maxLat].
//
// Parameters:
//   - minLat: lower latitude bound in degrees
//   - maxLat: upper latitude bound in degrees
//
// Returns:
//   - Orientation: the clamped orientation
func (o Orientation) Clamped(minLat, maxLat float64) Orientation {
	o.Lat = common.Clamp(o.Lat, minLat, maxLat)
	return o
}

// Angle converts the orientation to spherical rendering angles.
func (o Orientation) Angle() spherical.Angle {
	return spherical.OrientationToAngle(o.Lat, o.Lng)
}

// Direction returns the point on a sphere of radius r that the orientation faces.
//
// Parameters:
//   - r: sphere radius
//
// Returns:
//   - spherical.Vector3: the look-at point
func (o Orientation) Direction(r float64) spherical.Vector3 {
	a := o.Angle()
	return spherical.AngleToDirection(r, a.Theta, a.Phi)
}

// OrientationFromPixel derives the orientation that looks at a pixel of the panorama.
//
// Parameters:
//   - pos: the pixel to face
//   - dim: the natural size of the panorama
//
// Returns:
//   - Orientation: the unclamped orientation
//   - error: spherical.ErrInvalidDimension if dim is not known yet
func OrientationFromPixel(pos spherical.PixelPosition, dim spherical.Dimension) (Orientation, error) {
	lat, lng, err := spherical.PixelToOrientation(pos, dim)
	if err != nil {
		return Orientation{}, err
	}
	return Orientation{Lat: lat, Lng: lng}, nil
}

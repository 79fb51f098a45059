// Package spherical converts between equirectangular image pixels, spherical angles, the
// latitude/longitude control space used by the camera controller, and 3D direction vectors.
//
// All functions are pure. Pixel space has its origin in the top-left corner with x growing
// rightward and y growing downward. Theta is the azimuth in [0, 2π) across the image width and phi
// is the polar angle in [0, π] from the top edge (north pole) to the bottom edge.
package spherical

import (
	"errors"
	"math"

	"github.com/Carmen-Shannon/oxy-sphere/common"
)

// ErrInvalidDimension is returned when a mapping is requested against an image whose width or
// height is not positive, i.e. before the panorama has finished loading.
var ErrInvalidDimension = errors.New("spherical: image dimension must be positive")

// Dimension is the natural pixel size of the loaded panorama.
type Dimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both sides are positive.
func (d Dimension) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Center returns the pixel at the horizontal and vertical midpoint of the image.
func (d Dimension) Center() PixelPosition {
	return PixelPosition{X: d.Width / 2, Y: d.Height / 2}
}

// PixelPosition is a point in source-image pixel space.
type PixelPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Angle is a spherical direction in radians.
type Angle struct {
	// Theta is the azimuthal angle, mapped from the horizontal pixel axis.
	Theta float64
	// Phi is the polar angle measured from the top pole, mapped from the vertical pixel axis.
	Phi float64
}

// Vector3 is a Cartesian direction or point in world space.
type Vector3 struct {
	X, Y, Z float64
}

// Float32 narrows the vector for GPU and camera math.
//
// Returns:
//   - x, y, z: the components as float32
func (v Vector3) Float32() (x, y, z float32) {
	return float32(v.X), float32(v.Y), float32(v.Z)
}

// PixelToAngle maps a pixel on the panorama to its spherical angle.
//
// Parameters:
//   - pos: the pixel position
//   - dim: the natural size of the panorama
//
// Returns:
//   - Angle: theta = x/width·2π, phi = y/height·π
//   - error: ErrInvalidDimension if dim has a non-positive side
func PixelToAngle(pos PixelPosition, dim Dimension) (Angle, error) {
	if !dim.Valid() {
		return Angle{}, ErrInvalidDimension
	}
	return Angle{
		Theta: pos.X / dim.Width * 2 * math.Pi,
		Phi:   pos.Y / dim.Height * math.Pi,
	}, nil
}

// AngleToPixel is the inverse of PixelToAngle.
//
// Parameters:
//   - a: the spherical angle
//   - dim: the natural size of the panorama
//
// Returns:
//   - PixelPosition: x = theta/2π·width, y = phi/π·height
//   - error: ErrInvalidDimension if dim has a non-positive side
func AngleToPixel(a Angle, dim Dimension) (PixelPosition, error) {
	if !dim.Valid() {
		return PixelPosition{}, ErrInvalidDimension
	}
	return PixelPosition{
		X: a.Theta / (2 * math.Pi) * dim.Width,
		Y: a.Phi / math.Pi * dim.Height,
	}, nil
}

// AngleToDirection converts a spherical angle to a point on a sphere of radius r centred at the origin.
// The y axis points at the top pole.
//
// Parameters:
//   - r: sphere radius
//   - theta: azimuth in radians
//   - phi: polar angle in radians
//
// Returns:
//   - Vector3: (r·sinφ·cosθ, r·cosφ, r·sinφ·sinθ)
func AngleToDirection(r, theta, phi float64) Vector3 {
	sinPhi := math.Sin(phi)
	return Vector3{
		X: r * sinPhi * math.Cos(theta),
		Y: r * math.Cos(phi),
		Z: r * sinPhi * math.Sin(theta),
	}
}

// DirectionToAngle is the inverse of AngleToDirection for any non-zero vector.
// Theta is normalised to [0, 2π). The zero vector maps to the zero angle.
func DirectionToAngle(v Vector3) Angle {
	r := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if r == 0 {
		return Angle{}
	}
	theta := math.Atan2(v.Z, v.X)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return Angle{
		Theta: theta,
		Phi:   math.Acos(common.Clamp(v.Y/r, -1, 1)),
	}
}

// OrientationToAngle bridges the controller's latitude/longitude (degrees) to the rendering angles.
//
// Parameters:
//   - lat: latitude in degrees, 0 at the horizon
//   - lng: longitude in degrees
//
// Returns:
//   - Angle: phi = rad(90 - lat), theta = rad(lng)
func OrientationToAngle(lat, lng float64) Angle {
	return Angle{
		Theta: common.DegToRad(lng),
		Phi:   common.DegToRad(90 - lat),
	}
}

// AngleToOrientation is the inverse of OrientationToAngle.
//
// Returns:
//   - lat: 90 - deg(phi)
//   - lng: deg(theta)
func AngleToOrientation(a Angle) (lat, lng float64) {
	return 90 - common.RadToDeg(a.Phi), common.RadToDeg(a.Theta)
}

// PixelToOrientation maps a panorama pixel straight to latitude/longitude. It is how the initial
// view direction is derived from a start position.
//
// Parameters:
//   - pos: the pixel to look at
//   - dim: the natural size of the panorama
//
// Returns:
//   - lat, lng: orientation in degrees
//   - error: ErrInvalidDimension if dim has a non-positive side
func PixelToOrientation(pos PixelPosition, dim Dimension) (lat, lng float64, err error) {
	a, err := PixelToAngle(pos, dim)
	if err != nil {
		return 0, 0, err
	}
	lat, lng = AngleToOrientation(a)
	return lat, lng, nil
}

// PixelToDirection maps a panorama pixel to its point on a sphere of radius r.
//
// Returns:
//   - Vector3: the point on the sphere
//   - error: ErrInvalidDimension if dim has a non-positive side
func PixelToDirection(r float64, pos PixelPosition, dim Dimension) (Vector3, error) {
	a, err := PixelToAngle(pos, dim)
	if err != nil {
		return Vector3{}, err
	}
	return AngleToDirection(r, a.Theta, a.Phi), nil
}

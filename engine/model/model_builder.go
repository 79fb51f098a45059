package model

// ModelBuilderOption is a functional option for configuring a sphere via NewSphere.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithRadius sets the sphere radius. Non-positive values are ignored.
//
// Parameters:
//   - radius: sphere radius
//
// Returns:
//   - ModelBuilderOption: a function that applies the radius option to a model
func WithRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		if radius > 0 {
			m.radius = radius
		}
	}
}

// WithSegments sets the sphere tessellation. Values are raised to at least 3 x 2.
//
// Parameters:
//   - width: segments around the equator
//   - height: segments from pole to pole
//
// Returns:
//   - ModelBuilderOption: a function that applies the segment option to a model
func WithSegments(width, height int) ModelBuilderOption {
	return func(m *model) {
		m.widthSegments = width
		m.heightSegments = height
	}
}

// WithInvertX controls whether the x axis is mirrored so the panorama reads correctly from inside.
//
// Parameters:
//   - invert: true to mirror (the default)
//
// Returns:
//   - ModelBuilderOption: a function that applies the mirror option to a model
func WithInvertX(invert bool) ModelBuilderOption {
	return func(m *model) {
		m.invertX = invert
	}
}

// package common contains common types and math that are used throughout this viewer. They are not interface-wrapped
// structs, just plain structs that express commonly used data-types.
package common

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// The loader produces one of these for the decoded panorama and the renderer uploads it as the sphere's texture.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// Valid reports whether the staging data describes a non-empty image whose pixel buffer matches its size.
//
// Returns:
//   - bool: true if the data can be uploaded
func (t TextureStagingData) Valid() bool {
	return t.Width > 0 && t.Height > 0 && len(t.Pixels) == int(t.Width)*int(t.Height)*4
}

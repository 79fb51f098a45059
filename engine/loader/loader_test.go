package loader

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func await(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatal("result channel closed without a result")
		}
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load")
	}
	return Result{}
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pano.png")
	if err := os.WriteFile(path, encodePNG(t, testImage(64, 32)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader(WithWorkers(1))
	defer l.Close()

	res := await(t, l.Load(path))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Dimension.Width != 64 || res.Dimension.Height != 32 {
		t.Fatalf("dimension = %+v, want 64x32", res.Dimension)
	}
	if res.Texture.Width != 64 || res.Texture.Height != 32 {
		t.Fatalf("texture = %dx%d, want 64x32", res.Texture.Width, res.Texture.Height)
	}
	if len(res.Texture.Pixels) != 64*32*4 {
		t.Fatalf("pixel bytes = %d, want %d", len(res.Texture.Pixels), 64*32*4)
	}
	if !res.Texture.Valid() {
		t.Fatal("expected valid staging data")
	}
}

func TestLoadHTTP(t *testing.T) {
	data := encodePNG(t, testImage(40, 20))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pano.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	defer l.Close()

	res := await(t, l.Load(srv.URL+"/pano.png"))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Dimension.Width != 40 || res.Dimension.Height != 20 {
		t.Fatalf("dimension = %+v, want 40x20", res.Dimension)
	}

	res = await(t, l.Load(srv.URL+"/missing.png"))
	if res.Err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.jpg")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader()
	defer l.Close()

	tests := []struct {
		name   string
		source string
		want   error
	}{
		{name: "empty", source: "  ", want: ErrEmptySource},
		{name: "missing", source: filepath.Join(dir, "nope.png")},
		{name: "undecodable", source: bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := await(t, l.Load(tt.source))
			if res.Err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(res.Err, tt.want) {
				t.Fatalf("error = %v, want %v", res.Err, tt.want)
			}
			if res.Image != nil || res.Texture.Valid() {
				t.Fatal("failed load must not carry image data")
			}
		})
	}
}

func TestLoadAfterClose(t *testing.T) {
	l := NewLoader()
	l.Close()
	l.Close()

	res := await(t, l.Load("anything.png"))
	if !errors.Is(res.Err, ErrClosed) {
		t.Fatalf("error = %v, want ErrClosed", res.Err)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"within", 100, 50, 200, 100, 50},
		{"exact", 200, 100, 200, 200, 100},
		{"wide", 6238, 3000, 4096, 4096, 1970},
		{"tall", 100, 400, 200, 50, 200},
		{"no limit", 100, 50, 0, 100, 50},
		{"thin", 10000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.w, tt.h, tt.limit)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestLoadDownscalesToLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.png")
	if err := os.WriteFile(path, encodePNG(t, testImage(128, 64)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader(WithMaxTextureSize(32))
	defer l.Close()

	res := l.LoadSync(path)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Dimension.Width != 128 || res.Dimension.Height != 64 {
		t.Fatalf("natural dimension = %+v, want 128x64", res.Dimension)
	}
	if res.Texture.Width != 32 || res.Texture.Height != 16 {
		t.Fatalf("texture = %dx%d, want 32x16", res.Texture.Width, res.Texture.Height)
	}

	l.SetMaxTextureSize(64)
	res = l.LoadSync(path)
	if res.Texture.Width != 64 || res.Texture.Height != 32 {
		t.Fatalf("texture after SetMaxTextureSize = %dx%d, want 64x32", res.Texture.Width, res.Texture.Height)
	}
}

func TestToStagingKeepsPixels(t *testing.T) {
	img := testImage(4, 2)
	staged := ToStaging(img, 16)
	// Pixel (3, 1) is at offset (1*4+3)*4.
	off := (1*4 + 3) * 4
	got := staged.Pixels[off : off+4]
	want := []byte{3, 1, 200, 255}
	if !bytes.Equal(got, want) {
		t.Fatalf("pixel (3,1) = %v, want %v", got, want)
	}
}

func TestWriteThumbnail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thumbs", "pano.webp")
	if err := WriteThumbnail(path, testImage(64, 32), 16); err != nil {
		t.Fatalf("WriteThumbnail: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Fatalf("thumbnail is not a WebP container: % x", data[:min(12, len(data))])
	}

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("thumbnail size = %dx%d, want 16x8", b.Dx(), b.Dy())
	}
}

func encodeWith(t *testing.T, img image.Image, enc func(io.Writer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := enc(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name     string
		encode   func(io.Writer, image.Image) error
		lossless bool
	}{
		{"png", png.Encode, true},
		{"jpeg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 90}) }, false},
		{"gif", func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }, false},
		{"webp", func(w io.Writer, m image.Image) error { return nativewebp.Encode(w, m, nil) }, true},
		{"bmp", bmp.Encode, true},
		{"tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }, true},
		{"tga", tga.Encode, true},
	}
	src := testImage(8, 4)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeWith(t, src, tt.encode)
			if got := Sniff(data); got != tt.name {
				t.Errorf("Sniff = %q, want %q", got, tt.name)
			}

			img, err := Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
				t.Fatalf("size = %dx%d, want 8x4", b.Dx(), b.Dy())
			}
			if !tt.lossless {
				return
			}
			b := img.Bounds()
			gr, gg, gb, ga := img.At(b.Min.X+3, b.Min.Y+1).RGBA()
			wr, wg, wb, wa := src.At(3, 1).RGBA()
			if gr != wr || gg != wg || gb != wb || ga != wa {
				t.Fatalf("pixel (3,1) = %v, want %v", img.At(b.Min.X+3, b.Min.Y+1), src.At(3, 1))
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("not an image")},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if img, err := Decode(bytes.NewReader(tt.data)); err == nil {
				t.Fatalf("Decode = %v, want error", img.Bounds())
			}
		})
	}
}

func TestLoadJPEGFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pano.jpg")
	data := encodeWith(t, testImage(96, 48), func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, nil)
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader(WithWorkers(1))
	defer l.Close()

	res := await(t, l.Load(path))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Dimension.Width != 96 || res.Dimension.Height != 48 {
		t.Fatalf("dimension = %+v, want 96x48", res.Dimension)
	}
	if !res.Texture.Valid() {
		t.Fatal("expected valid staging data")
	}
}

// Package loader decodes panorama images off the frame loop.
//
// Load hands the work to a dynamic worker pool and returns a channel that yields exactly one
// Result. The result carries the natural image size, which the overlay math needs, and RGBA8
// staging data already scaled to fit the GPU texture limit.
package loader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-sphere/common"
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// DefaultMaxTextureSize matches the WebGPU default limit for 2D textures.
const DefaultMaxTextureSize = 8192

var (
	// ErrClosed is reported for loads submitted after Close.
	ErrClosed = errors.New("loader: closed")
	// ErrEmptySource is reported when Load is called with an empty source.
	ErrEmptySource = errors.New("loader: empty source")
)

// Result is the outcome of one Load call.
type Result struct {
	// Source is the path or URL that was loaded.
	Source string
	// Dimension is the natural size of the decoded image.
	Dimension spherical.Dimension
	// Image is the decoded image at natural size.
	Image image.Image
	// Texture is the RGBA8 upload, downscaled when the natural size exceeds the texture limit.
	Texture common.TextureStagingData
	// Err is non-nil when the load failed; every other field is then zero.
	Err error
}

// loader is the implementation of the Loader interface.
type loader struct {
	pool       worker.DynamicWorkerPool
	workers    int
	queueSize  int
	idleExit   time.Duration
	httpClient *http.Client

	maxTextureSize atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	nextID atomic.Int64
	closed atomic.Bool
}

// Loader decodes panorama images asynchronously.
type Loader interface {
	// Load starts loading a local path or an http(s) URL. The returned channel receives exactly one
	// Result and is then closed.
	//
	// Parameters:
	//   - source: file path or http(s) URL
	//
	// Returns:
	//   - <-chan Result: yields the single result
	Load(source string) <-chan Result

	// LoadSync loads a source on the calling goroutine.
	//
	// Parameters:
	//   - source: file path or http(s) URL
	//
	// Returns:
	//   - Result: the load result
	LoadSync(source string) Result

	// SetMaxTextureSize changes the texture side limit for subsequent loads.
	//
	// Parameters:
	//   - size: largest allowed width or height; non-positive values are ignored
	SetMaxTextureSize(size int)

	// Close cancels in-flight downloads and stops the workers. Loads submitted afterwards fail with
	// ErrClosed; loads still queued at Close may never deliver a result.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a Loader backed by a dynamic worker pool.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers:    2,
		queueSize:  16,
		idleExit:   5 * time.Second,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	l.maxTextureSize.Store(DefaultMaxTextureSize)
	for _, option := range options {
		option(l)
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queueSize, l.idleExit)
	return l
}

func (l *loader) Load(source string) <-chan Result {
	out := make(chan Result, 1)
	if l.closed.Load() {
		out <- Result{Source: source, Err: ErrClosed}
		close(out)
		return out
	}

	id := int(l.nextID.Add(1))
	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			out <- l.LoadSync(source)
			close(out)
			return nil, nil
		},
	})
	return out
}

func (l *loader) LoadSync(source string) Result {
	if strings.TrimSpace(source) == "" {
		return Result{Source: source, Err: ErrEmptySource}
	}
	if l.closed.Load() {
		return Result{Source: source, Err: ErrClosed}
	}

	rc, err := l.open(source)
	if err != nil {
		return Result{Source: source, Err: err}
	}
	defer rc.Close()

	img, err := Decode(rc)
	if err != nil {
		return Result{Source: source, Err: fmt.Errorf("loader: decode %s: %w", source, err)}
	}

	b := img.Bounds()
	return Result{
		Source:    source,
		Dimension: spherical.Dimension{Width: float64(b.Dx()), Height: float64(b.Dy())},
		Image:     img,
		Texture:   ToStaging(img, l.limit()),
	}
}

func (l *loader) SetMaxTextureSize(size int) {
	if size > 0 {
		l.maxTextureSize.Store(int64(size))
	}
}

func (l *loader) limit() int {
	return int(l.maxTextureSize.Load())
}

func (l *loader) Close() {
	if l.closed.Swap(true) {
		return
	}
	l.cancel()
	l.pool.Stop()
}

// open returns a reader for a local file or an http(s) URL.
func (l *loader) open(source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("loader: open %s: %w", source, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(l.ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: request %s: %w", source, err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %s: %w", source, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("loader: fetch %s: unexpected status %s", source, resp.Status)
	}
	return resp.Body, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// decoder pairs a magic-byte prefix with the format's decode function. A '?' in magic matches
// any byte.
type decoder struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}

// decoders is checked in order. TGA has no signature and is the fallback for anything that
// matches none of these, so the format registry in package image is never consulted: the tga
// package registers an empty magic that would otherwise claim every input.
var decoders = []decoder{
	{name: "png", magic: "\x89PNG\r\n\x1a\n", decode: png.Decode},
	{name: "jpeg", magic: "\xff\xd8", decode: jpeg.Decode},
	{name: "gif", magic: "GIF8", decode: gif.Decode},
	{name: "webp", magic: "RIFF????WEBP", decode: webp.Decode},
	{name: "bmp", magic: "BM", decode: bmp.Decode},
	{name: "tiff", magic: "II*\x00", decode: tiff.Decode},
	{name: "tiff", magic: "MM\x00*", decode: tiff.Decode},
}

func matchMagic(magic string, head []byte) bool {
	if len(head) < len(magic) {
		return false
	}
	for i := range len(magic) {
		if magic[i] != '?' && magic[i] != head[i] {
			return false
		}
	}
	return true
}

// Sniff names the format of an encoded image from its leading bytes. Inputs without a known
// signature are reported as "tga".
//
// Parameters:
//   - head: the first bytes of the encoded image (12 are enough for every format)
//
// Returns:
//   - string: the format name
func Sniff(head []byte) string {
	return lookup(head).name
}

func lookup(head []byte) decoder {
	for _, d := range decoders {
		if matchMagic(d.magic, head) {
			return d
		}
	}
	return decoder{name: "tga", decode: tga.Decode}
}

// Decode decodes a JPEG, PNG, GIF, WebP, BMP, TIFF or TGA image. The format is picked from the
// leading bytes; TGA is tried when no other signature matches.
//
// Parameters:
//   - r: the encoded image
//
// Returns:
//   - image.Image: the decoded image
//   - error: the decoder error
func Decode(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(12)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(head) == 0 {
		return nil, fmt.Errorf("empty input: %w", image.ErrFormat)
	}

	img, err := lookup(head).decode(br)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

// FitWithin scales a size down, keeping its aspect ratio, until neither side exceeds limit.
// Sizes already within the limit are returned unchanged.
//
// Parameters:
//   - width, height: the source size
//   - limit: the largest allowed side
//
// Returns:
//   - w, h: the fitted size, never below 1
func FitWithin(width, height, limit int) (w, h int) {
	if limit <= 0 || (width <= limit && height <= limit) {
		return width, height
	}
	if width >= height {
		w = limit
		h = max(1, int(float64(height)*float64(limit)/float64(width)+0.5))
	} else {
		h = limit
		w = max(1, int(float64(width)*float64(limit)/float64(height)+0.5))
	}
	return w, h
}

// ToStaging converts an image into tightly packed RGBA8 staging data, downscaling with Catmull-Rom
// when it exceeds limit.
//
// Parameters:
//   - img: the source image
//   - limit: the largest allowed side
//
// Returns:
//   - common.TextureStagingData: the upload
func ToStaging(img image.Image, limit int) common.TextureStagingData {
	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), limit)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	return common.TextureStagingData{
		Pixels: dst.Pix,
		Width:  uint32(w),
		Height: uint32(h),
	}
}

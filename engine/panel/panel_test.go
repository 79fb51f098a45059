package panel

import (
	"bytes"
	"errors"
	"log"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-sphere/common"
	"github.com/Carmen-Shannon/oxy-sphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-sphere/engine/loader"
	"github.com/Carmen-Shannon/oxy-sphere/engine/overlay"
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

type fakeRenderer struct {
	width, height int
	panorama      *common.TextureStagingData
	setErr        error
	renders       int
	lastViewProj  [16]float32
	resizes       [][2]int
}

func (r *fakeRenderer) SetPanorama(data common.TextureStagingData) error {
	if r.setErr != nil {
		return r.setErr
	}
	r.panorama = &data
	return nil
}

func (r *fakeRenderer) Render(viewProj [16]float32) error {
	r.renders++
	r.lastViewProj = viewProj
	return nil
}

func (r *fakeRenderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.resizes = append(r.resizes, [2]int{width, height})
}

func (r *fakeRenderer) Width() int  { return r.width }
func (r *fakeRenderer) Height() int { return r.height }

type fakeInput struct {
	down, move, up func(x, y float64, primary bool)
	scroll         func(deltaY float64)
	resize         func(width, height int)
}

func (in *fakeInput) SetPointerDownCallback(cb func(x, y float64, primary bool)) { in.down = cb }
func (in *fakeInput) SetPointerMoveCallback(cb func(x, y float64, primary bool)) { in.move = cb }
func (in *fakeInput) SetPointerUpCallback(cb func(x, y float64, primary bool))   { in.up = cb }
func (in *fakeInput) SetScrollCallback(cb func(deltaY float64))                  { in.scroll = cb }
func (in *fakeInput) SetResizeCallback(cb func(width, height int))               { in.resize = cb }

// fakeLoader delivers a fixed result; hold keeps the channel empty until release is called.
type fakeLoader struct {
	result  loader.Result
	hold    bool
	ch      chan loader.Result
	sources []string
	closed  bool
}

func (l *fakeLoader) Close() { l.closed = true }

func (l *fakeLoader) Load(source string) <-chan loader.Result {
	l.sources = append(l.sources, source)
	l.ch = make(chan loader.Result, 1)
	res := l.result
	res.Source = source
	if !l.hold {
		l.ch <- res
		close(l.ch)
	}
	return l.ch
}

func (l *fakeLoader) release() {
	res := l.result
	res.Source = l.sources[len(l.sources)-1]
	l.ch <- res
	close(l.ch)
}

func (l *fakeLoader) abandon() {
	close(l.ch)
}

func okResult(w, h float64) loader.Result {
	return loader.Result{
		Dimension: spherical.Dimension{Width: w, Height: h},
		Texture:   common.TextureStagingData{Pixels: make([]byte, 16), Width: 2, Height: 2},
	}
}

func newTestPanel(t *testing.T, cfg Config, res loader.Result, options ...PanelBuilderOption) (Panel, *fakeRenderer, *fakeInput, *fakeLoader) {
	t.Helper()
	r := &fakeRenderer{width: 800, height: 600}
	in := &fakeInput{}
	ld := &fakeLoader{result: res}
	return NewPanel(cfg, r, in, ld, options...), r, in, ld
}

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestNewPanelPanicsOnNilCollaborators(t *testing.T) {
	tests := []struct {
		name string
		r    SphereRenderer
		in   InputSource
		ld   ImageLoader
	}{
		{"renderer", nil, &fakeInput{}, &fakeLoader{}},
		{"input", &fakeRenderer{}, nil, &fakeLoader{}},
		{"loader", &fakeRenderer{}, &fakeInput{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			NewPanel(Config{}, tt.r, tt.in, tt.ld)
		})
	}
}

func TestNewPanelSubscribesAndLoads(t *testing.T) {
	p, _, in, ld := newTestPanel(t, Config{PhotoURL: "pano.jpg"}, okResult(100, 50))
	defer p.Close()

	if in.down == nil || in.move == nil || in.up == nil || in.scroll == nil || in.resize == nil {
		t.Fatal("expected every input callback to be subscribed")
	}
	if len(ld.sources) != 1 || ld.sources[0] != "pano.jpg" {
		t.Fatalf("loader sources = %v, want [pano.jpg]", ld.sources)
	}
	if p.Initialized() {
		t.Fatal("panel must not be initialized before the first frame")
	}
	if got := p.Camera().Aspect(); !approx(float64(got), 800.0/600.0, 1e-6) {
		t.Fatalf("aspect = %v, want %v", got, 800.0/600.0)
	}
}

func TestFrameAppliesLoad(t *testing.T) {
	p, r, _, _ := newTestPanel(t, Config{PhotoURL: "pano.jpg"}, okResult(6238, 3000))
	defer p.Close()

	p.Frame()

	if !p.Initialized() {
		t.Fatal("expected panel to be initialized after the first frame")
	}
	if r.panorama == nil {
		t.Fatal("expected panorama upload")
	}
	if d := p.Dimension(); d.Width != 6238 || d.Height != 3000 {
		t.Fatalf("dimension = %+v, want 6238x3000", d)
	}
	o := p.Orientation()
	if !approx(o.Lat, 0, 1e-9) || !approx(o.Lng, 180, 1e-9) {
		t.Fatalf("midpoint orientation = %+v, want lat 0 lng 180", o)
	}
	if r.renders != 1 {
		t.Fatalf("renders = %d, want 1", r.renders)
	}
}

func TestStartPositionScenario(t *testing.T) {
	start := spherical.PixelPosition{X: 3119, Y: 3000}
	p, _, _, _ := newTestPanel(t, Config{StartPosition: &start}, okResult(6238, 3000))
	defer p.Close()

	p.Frame()

	o := p.Orientation()
	if !approx(o.Lng, 180, 1e-9) {
		t.Fatalf("lng = %v, want 180", o.Lng)
	}
	if o.Lat != camera.DefaultMinLat {
		t.Fatalf("lat = %v, want clamp to %v for the bottom edge", o.Lat, camera.DefaultMinLat)
	}
}

func TestFailedLoadStaysUninitialized(t *testing.T) {
	tests := []struct {
		name string
		res  loader.Result
		set  error
	}{
		{name: "load error", res: loader.Result{Err: errors.New("boom")}},
		{name: "zero size", res: okResult(0, 0)},
		{name: "upload error", res: okResult(10, 5), set: errors.New("too big")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{width: 100, height: 100, setErr: tt.set}
			in := &fakeInput{}
			p := NewPanel(Config{}, r, in, &fakeLoader{result: tt.res})
			defer p.Close()

			var loaded []loader.Result
			p.OnLoaded(func(res loader.Result) { loaded = append(loaded, res) })

			p.Frame()
			p.Frame()

			if p.Initialized() {
				t.Fatal("panel must stay uninitialized")
			}
			if len(p.Features()) != 0 {
				t.Fatal("no projection expected before initialization")
			}
			if len(loaded) != 1 {
				t.Fatalf("OnLoaded calls = %d, want 1", len(loaded))
			}
			if r.renders != 2 {
				t.Fatalf("renders = %d, want 2", r.renders)
			}
		})
	}
}

func TestFrameWaitsForPendingLoad(t *testing.T) {
	r := &fakeRenderer{width: 100, height: 100}
	ld := &fakeLoader{result: okResult(200, 100), hold: true}
	p := NewPanel(Config{}, r, &fakeInput{}, ld)
	defer p.Close()

	p.Frame()
	if p.Initialized() {
		t.Fatal("panel initialized before the load finished")
	}

	ld.release()
	p.Frame()
	if !p.Initialized() {
		t.Fatal("expected initialization once the load finished")
	}
}

func TestAutoRotateUntilInteraction(t *testing.T) {
	p, _, in, _ := newTestPanel(t, Config{AutoRotate: true}, okResult(360, 180))
	defer p.Close()

	p.Frame() // applies load and ticks once
	start := p.Orientation().Lng
	for range 10 {
		p.Frame()
	}
	if got := p.Orientation().Lng - start; !approx(got, 0.1, 1e-9) {
		t.Fatalf("auto-rotate advanced %v, want 0.1", got)
	}

	in.down(10, 10, true)
	in.up(10, 10, true)
	before := p.Orientation().Lng
	for range 10 {
		p.Frame()
	}
	if got := p.Orientation().Lng; got != before {
		t.Fatalf("lng changed after interaction: %v -> %v", before, got)
	}
}

func TestDragThroughInput(t *testing.T) {
	p, _, in, _ := newTestPanel(t, Config{}, okResult(360, 180))
	defer p.Close()
	p.Frame()

	base := p.Orientation()
	in.down(100, 100, true)
	in.move(150, 120, true)
	in.move(80, 130, true)
	p.Frame()

	got := p.Orientation()
	want := camera.Orientation{Lat: base.Lat + 3, Lng: base.Lng + 2}
	if !approx(got.Lat, want.Lat, 1e-9) || !approx(got.Lng, want.Lng, 1e-9) {
		t.Fatalf("orientation = %+v, want %+v", got, want)
	}

	in.move(0, 0, false)
	in.up(80, 130, false)
	if p.Camera().Controller().DragState() != camera.DragActive {
		t.Fatal("secondary pointer must not end the drag")
	}
	in.up(80, 130, true)
	if p.Camera().Controller().DragState() != camera.DragIdle {
		t.Fatal("expected idle after primary release")
	}
}

func TestScrollZoomClamps(t *testing.T) {
	p, _, in, _ := newTestPanel(t, Config{}, okResult(360, 180))
	defer p.Close()

	settle := func(delta float64) float32 {
		t.Helper()
		for range 100 {
			in.scroll(delta)
			fov := p.Camera().Fov()
			if fov < camera.DefaultMinFov || fov > camera.DefaultMaxFov {
				t.Fatalf("fov = %v after scroll(%v), outside [%v, %v]", fov, delta, camera.DefaultMinFov, camera.DefaultMaxFov)
			}
		}
		return p.Camera().Fov()
	}

	if got := settle(1000); got != camera.DefaultMaxFov {
		t.Fatalf("fov = %v, want %v", got, camera.DefaultMaxFov)
	}
	if got := settle(-1000); got != camera.DefaultMinFov {
		t.Fatalf("fov = %v, want %v", got, camera.DefaultMinFov)
	}
}

func TestResizeReprojects(t *testing.T) {
	features := []overlay.Feature{{ID: 1, Name: "center", X: 180, Y: 90}}
	p, r, in, _ := newTestPanel(t, Config{Features: features}, okResult(360, 180))
	defer p.Close()
	p.Frame()

	var published int
	p.OnProjected(func([]overlay.ProjectedFeature) { published++ })

	in.resize(400, 200)
	if len(r.resizes) != 1 || r.resizes[0] != [2]int{400, 200} {
		t.Fatalf("renderer resizes = %v, want [[400 200]]", r.resizes)
	}
	if published != 1 {
		t.Fatalf("projections after resize = %d, want 1", published)
	}
	pf := p.Features()[0]
	if pf.Hidden || pf.ScreenX != 200 || pf.ScreenY != 100 {
		t.Fatalf("centered feature = %+v, want visible at (200, 100)", pf)
	}

	in.resize(0, 200)
	in.resize(0, 0)
	if len(r.resizes) != 1 {
		t.Fatal("degenerate resize must be ignored")
	}
	if published != 1 {
		t.Fatalf("projections after degenerate resize = %d, want 1", published)
	}
	if got := p.Features()[0]; got != pf {
		t.Fatalf("feature after degenerate resize = %+v, want unchanged %+v", got, pf)
	}
}

func TestFeatureProjectionAndVisibility(t *testing.T) {
	features := []overlay.Feature{
		{ID: 1, Name: "ahead", X: 180, Y: 90},
		{ID: 2, Name: "behind", X: 0, Y: 90},
	}
	p, _, _, _ := newTestPanel(t, Config{Features: features}, okResult(360, 180))
	defer p.Close()
	p.Frame()

	got := p.Features()
	if len(got) != 2 {
		t.Fatalf("features = %d, want 2", len(got))
	}
	if got[0].Hidden || got[0].ScreenX != 400 || got[0].ScreenY != 300 {
		t.Fatalf("ahead = %+v, want visible at canvas center", got[0])
	}
	if !got[1].Hidden {
		t.Fatalf("behind = %+v, want hidden", got[1])
	}
}

func TestClickActivatesFeature(t *testing.T) {
	features := []overlay.Feature{{ID: 7, Name: "door", X: 180, Y: 90}}
	p, _, in, _ := newTestPanel(t, Config{Features: features}, okResult(360, 180))
	defer p.Close()
	p.Frame()

	var events []FeatureEvent
	p.OnFeatureActivated(func(ev FeatureEvent) { events = append(events, ev) })

	// A drag that lands on the marker is not a click.
	in.down(300, 300, true)
	in.move(401, 301, true)
	in.up(401, 301, true)
	if len(events) != 0 {
		t.Fatalf("drag activated %d features", len(events))
	}

	p.Frame()
	pf := p.Features()[0]
	x, y := float64(pf.ScreenX), float64(pf.ScreenY)
	in.down(x+2, y+1, true)
	in.up(x+2, y+1, true)
	if len(events) != 1 || events[0].Feature.ID != 7 {
		t.Fatalf("events = %+v, want one activation of feature 7", events)
	}

	in.down(x+100, y, true)
	in.up(x+100, y, true)
	if len(events) != 1 {
		t.Fatal("click away from markers must not activate")
	}
}

func TestActivateFeature(t *testing.T) {
	features := []overlay.Feature{
		{ID: 1, Name: "ahead", X: 180, Y: 90},
		{ID: 2, Name: "behind", X: 0, Y: 90},
	}
	p, _, _, _ := newTestPanel(t, Config{Features: features}, okResult(360, 180))
	defer p.Close()
	p.Frame()

	var got []int
	p.OnFeatureActivated(func(ev FeatureEvent) { got = append(got, ev.Feature.ID) })

	if !p.ActivateFeature(1) {
		t.Fatal("expected visible feature to activate")
	}
	if p.ActivateFeature(2) {
		t.Fatal("hidden feature must not activate")
	}
	if p.ActivateFeature(99) {
		t.Fatal("unknown feature must not activate")
	}
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("activations = %v, want [1]", got)
	}
}

func TestPixelAtCenter(t *testing.T) {
	p, _, _, _ := newTestPanel(t, Config{}, okResult(360, 180))
	defer p.Close()

	if _, ok := p.PixelAt(400, 300); ok {
		t.Fatal("PixelAt must fail before initialization")
	}

	p.Frame()
	pos, ok := p.PixelAt(400, 300)
	if !ok {
		t.Fatal("expected a pixel under the canvas center")
	}
	if !approx(pos.X, 180, 0.5) || !approx(pos.Y, 90, 0.5) {
		t.Fatalf("pixel = %+v, want about (180, 90)", pos)
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	p, r, in, ld := newTestPanel(t, Config{}, okResult(360, 180))
	p.Frame()

	in.down(10, 10, true)
	p.Close()
	p.Close()

	if in.down != nil || in.move != nil || in.up != nil || in.scroll != nil || in.resize != nil {
		t.Fatal("expected every input callback to be cleared")
	}
	if p.Camera().Controller().DragState() != camera.DragIdle {
		t.Fatal("Close must cancel the drag session")
	}
	if !ld.closed {
		t.Fatal("Close must stop the loader")
	}

	renders := r.renders
	p.Frame()
	if r.renders != renders {
		t.Fatal("Frame must be a no-op after Close")
	}
}

func TestWithCameraKeepsControllerButAppliesAutoRotate(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithAutoRotate(false))
	cam := camera.NewCamera(camera.WithController(ctrl))
	p, _, _, _ := newTestPanel(t, Config{AutoRotate: true}, okResult(360, 180), WithCamera(cam))
	defer p.Close()

	if cam.Controller() != ctrl {
		t.Fatal("expected the supplied controller to be kept")
	}
	if !ctrl.AutoRotate() {
		t.Fatal("expected config auto-rotate applied to the supplied controller")
	}
}

func TestAbandonedLoadIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	r := &fakeRenderer{width: 100, height: 100}
	ld := &fakeLoader{result: okResult(360, 180), hold: true}
	p := NewPanel(Config{PhotoURL: "pano.jpg"}, r, &fakeInput{}, ld)
	defer p.Close()

	var loaded int
	p.OnLoaded(func(loader.Result) { loaded++ })

	ld.abandon()
	p.Frame()
	p.Frame()

	if p.Initialized() {
		t.Fatal("abandoned load must leave the panel uninitialized")
	}
	if loaded != 0 {
		t.Fatalf("OnLoaded calls = %d, want 0", loaded)
	}
	if !strings.Contains(buf.String(), `[Panel] load of "pano.jpg" abandoned`) {
		t.Fatalf("log = %q, want abandoned message", buf.String())
	}
}

func TestWithCamera(t *testing.T) {
	cam := camera.NewCamera(camera.WithFov(60))
	p, _, _, _ := newTestPanel(t, Config{AutoRotate: true}, okResult(360, 180), WithCamera(cam), WithMarkerRadius(20), WithClickSlop(1))
	defer p.Close()

	if p.Camera() != cam {
		t.Fatal("expected supplied camera")
	}
	if cam.Controller() == nil || !cam.Controller().AutoRotate() {
		t.Fatal("expected a controller created from the config")
	}
	if cam.Fov() != 60 {
		t.Fatalf("fov = %v, want 60", cam.Fov())
	}
}

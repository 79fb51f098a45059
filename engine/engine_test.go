package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-sphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-sphere/engine/loader"
	"github.com/Carmen-Shannon/oxy-sphere/engine/overlay"
	"github.com/Carmen-Shannon/oxy-sphere/engine/panel"
	"github.com/Carmen-Shannon/oxy-sphere/engine/spherical"
)

// fakePanel records frames into a shared log so ordering can be checked.
type fakePanel struct {
	name     string
	log      *[]string
	features []overlay.ProjectedFeature
	closed   bool
}

func (p *fakePanel) Frame()                               { *p.log = append(*p.log, p.name) }
func (p *fakePanel) Resize(int, int)                      {}
func (p *fakePanel) Zoom(float64)                         {}
func (p *fakePanel) Initialized() bool                    { return true }
func (p *fakePanel) Dimension() spherical.Dimension       { return spherical.Dimension{} }
func (p *fakePanel) Features() []overlay.ProjectedFeature { return p.features }
func (p *fakePanel) Orientation() camera.Orientation      { return camera.Orientation{} }
func (p *fakePanel) Camera() camera.Camera                { return nil }
func (p *fakePanel) PixelAt(float64, float64) (spherical.PixelPosition, bool) {
	return spherical.PixelPosition{}, false
}
func (p *fakePanel) ActivateFeature(int) bool                     { return false }
func (p *fakePanel) OnFeatureActivated(func(panel.FeatureEvent))  {}
func (p *fakePanel) OnProjected(func([]overlay.ProjectedFeature)) {}
func (p *fakePanel) OnLoaded(func(loader.Result))                 {}
func (p *fakePanel) Close()                                       { p.closed = true }

// fakeLoop runs the update callback a fixed number of times.
type fakeLoop struct {
	update  func()
	frames  int
	closed  int
	cleared bool
}

func (l *fakeLoop) SetUpdateCallback(cb func()) {
	if cb == nil {
		l.cleared = true
	}
	l.update = cb
}

func (l *fakeLoop) ProcessMessages() {
	for range l.frames {
		if l.update == nil {
			return
		}
		l.update()
	}
}

func (l *fakeLoop) Close() error {
	l.closed++
	return nil
}

func TestStepFramesPanelsInKeyOrder(t *testing.T) {
	var order []string
	e := NewEngine(
		WithPanel(2, &fakePanel{name: "b", log: &order}),
		WithPanel(-1, &fakePanel{name: "a", log: &order}),
	)
	e.AddPanel(5, &fakePanel{name: "c", log: &order})

	var ticks int
	e.SetTickCallback(func(float32) {
		ticks++
		order = append(order, "tick")
	})

	e.Step(1.0 / 60)

	want := []string{"tick", "a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if ticks != 1 {
		t.Fatalf("ticks = %d, want 1", ticks)
	}
}

func TestRemovePanelCloses(t *testing.T) {
	var order []string
	p := &fakePanel{name: "a", log: &order}
	e := NewEngine(WithPanel(0, p))

	if e.Panel(0) != p {
		t.Fatal("expected registered panel")
	}
	e.RemovePanel(0)
	if !p.closed {
		t.Fatal("expected RemovePanel to close the panel")
	}
	if e.Panel(0) != nil {
		t.Fatal("expected panel to be removed")
	}
	e.Step(0)
	if len(order) != 0 {
		t.Fatalf("removed panel was framed: %v", order)
	}
}

func TestRunDrivesFramesAndQuits(t *testing.T) {
	var order []string
	p := &fakePanel{name: "a", log: &order}
	loop := &fakeLoop{frames: 3}

	e := NewEngine(WithPanel(0, p)).(*engine)
	e.loop = loop
	e.Run()

	if len(order) != 3 {
		t.Fatalf("frames = %d, want 3", len(order))
	}
	if !p.closed {
		t.Fatal("expected panels to be closed when the loop ends")
	}
	if loop.closed != 1 || !loop.cleared {
		t.Fatalf("loop closed %d times, cleared %v; want 1, true", loop.closed, loop.cleared)
	}

	e.Quit()
	if loop.closed != 1 {
		t.Fatal("Quit must be idempotent")
	}
}

func TestRunWithoutWindowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewEngine().Run()
}

func TestFrameLimitSleeps(t *testing.T) {
	e := NewEngine(WithTickRate(50)).(*engine)
	var slept time.Duration
	e.sleep = func(d time.Duration) { slept += d }
	e.lastFrame = time.Now()

	e.update()
	if slept <= 0 || slept > 20*time.Millisecond {
		t.Fatalf("slept %v, want (0, 20ms]", slept)
	}

	e.SetTickRate(0)
	slept = 0
	e.update()
	if slept != 0 {
		t.Fatalf("uncapped loop slept %v", slept)
	}
}

func TestProfilerCountsVisibleFeatures(t *testing.T) {
	var order []string
	p := &fakePanel{name: "a", log: &order, features: []overlay.ProjectedFeature{
		{Hidden: false}, {Hidden: true}, {Hidden: false},
	}}
	e := NewEngine(WithPanel(0, p), WithProfiling(true)).(*engine)
	e.profiler.SetInterval(time.Nanosecond)

	time.Sleep(time.Millisecond)
	e.Step(0)
	if got := e.profiler.Last().VisibleFeatures; got != 2 {
		t.Fatalf("visible features = %d, want 2", got)
	}

	e.DisableProfiler()
	p.features = nil
	time.Sleep(time.Millisecond)
	e.Step(0)
	if got := e.profiler.Last().VisibleFeatures; got != 2 {
		t.Fatal("disabled profiler must not sample")
	}
	e.EnableProfiler()
}

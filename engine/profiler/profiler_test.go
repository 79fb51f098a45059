package profiler

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTickSamplesAtInterval(t *testing.T) {
	clock := time.Unix(0, 0)
	var logged []string

	p := NewProfiler()
	p.now = func() time.Time { return clock }
	p.lastTime = clock
	p.logf = func(format string, v ...any) { logged = append(logged, fmt.Sprintf(format, v...)) }

	for i := range 59 {
		clock = clock.Add(time.Second / 60)
		if p.Tick(3) {
			t.Fatalf("tick %d sampled before the interval elapsed", i)
		}
	}
	clock = time.Unix(1, 0)
	if !p.Tick(3) {
		t.Fatal("expected a sample once the interval elapsed")
	}

	s := p.Last()
	if s.FPS < 59.9 || s.FPS > 60.1 {
		t.Fatalf("FPS = %.2f, want 60", s.FPS)
	}
	if s.VisibleFeatures != 3 {
		t.Fatalf("VisibleFeatures = %d, want 3", s.VisibleFeatures)
	}
	if len(logged) != 1 || !strings.HasPrefix(logged[0], "[Profiler] FPS: 60.00 | Features: 3 visible") {
		t.Fatalf("log = %q", logged)
	}
}

func TestSetInterval(t *testing.T) {
	clock := time.Unix(0, 0)
	p := NewProfiler()
	p.now = func() time.Time { return clock }
	p.lastTime = clock
	p.logf = func(string, ...any) {}

	p.SetInterval(0)
	if p.updateInterval != time.Second {
		t.Fatalf("interval = %v, want unchanged 1s", p.updateInterval)
	}

	p.SetInterval(100 * time.Millisecond)
	clock = clock.Add(100 * time.Millisecond)
	if !p.Tick(0) {
		t.Fatal("expected sample after the shorter interval")
	}
	if got := p.Last().FPS; got < 9.99 || got > 10.01 {
		t.Fatalf("FPS = %.2f, want 10", got)
	}
}

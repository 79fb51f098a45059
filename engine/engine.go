package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-sphere/engine/overlay"
	"github.com/Carmen-Shannon/oxy-sphere/engine/panel"
	"github.com/Carmen-Shannon/oxy-sphere/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sphere/engine/window"
)

// messageLoop is the part of window.Window the engine drives.
type messageLoop interface {
	SetUpdateCallback(callback func())
	ProcessMessages()
	Close() error
}

// engine implements the Engine interface.
// Everything runs on the window's message pump: input callbacks fire while events are polled,
// then the update callback renders one frame of every panel.
type engine struct {
	mu *sync.Mutex

	window window.Window
	loop   messageLoop

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(deltaTime float32)
	panels       map[int]panel.Panel

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame  time.Time
	sleep      func(time.Duration)

	quitOnce sync.Once
}

// Engine owns the frame loop of a photo sphere viewer.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate caps the frame rate.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called at the start of every frame, before the panels.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddPanel registers a panel at the given key. Panels are framed in ascending key order.
	//
	// Parameters:
	//   - key: ordering key
	//   - p: the panel
	AddPanel(key int, p panel.Panel)

	// RemovePanel closes and removes the panel at the given key.
	//
	// Parameters:
	//   - key: the key of the panel to remove
	RemovePanel(key int)

	// Panel returns the panel registered at key, or nil.
	//
	// Parameters:
	//   - key: the panel key
	//
	// Returns:
	//   - panel.Panel: the panel or nil
	Panel(key int) panel.Panel

	// Step renders one frame of every panel. Run calls it from the window's update callback.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Step(deltaTime float32)

	// Run pumps window messages until the window closes.
	Run()

	// Quit closes every panel and the window. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame cap)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		panels:   make(map[int]panel.Panel),
		profiler: profiler.NewProfiler(),
		sleep:    time.Sleep,
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	if e.loop == nil {
		panic("engine: Run requires a window")
	}
	e.lastFrame = time.Now()
	e.loop.SetUpdateCallback(e.update)
	e.loop.ProcessMessages()
	e.Quit()
}

// update is the window's per-iteration callback.
func (e *engine) update() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame recovered from panic: %v", r)
			e.Quit()
		}
	}()

	now := time.Now()
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now

	e.Step(dt)

	if e.frameLimit > 0 {
		if remaining := e.frameLimit - time.Since(now); remaining > 0 {
			e.sleep(remaining)
		}
	}
}

func (e *engine) Step(deltaTime float32) {
	e.mu.Lock()
	cb := e.tickCallback
	keys := make([]int, 0, len(e.panels))
	for k := range e.panels {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	ordered := make([]panel.Panel, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, e.panels[k])
	}
	profiling := e.profilingEnabled
	e.mu.Unlock()

	if cb != nil {
		cb(deltaTime)
	}

	visible := 0
	for _, p := range ordered {
		p.Frame()
		visible += overlay.CountVisible(p.Features())
	}

	if profiling && e.profiler != nil {
		e.profiler.Tick(visible)
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		panels := e.panels
		e.panels = make(map[int]panel.Panel)
		e.mu.Unlock()

		for _, p := range panels {
			p.Close()
		}
		if e.loop != nil {
			e.loop.SetUpdateCallback(nil)
			if err := e.loop.Close(); err != nil {
				log.Printf("[Engine] close window: %v", err)
			}
		}
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameLimit = frameDuration(fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddPanel(key int, p panel.Panel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.panels[key] = p
}

func (e *engine) RemovePanel(key int) {
	e.mu.Lock()
	p, ok := e.panels[key]
	delete(e.panels, key)
	e.mu.Unlock()
	if ok {
		p.Close()
	}
}

func (e *engine) Panel(key int) panel.Panel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.panels[key]
}

// frameDuration converts a frame cap into a minimum frame duration; 0 means uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

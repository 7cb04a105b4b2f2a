package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/rig-go/engine/profiler"
	"github.com/Carmen-Shannon/rig-go/engine/stage"
)

// engine implements the Engine interface.
// Runs the fixed-rate animation tick loop in its own goroutine.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	stages map[int]stage.Stage
}

// Engine is the animation runtime's main entry point. It drives registered
// stages at a fixed tick rate and fires a per-tick callback for gameplay
// logic (setting parameters, triggering transitions).
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// Stages and the tick callback are updated at this rate.
	//
	// Parameters:
	//   - tps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(tps float64)

	// SetTickCallback registers the function called each engine tick, before
	// the stages update. Use this for gameplay logic feeding the animation
	// system (parameters, triggers, crossfades).
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving
	//     the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddStage registers a stage at the given key.
	// Stages are updated in ascending key order each tick.
	//
	// Parameters:
	//   - key: the ordering key (lower updates first)
	//   - s: the Stage to register
	AddStage(key int, s stage.Stage)

	// RemoveStage removes the stage at the given key.
	//
	// Parameters:
	//   - key: the key of the stage to remove
	RemoveStage(key int)

	// Stage retrieves the stage registered at the given key.
	// Returns nil if no stage exists at that key.
	//
	// Parameters:
	//   - key: the key of the stage to retrieve
	//
	// Returns:
	//   - stage.Stage: the stage at the key, or nil if not found
	Stage(key int) stage.Stage

	// Stages returns a copy of all registered stages keyed by order.
	//
	// Returns:
	//   - map[int]stage.Stage: a copy of the stages map
	Stages() map[int]stage.Stage

	// Run starts the tick loop and blocks until Quit is called.
	Run()

	// Quit signals the tick loop to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes the tick channel and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, stages)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		stages:           make(map[int]stage.Stage),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

func (e *engine) Run() {
	e.running = true
	e.wg.Add(2)
	go e.handleTick()
	go e.handleQuit()
	e.wg.Wait()
}

// Quit signals the tick loop to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handleTick runs the fixed-rate tick loop in its own goroutine.
// Fires the tick callback and updates stages in ascending key order each
// tick, and listens for dynamic rate changes via tickRateChannel. Recovers
// from panics to avoid crashing the process and signals quit on recovery.
// Exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] tick goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}

			keys := make([]int, 0, len(e.stages))
			for k := range e.stages {
				keys = append(keys, k)
			}
			sort.Ints(keys)
			for _, k := range keys {
				e.stages[k].Update(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(tps float64) {
	if tps <= 0 {
		tps = 60
	}
	newRate := time.Second / time.Duration(tps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) AddStage(key int, s stage.Stage) {
	e.stages[key] = s
}

func (e *engine) RemoveStage(key int) {
	delete(e.stages, key)
}

func (e *engine) Stage(key int) stage.Stage {
	return e.stages[key]
}

func (e *engine) Stages() map[int]stage.Stage {
	cp := make(map[int]stage.Stage, len(e.stages))
	for k, v := range e.stages {
		cp[k] = v
	}
	return cp
}

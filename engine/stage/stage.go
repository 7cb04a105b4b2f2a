// Package stage hosts a population of characters and fans their per-frame
// updates across a reusable worker pool. Each character owns its own
// skeleton and playback clocks, so per-character updates are independent
// and safe to run in parallel.
package stage

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/rig-go/engine/character"
	"github.com/Carmen-Shannon/rig-go/engine/profiler"
)

// Stage is the crowd-update contract: register characters once, call Update
// every frame.
type Stage interface {
	// Add registers a character and returns its stage-assigned id.
	Add(c character.Character) uint64

	// Remove unregisters the character with the given id.
	//
	// Returns whether a character was removed.
	Remove(id uint64) bool

	// Character returns the registered character with the given id, or nil.
	Character(id uint64) character.Character

	// Count returns the number of registered characters.
	Count() int

	// Update advances every registered character by deltaTime, in parallel
	// across the worker pool, and blocks until all have finished.
	Update(deltaTime float32)

	// Clear unregisters every character. Pool workers idle-exit on their
	// own; the stage stays usable after Clear.
	Clear()
}

// taskQueueSize is the worker pool's pending-task capacity. Update submits
// in batches of this size so a crowd larger than the queue never overruns it.
const taskQueueSize = 256

type stage struct {
	mu sync.Mutex

	characters map[uint64]character.Character
	nextID     uint64

	workers int
	pool    worker.DynamicWorkerPool
	prof    *profiler.Profiler

	taskID int
}

var _ Stage = &stage{}

// StageOption is a functional option for configuring a stage at
// construction.
type StageOption func(*stage)

// WithWorkers is an option builder that sets the worker pool size.
//
// Parameters:
//   - workers: the number of pool workers (values below 1 are ignored)
//
// Returns:
//   - StageOption: a function that applies the worker count to a stage
func WithWorkers(workers int) StageOption {
	return func(s *stage) {
		if workers >= 1 {
			s.workers = workers
		}
	}
}

// WithProfiler is an option builder that attaches a profiler ticked once
// per Update.
//
// Parameters:
//   - p: the profiler to tick
//
// Returns:
//   - StageOption: a function that attaches the profiler to a stage
func WithProfiler(p *profiler.Profiler) StageOption {
	return func(s *stage) {
		s.prof = p
	}
}

// NewStage creates an empty stage. The worker pool defaults to one worker
// per CPU minus one, floored at one.
//
// Parameters:
//   - options: functional options for worker count and profiling
//
// Returns:
//   - Stage: the newly created stage
func NewStage(options ...StageOption) Stage {
	s := &stage{
		characters: make(map[uint64]character.Character),
		workers:    max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, taskQueueSize, 1*time.Second)
	return s
}

func (s *stage) Add(c character.Character) uint64 {
	if c == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.characters[id] = c
	return id
}

func (s *stage) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return false
	}
	delete(s.characters, id)
	return true
}

func (s *stage) Character(id uint64) character.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.characters[id]
}

func (s *stage) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.characters)
}

func (s *stage) Update(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Workers are reused across frames (no goroutine spawn overhead). A
	// WaitGroup provides per-frame barrier sync since pool.Wait() blocks
	// until workers idle-exit, which is unsuitable for frame-rate workloads.
	// Draining at the queue capacity keeps submissions within its bounds.
	var wg sync.WaitGroup
	pending := 0
	for _, c := range s.characters {
		wg.Add(1)
		cCap := c // capture for closure
		s.taskID++
		s.pool.SubmitTask(worker.Task{
			ID: s.taskID,
			Do: func() (any, error) {
				defer wg.Done()
				cCap.Update(deltaTime)
				return nil, nil
			},
		})
		pending++
		if pending == taskQueueSize {
			wg.Wait()
			pending = 0
		}
	}
	wg.Wait()

	if s.prof != nil {
		s.prof.Tick()
	}
}

func (s *stage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters = make(map[uint64]character.Character)
}

// Package statemachine implements the animation finite state machine: named
// states wrapping clips or blend trees, parameter-guarded transitions, and a
// per-frame update that blends the outgoing and incoming state's poses into
// a skeleton during transitions.
package statemachine

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/rig-go/engine/pose"
	"github.com/Carmen-Shannon/rig-go/engine/skeleton"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// minTransitionDuration floors transition durations so blend progress never
// divides by zero.
const minTransitionDuration float32 = 0.001

// StateHandler receives state-entered and state-exited notifications with
// the state's name.
type StateHandler func(stateName string)

// Machine is the animation state machine contract. A machine owns its
// states and transitions, drives at most one skeleton, and must only be
// updated from one goroutine; its clocks are per-instance mutable state.
type Machine interface {
	// AddState registers a named state wrapping the given motion source and
	// returns it. Adding a duplicate name returns nil.
	AddState(name string, source MotionSource, options ...StateOption) *State

	// State returns the named state, or nil if unknown.
	State(name string) *State

	// AddTransition appends a transition to the evaluation list. Transitions
	// are evaluated in the order added. Self-transitions (From == To) are
	// never taken; use ForceState to restart a state.
	AddTransition(t *Transition)

	// SetDefaultState names the state entered by Start.
	SetDefaultState(name string)

	// AttachSkeleton binds the machine to the skeleton it writes poses into.
	// A machine drives at most one skeleton; attaching a second returns an
	// error.
	AttachSkeleton(s *skeleton.Skeleton) error

	// Params returns the machine's parameter store.
	Params() *Params

	// Start enters the default state and begins running.
	Start()

	// Stop exits the current state, clears any in-flight transition, and
	// halts the machine.
	Stop()

	// Running reports whether the machine is started.
	Running() bool

	// Update advances clocks, evaluates transitions, and writes the blended
	// pose into the attached skeleton. Negative deltas are ignored.
	Update(deltaTime float32)

	// ForceState snaps directly to the named state, bypassing transition
	// blending and cancelling any in-flight transition. Unknown names do
	// nothing.
	ForceState(name string)

	// CurrentState returns the active state, or nil when stopped.
	CurrentState() *State

	// InTransition reports whether a transition blend is in progress.
	InTransition() bool

	// TransitionProgress returns the current blend progress in [0, 1], or 0
	// when not transitioning.
	TransitionProgress() float32

	// OnStateEntered registers a handler fired whenever a state is entered.
	// Handlers run outside the machine's lock and may call back into it.
	OnStateEntered(h StateHandler)

	// OnStateExited registers a handler fired whenever a state is exited.
	// Handlers run outside the machine's lock and may call back into it.
	OnStateExited(h StateHandler)
}

type machine struct {
	mu sync.Mutex

	states       map[string]*State
	transitions  []*Transition
	params       *Params
	defaultState string

	skel        *skeleton.Skeleton
	manualWorld bool

	current *State
	next    *State
	tween   *gween.Tween
	blend   float32
	easeFn  ease.TweenFunc
	running bool

	enteredHandlers []StateHandler
	exitedHandlers  []StateHandler
}

var _ Machine = &machine{}

// MachineOption is a functional option for configuring a machine at
// construction.
type MachineOption func(*machine)

// WithTransitionEase is an option builder that sets the easing curve applied
// to transition blend progress. The default is linear.
//
// Parameters:
//   - fn: the easing function applied to blend progress
//
// Returns:
//   - MachineOption: a function that applies the easing to a machine
func WithTransitionEase(fn ease.TweenFunc) MachineOption {
	return func(m *machine) {
		if fn != nil {
			m.easeFn = fn
		}
	}
}

// WithManualWorldPoses is an option builder that suppresses the machine's
// own world-pose recomputation after writing local poses. Callers that apply
// layers on top of the machine's output use this and recompute once
// themselves.
//
// Returns:
//   - MachineOption: a function that enables manual world-pose control
func WithManualWorldPoses() MachineOption {
	return func(m *machine) {
		m.manualWorld = true
	}
}

// NewMachine creates an empty, stopped state machine.
//
// Parameters:
//   - options: functional options for transition easing and world-pose
//     control
//
// Returns:
//   - Machine: the newly created machine
func NewMachine(options ...MachineOption) Machine {
	m := &machine{
		states: make(map[string]*State),
		params: NewParams(),
		easeFn: ease.Linear,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *machine) AddState(name string, source MotionSource, options ...StateOption) *State {
	if source == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.states[name]; exists {
		return nil
	}
	s := NewState(name, source, options...)
	m.states[name] = s
	return s
}

func (m *machine) State(name string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[name]
}

func (m *machine) AddTransition(t *Transition) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, t)
}

func (m *machine) SetDefaultState(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultState = name
}

func (m *machine) AttachSkeleton(s *skeleton.Skeleton) error {
	if s == nil {
		return fmt.Errorf("statemachine: cannot attach nil skeleton")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skel != nil && m.skel != s {
		return fmt.Errorf("statemachine: machine already attached to a skeleton")
	}
	m.skel = s
	return nil
}

func (m *machine) Params() *Params {
	return m.params
}

func (m *machine) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	var notes []notification
	if s, ok := m.states[m.defaultState]; ok {
		m.current = s
		s.Enter()
		notes = append(notes, notification{entered: true, name: s.Name()})
	}
	entered, exited := m.enteredHandlers, m.exitedHandlers
	m.mu.Unlock()
	fireNotifications(notes, entered, exited)
}

func (m *machine) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	var notes []notification
	if m.next != nil {
		m.next.Exit()
		notes = append(notes, notification{name: m.next.Name()})
	}
	if m.current != nil {
		m.current.Exit()
		notes = append(notes, notification{name: m.current.Name()})
	}
	m.current = nil
	m.next = nil
	m.tween = nil
	m.blend = 0
	m.running = false
	entered, exited := m.enteredHandlers, m.exitedHandlers
	m.mu.Unlock()
	fireNotifications(notes, entered, exited)
}

func (m *machine) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *machine) Update(deltaTime float32) {
	m.mu.Lock()
	if !m.running || m.current == nil || deltaTime < 0 {
		m.mu.Unlock()
		return
	}

	var notes []notification
	if m.next == nil {
		m.current.Advance(deltaTime)
		notes = m.evaluateTransitions()
	} else {
		m.current.Advance(deltaTime)
		m.next.Advance(deltaTime)
		blend, done := m.tween.Update(deltaTime)
		m.blend = blend
		if done {
			m.current.Exit()
			notes = append(notes, notification{name: m.current.Name()})
			m.current = m.next
			m.next = nil
			m.tween = nil
			m.blend = 0
		}
	}

	m.writePoses()
	entered, exited := m.enteredHandlers, m.exitedHandlers
	m.mu.Unlock()
	fireNotifications(notes, entered, exited)
}

// evaluateTransitions walks the transition list in order and begins the
// first eligible transition out of the current state, returning the deferred
// state-entered notification. Transitions toward unknown states are skipped.
func (m *machine) evaluateTransitions() []notification {
	for _, t := range m.transitions {
		if t.From != m.current.Name() {
			continue
		}
		if !t.eligible(m.current, m.params) {
			continue
		}
		target, ok := m.states[t.To]
		if !ok || target == m.current {
			continue
		}
		duration := t.Duration
		if duration < minTransitionDuration {
			duration = minTransitionDuration
		}
		m.next = target
		m.tween = gween.New(0, 1, duration, m.easeFn)
		m.blend = 0
		target.Enter()
		return []notification{{entered: true, name: target.Name()}}
	}
	return nil
}

// writePoses samples the active state (blending with the incoming state
// while transitioning) for every skeleton bone and writes the local poses,
// then recomputes world poses unless manual world-pose control is enabled.
func (m *machine) writePoses() {
	if m.skel == nil {
		return
	}
	for _, b := range m.skel.Bones() {
		p := m.current.Sample(b.Name)
		if m.next != nil {
			p = pose.Lerp(p, m.next.Sample(b.Name), m.blend)
		}
		b.Local = p
	}
	if !m.manualWorld {
		m.skel.CalculateWorldPoses()
	}
}

func (m *machine) ForceState(name string) {
	m.mu.Lock()
	target, ok := m.states[name]
	if !ok {
		m.mu.Unlock()
		return
	}
	var notes []notification
	if m.next != nil {
		m.next.Exit()
		notes = append(notes, notification{name: m.next.Name()})
		m.next = nil
		m.tween = nil
		m.blend = 0
	}
	if m.current != nil {
		m.current.Exit()
		notes = append(notes, notification{name: m.current.Name()})
	}
	m.current = target
	target.Enter()
	notes = append(notes, notification{entered: true, name: target.Name()})
	entered, exited := m.enteredHandlers, m.exitedHandlers
	m.mu.Unlock()
	fireNotifications(notes, entered, exited)
}

func (m *machine) CurrentState() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *machine) InTransition() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next != nil
}

func (m *machine) TransitionProgress() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next == nil {
		return 0
	}
	return m.blend
}

func (m *machine) OnStateEntered(h StateHandler) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enteredHandlers = append(m.enteredHandlers, h)
}

func (m *machine) OnStateExited(h StateHandler) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitedHandlers = append(m.exitedHandlers, h)
}

// notification is a deferred handler dispatch, collected while the machine
// lock is held and fired only after it is released so handlers may call back
// into the machine.
type notification struct {
	entered bool
	name    string
}

func fireNotifications(notes []notification, entered, exited []StateHandler) {
	for _, n := range notes {
		handlers := exited
		if n.entered {
			handlers = entered
		}
		for _, h := range handlers {
			h(n.name)
		}
	}
}

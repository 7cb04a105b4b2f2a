package statemachine

// Transition is an edge between two named states, guarded by an optional
// exit-time gate and an ordered list of parameter conditions. Transitions
// are owned by the machine and evaluated in the order they were added; the
// Priority field is carried for authoring tools that want to sort before
// adding, the machine itself does not reorder.
type Transition struct {
	// From is the source state name.
	From string

	// To is the target state name.
	To string

	// Duration is the blend duration in seconds. Clamped to a 0.001s minimum
	// when the transition fires.
	Duration float32

	// HasExitTime gates the transition on the source state's normalized time.
	HasExitTime bool

	// ExitTime is the normalized time threshold below which the transition
	// cannot fire. Only consulted when HasExitTime is true.
	ExitTime float32

	// Priority is an authoring-side ordering hint. Not used by evaluation.
	Priority int

	// Conditions is the ordered list of parameter guards; all must match.
	Conditions []Condition
}

// TransitionOption is a functional option for configuring a transition.
type TransitionOption func(*Transition)

// WithExitTime is an option builder that gates the transition on the source
// state reaching a normalized time.
//
// Parameters:
//   - exitTime: the normalized time threshold (0-1 fraction of the source
//     state's duration)
//
// Returns:
//   - TransitionOption: a function that applies the gate to a transition
func WithExitTime(exitTime float32) TransitionOption {
	return func(t *Transition) {
		t.HasExitTime = true
		t.ExitTime = exitTime
	}
}

// WithPriority is an option builder that sets the transition's authoring
// priority hint.
//
// Parameters:
//   - priority: the priority value (higher = more important)
//
// Returns:
//   - TransitionOption: a function that applies the priority to a transition
func WithPriority(priority int) TransitionOption {
	return func(t *Transition) {
		t.Priority = priority
	}
}

// WithCondition is an option builder that appends a parameter guard to the
// transition.
//
// Parameters:
//   - c: the condition to append
//
// Returns:
//   - TransitionOption: a function that appends the condition to a transition
func WithCondition(c Condition) TransitionOption {
	return func(t *Transition) {
		t.Conditions = append(t.Conditions, c)
	}
}

// NewTransition creates a transition between two named states.
//
// Parameters:
//   - from: the source state name
//   - to: the target state name
//   - duration: the blend duration in seconds
//   - options: functional options for exit time, priority, and conditions
//
// Returns:
//   - *Transition: the newly created transition
func NewTransition(from, to string, duration float32, options ...TransitionOption) *Transition {
	t := &Transition{
		From:     from,
		To:       to,
		Duration: duration,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// eligible reports whether the transition may fire given the source state's
// progress and the current parameter values.
func (t *Transition) eligible(source *State, params *Params) bool {
	if t.HasExitTime && source.NormalizedTime() < t.ExitTime {
		return false
	}
	for _, c := range t.Conditions {
		if !c.evaluate(params) {
			return false
		}
	}
	return true
}

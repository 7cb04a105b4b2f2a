package statemachine

import (
	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
)

// MotionSource is anything a state can sample a pose from at a point in
// time. *clip.Clip and *blendtree.Tree both satisfy it; the variant set is
// deliberately closed at those two.
type MotionSource interface {
	// Sample returns the source's pose for the named bone at the given time.
	Sample(boneName string, t float32) pose.BonePose

	// Duration returns the source's effective duration in seconds.
	Duration() float32
}

// advancer is the optional per-frame hook a motion source may implement.
// Blend trees need it to recompute weights and run their child clocks.
type advancer interface {
	Update(deltaTime float32)
}

// State wraps one motion source with a playback clock, a speed multiplier,
// and an optional mirror flag. States hold mutable time and are owned by
// exactly one machine; sharing a state between machines corrupts both
// clocks.
type State struct {
	// Speed is the playback speed multiplier.
	Speed float32

	// Mirror reflects sampled poses across the YZ plane.
	Mirror bool

	name   string
	source MotionSource
	time   float32
}

// StateOption is a functional option for configuring a state when it is
// added to a machine.
type StateOption func(*State)

// WithSpeed is an option builder that sets the state's playback speed
// multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal)
//
// Returns:
//   - StateOption: a function that applies the speed to a state
func WithSpeed(speed float32) StateOption {
	return func(s *State) {
		s.Speed = speed
	}
}

// WithMirror is an option builder that enables pose mirroring for the state.
//
// Returns:
//   - StateOption: a function that enables mirroring on a state
func WithMirror() StateOption {
	return func(s *State) {
		s.Mirror = true
	}
}

// NewState creates a state wrapping the given motion source. Speed defaults
// to 1. States added to a machine are created by the machine itself;
// standalone states built here are meant for animation layers, which sample
// a state without owning a machine.
//
// Parameters:
//   - name: the state's identifier
//   - source: the motion source the state samples (must not be nil)
//   - options: functional options for speed and mirroring
//
// Returns:
//   - *State: the newly created state, or nil if source is nil
func NewState(name string, source MotionSource, options ...StateOption) *State {
	if source == nil {
		return nil
	}
	s := &State{
		Speed:  1,
		name:   name,
		source: source,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Name returns the state's identifier.
//
// Returns:
//   - string: the state name
func (s *State) Name() string {
	return s.name
}

// Source returns the state's motion source.
//
// Returns:
//   - MotionSource: the wrapped source
func (s *State) Source() MotionSource {
	return s.source
}

// Time returns the state's playback clock in seconds.
//
// Returns:
//   - float32: the current clock
func (s *State) Time() float32 {
	return s.time
}

// NormalizedTime returns the playback clock as a fraction of the source's
// duration. Unclamped: a looping state past its first period reports values
// above 1.
//
// Returns:
//   - float32: the normalized time, or 0 if the source has no duration
func (s *State) NormalizedTime() float32 {
	d := s.source.Duration()
	if d < common.Epsilon {
		return 0
	}
	return s.time / d
}

// Enter resets the state's clock to zero. Called by the machine when the
// state becomes active or a transition toward it begins.
func (s *State) Enter() {
	s.time = 0
}

// Exit is the state's deactivation hook. The clock is left as-is so a state
// can be inspected after the fact.
func (s *State) Exit() {}

// Advance moves the state's clock forward by deltaTime scaled by the state's
// speed, and runs the motion source's own per-frame update if it has one.
//
// Parameters:
//   - deltaTime: elapsed time since the last frame in seconds
func (s *State) Advance(deltaTime float32) {
	scaled := deltaTime * s.Speed
	s.time += scaled
	if a, ok := s.source.(advancer); ok {
		a.Update(scaled)
	}
}

// Sample returns the state's pose for the named bone at the current clock,
// mirrored if the state's mirror flag is set.
//
// Parameters:
//   - boneName: the bone to sample
//
// Returns:
//   - pose.BonePose: the sampled pose
func (s *State) Sample(boneName string) pose.BonePose {
	p := s.source.Sample(boneName, s.time)
	if s.Mirror {
		p = mirrorPose(p)
	}
	return p
}

// mirrorPose reflects a pose across the YZ plane: the X position component
// is negated, and the rotation's Y and Z components are negated.
func mirrorPose(p pose.BonePose) pose.BonePose {
	p.Position[0] = -p.Position[0]
	p.Rotation[1] = -p.Rotation[1]
	p.Rotation[2] = -p.Rotation[2]
	return p
}

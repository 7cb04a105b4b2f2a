// Package animator implements single-clip playback with linear crossfading:
// one active clip drives a skeleton, an optional second clip is blended in
// over a fixed duration, and timeline events crossed during the frame are
// fired to registered handlers.
package animator

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/rig-go/engine/clip"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
	"github.com/Carmen-Shannon/rig-go/engine/skeleton"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// minCrossfadeDuration floors crossfade durations so blend progress never
// divides by zero.
const minCrossfadeDuration float32 = 0.001

// playState is the animator's playback meta-state.
type playState int

const (
	stateStopped playState = iota
	statePlaying
	statePaused
)

// EventHandler receives a clip event the moment playback crosses its time.
type EventHandler func(e clip.Event)

// Animator is the single-clip playback contract. An animator owns its
// playback clocks, drives at most one skeleton, and must only be updated
// from one goroutine.
type Animator interface {
	// AddClip registers a clip by its name, replacing any previous clip with
	// the same name. Nil clips are ignored.
	AddClip(c *clip.Clip)

	// Clip returns the registered clip with the given name, or nil.
	Clip(name string) *clip.Clip

	// AttachSkeleton binds the animator to the skeleton it writes poses
	// into. An animator drives at most one skeleton; attaching a second
	// returns an error.
	AttachSkeleton(s *skeleton.Skeleton) error

	// Play starts the named clip from time zero, cancelling any crossfade.
	// Unknown names do nothing.
	Play(name string)

	// Crossfade blends from the playing clip to the named clip over the
	// given duration (floored at 0.001s). Acts like Play when nothing is
	// playing. Unknown names do nothing.
	Crossfade(name string, duration float32)

	// Pause suspends playback without losing position.
	Pause()

	// Resume continues paused playback.
	Resume()

	// Stop halts playback and clears the active clip and any crossfade.
	Stop()

	// SetSpeed sets the playback speed multiplier.
	SetSpeed(speed float32)

	// Speed returns the playback speed multiplier.
	Speed() float32

	// Playing reports whether a clip is actively playing.
	Playing() bool

	// CurrentClip returns the active clip, or nil when stopped.
	CurrentClip() *clip.Clip

	// Time returns the active clip's playback clock in seconds.
	Time() float32

	// Blending reports whether a crossfade is in progress.
	Blending() bool

	// BlendProgress returns the crossfade progress in [0, 1], or 0 when not
	// blending.
	BlendProgress() float32

	// Update advances playback, fires crossed events, blends any crossfade,
	// and writes poses into the attached skeleton. Negative deltas are
	// ignored.
	Update(deltaTime float32)

	// OnEvent registers a handler fired once per crossed clip event. Handlers
	// run outside the animator's lock and may call back into it.
	OnEvent(h EventHandler)
}

type animator struct {
	mu sync.Mutex

	clips map[string]*clip.Clip

	skel        *skeleton.Skeleton
	manualWorld bool

	state playState
	speed float32

	current *clip.Clip
	time    float32

	blendClip *clip.Clip
	blendTime float32
	tween     *gween.Tween
	progress  float32
	easeFn    ease.TweenFunc

	eventHandlers []EventHandler
}

var _ Animator = &animator{}

// AnimatorOption is a functional option for configuring an animator at
// construction.
type AnimatorOption func(*animator)

// WithSpeed is an option builder that sets the animator's initial playback
// speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal)
//
// Returns:
//   - AnimatorOption: a function that applies the speed to an animator
func WithSpeed(speed float32) AnimatorOption {
	return func(a *animator) {
		a.speed = speed
	}
}

// WithCrossfadeEase is an option builder that sets the easing curve applied
// to crossfade blend progress. The default is linear.
//
// Parameters:
//   - fn: the easing function applied to blend progress
//
// Returns:
//   - AnimatorOption: a function that applies the easing to an animator
func WithCrossfadeEase(fn ease.TweenFunc) AnimatorOption {
	return func(a *animator) {
		if fn != nil {
			a.easeFn = fn
		}
	}
}

// WithManualWorldPoses is an option builder that suppresses the animator's
// own world-pose recomputation after writing local poses. Callers that
// apply layers on top of the animator's output use this and recompute once
// themselves.
//
// Returns:
//   - AnimatorOption: a function that enables manual world-pose control
func WithManualWorldPoses() AnimatorOption {
	return func(a *animator) {
		a.manualWorld = true
	}
}

// WithClips is an option builder that registers clips at construction.
//
// Parameters:
//   - clips: the clips to register
//
// Returns:
//   - AnimatorOption: a function that registers the clips on an animator
func WithClips(clips ...*clip.Clip) AnimatorOption {
	return func(a *animator) {
		for _, c := range clips {
			if c != nil {
				a.clips[c.Name()] = c
			}
		}
	}
}

// NewAnimator creates a stopped animator with no clips registered.
//
// Parameters:
//   - options: functional options for speed, easing, clips, and world-pose
//     control
//
// Returns:
//   - Animator: the newly created animator
func NewAnimator(options ...AnimatorOption) Animator {
	a := &animator{
		clips:  make(map[string]*clip.Clip),
		speed:  1,
		easeFn: ease.Linear,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *animator) AddClip(c *clip.Clip) {
	if c == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clips[c.Name()] = c
}

func (a *animator) Clip(name string) *clip.Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clips[name]
}

func (a *animator) AttachSkeleton(s *skeleton.Skeleton) error {
	if s == nil {
		return fmt.Errorf("animator: cannot attach nil skeleton")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.skel != nil && a.skel != s {
		return fmt.Errorf("animator: animator already attached to a skeleton")
	}
	a.skel = s
	return nil
}

func (a *animator) Play(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.clips[name]
	if !ok {
		return
	}
	a.current = c
	a.time = 0
	a.clearBlendLocked()
	a.state = statePlaying
}

func (a *animator) Crossfade(name string, duration float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.clips[name]
	if !ok {
		return
	}
	if a.state != statePlaying || a.current == nil {
		a.current = c
		a.time = 0
		a.clearBlendLocked()
		a.state = statePlaying
		return
	}
	if duration < minCrossfadeDuration {
		duration = minCrossfadeDuration
	}
	a.blendClip = c
	a.blendTime = 0
	a.tween = gween.New(0, 1, duration, a.easeFn)
	a.progress = 0
}

func (a *animator) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == statePlaying {
		a.state = statePaused
	}
}

func (a *animator) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == statePaused {
		a.state = statePlaying
	}
}

func (a *animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = nil
	a.time = 0
	a.clearBlendLocked()
	a.state = stateStopped
}

func (a *animator) SetSpeed(speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.speed = speed
}

func (a *animator) Speed() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speed
}

func (a *animator) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == statePlaying
}

func (a *animator) CurrentClip() *clip.Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *animator) Time() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.time
}

func (a *animator) Blending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blendClip != nil
}

func (a *animator) BlendProgress() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.blendClip == nil {
		return 0
	}
	return a.progress
}

func (a *animator) Update(deltaTime float32) {
	a.mu.Lock()
	if a.state != statePlaying || a.current == nil || deltaTime < 0 {
		a.mu.Unlock()
		return
	}

	prev := a.time
	a.time += deltaTime * a.speed

	events := a.current.EventsInRange(prev, a.time)
	handlers := a.eventHandlers

	if a.blendClip != nil {
		a.blendTime += deltaTime * a.speed
		progress, done := a.tween.Update(deltaTime)
		a.progress = progress
		if done {
			a.current = a.blendClip
			a.time = a.blendTime
			a.clearBlendLocked()
		}
	}

	a.writePosesLocked()
	a.mu.Unlock()

	// Handlers run outside the lock so they may call back into the animator.
	for _, e := range events {
		for _, h := range handlers {
			h(e)
		}
	}
}

// writePosesLocked samples every bone tracked by the active clip, blends
// with the crossfade clip where it tracks the same bone, and writes the
// local poses, then recomputes world poses unless manual world-pose control
// is enabled.
func (a *animator) writePosesLocked() {
	if a.skel == nil {
		return
	}
	for _, boneName := range a.current.TrackBones() {
		b := a.skel.BoneByName(boneName)
		if b == nil {
			continue
		}
		p := a.current.Sample(boneName, a.time)
		if a.blendClip != nil && a.blendClip.HasTrack(boneName) {
			q := a.blendClip.Sample(boneName, a.blendTime)
			p = pose.Lerp(p, q, a.progress)
		}
		b.Local = p
	}
	if !a.manualWorld {
		a.skel.CalculateWorldPoses()
	}
}

func (a *animator) clearBlendLocked() {
	a.blendClip = nil
	a.blendTime = 0
	a.tween = nil
	a.progress = 0
}

func (a *animator) OnEvent(h EventHandler) {
	if h == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eventHandlers = append(a.eventHandlers, h)
}

// Package clip implements keyframed animation clips: named per-bone tracks
// of Hermite keyframes plus timeline events, sampled under a loop mode.
//
// Clips follow a build-then-freeze lifecycle: construct with AddTrack,
// AddKeyframe, and AddEvent, optionally generate smooth tangents, then call
// Freeze. A frozen clip is immutable and safe to share across any number of
// playback instances on any number of goroutines.
package clip

import (
	"math"
	"sort"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
)

// Track is the keyframe sequence animating one bone within a clip. Keyframes
// must be appended in ascending time order; sampling scans linearly and
// assumes ascending times.
type Track struct {
	// BoneName is the name of the bone this track animates.
	BoneName string

	// Keyframes is the track's keyframe sequence, ordered by ascending time.
	Keyframes []Keyframe
}

// Clip is a named collection of per-bone tracks and timeline events. Duration
// auto-extends to the latest keyframe or event time added.
type Clip struct {
	name     string
	duration float32
	loop     LoopMode

	tracks []*Track
	byBone map[string]int
	events []Event
	frozen bool
}

// ClipBuilderOption is a functional option for configuring a Clip during
// construction.
type ClipBuilderOption func(*Clip)

// WithLoopMode is an option builder that sets the clip's loop mode.
//
// Parameters:
//   - mode: the loop mode to use
//
// Returns:
//   - ClipBuilderOption: a function that applies the loop mode to a clip
func WithLoopMode(mode LoopMode) ClipBuilderOption {
	return func(c *Clip) {
		c.loop = mode
	}
}

// WithDuration is an option builder that presets the clip's duration. The
// duration still auto-extends if later keyframes exceed it.
//
// Parameters:
//   - seconds: the clip duration in seconds
//
// Returns:
//   - ClipBuilderOption: a function that applies the duration to a clip
func WithDuration(seconds float32) ClipBuilderOption {
	return func(c *Clip) {
		if seconds > c.duration {
			c.duration = seconds
		}
	}
}

// NewClip creates an empty clip with the given name.
//
// Parameters:
//   - name: the clip's identifier
//   - options: functional options for loop mode and duration
//
// Returns:
//   - *Clip: the newly created clip
func NewClip(name string, options ...ClipBuilderOption) *Clip {
	c := &Clip{
		name:   name,
		loop:   LoopNone,
		byBone: make(map[string]int),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Name returns the clip's identifier.
//
// Returns:
//   - string: the clip name
func (c *Clip) Name() string {
	return c.name
}

// Duration returns the clip's duration in seconds.
//
// Returns:
//   - float32: the duration
func (c *Clip) Duration() float32 {
	return c.duration
}

// Loop returns the clip's loop mode.
//
// Returns:
//   - LoopMode: the loop mode
func (c *Clip) Loop() LoopMode {
	return c.loop
}

// SetLoopMode changes the clip's loop mode. No-op on a frozen clip.
//
// Parameters:
//   - mode: the loop mode to use
func (c *Clip) SetLoopMode(mode LoopMode) {
	if c.frozen {
		return
	}
	c.loop = mode
}

// Frozen reports whether the clip has been frozen.
//
// Returns:
//   - bool: true once Freeze has been called
func (c *Clip) Frozen() bool {
	return c.frozen
}

// Freeze locks the clip against further mutation. After freezing, the clip
// is safe for concurrent sampling from multiple playback instances. Freezing
// is irreversible.
func (c *Clip) Freeze() {
	c.frozen = true
}

// AddTrack creates a new track animating the named bone and returns its
// index. Returns -1 if the clip is frozen or the bone already has a track.
//
// Parameters:
//   - boneName: the bone the new track animates
//
// Returns:
//   - int: the track index, or -1 on rejection
func (c *Clip) AddTrack(boneName string) int {
	if c.frozen {
		return -1
	}
	if _, exists := c.byBone[boneName]; exists {
		return -1
	}
	idx := len(c.tracks)
	c.tracks = append(c.tracks, &Track{BoneName: boneName})
	c.byBone[boneName] = idx
	return idx
}

// AddKeyframe appends a keyframe to the track at the given index. Keyframes
// must be added in ascending time order. The clip's duration auto-extends to
// the keyframe time. No-op if the clip is frozen or the index is invalid.
//
// Parameters:
//   - trackIndex: the track to append to
//   - kf: the keyframe to append
func (c *Clip) AddKeyframe(trackIndex int, kf Keyframe) {
	if c.frozen || trackIndex < 0 || trackIndex >= len(c.tracks) {
		return
	}
	c.tracks[trackIndex].Keyframes = append(c.tracks[trackIndex].Keyframes, kf)
	if kf.Time > c.duration {
		c.duration = kf.Time
	}
}

// AddEvent appends a timeline event. The clip's duration auto-extends to the
// event time. No-op if the clip is frozen.
//
// Parameters:
//   - ev: the event to append
func (c *Clip) AddEvent(ev Event) {
	if c.frozen {
		return
	}
	c.events = append(c.events, ev)
	if ev.Time > c.duration {
		c.duration = ev.Time
	}
}

// Events returns the clip's events in insertion order.
//
// Returns:
//   - []Event: the clip's events
func (c *Clip) Events() []Event {
	return c.events
}

// TrackCount returns the number of tracks in the clip.
//
// Returns:
//   - int: the track count
func (c *Clip) TrackCount() int {
	return len(c.tracks)
}

// Track returns the track at the given index, or nil if out of range.
//
// Parameters:
//   - index: the track index
//
// Returns:
//   - *Track: the track, or nil
func (c *Clip) Track(index int) *Track {
	if index < 0 || index >= len(c.tracks) {
		return nil
	}
	return c.tracks[index]
}

// HasTrack reports whether the clip animates the named bone.
//
// Parameters:
//   - boneName: the bone name to check
//
// Returns:
//   - bool: true if a track exists for the bone
func (c *Clip) HasTrack(boneName string) bool {
	_, ok := c.byBone[boneName]
	return ok
}

// TrackBones returns the names of all bones the clip animates, in track
// order.
//
// Returns:
//   - []string: the animated bone names
func (c *Clip) TrackBones() []string {
	names := make([]string, len(c.tracks))
	for i, tr := range c.tracks {
		names[i] = tr.BoneName
	}
	return names
}

// CalculateLinearTangents zeroes every keyframe tangent on every track,
// producing straight-line interpolation between keyframes. No-op on a frozen
// clip.
func (c *Clip) CalculateLinearTangents() {
	if c.frozen {
		return
	}
	for _, tr := range c.tracks {
		for i := range tr.Keyframes {
			tr.Keyframes[i].In = TangentSet{}
			tr.Keyframes[i].Out = TangentSet{}
		}
	}
}

// CalculateSmoothTangents generates Catmull-Rom tangents for every keyframe
// on every track: the tangent at keyframe k is the slope between its
// neighbors, (value[k+1] - value[k-1]) / (time[k+1] - time[k-1]), with a
// one-sided difference at sequence endpoints. Time deltas below the epsilon
// threshold produce zero tangents. No-op on a frozen clip.
func (c *Clip) CalculateSmoothTangents() {
	if c.frozen {
		return
	}
	for _, tr := range c.tracks {
		smoothTrackTangents(tr)
	}
}

func smoothTrackTangents(tr *Track) {
	n := len(tr.Keyframes)
	if n < 2 {
		return
	}
	for i := range tr.Keyframes {
		prev := i - 1
		next := i + 1
		if prev < 0 {
			prev = i
		}
		if next >= n {
			next = i
		}

		a := &tr.Keyframes[prev]
		b := &tr.Keyframes[next]
		dt := b.Time - a.Time

		var tan TangentSet
		if dt >= common.Epsilon {
			inv := 1.0 / dt
			for k := 0; k < 3; k++ {
				tan.Position[k] = (b.Pose.Position[k] - a.Pose.Position[k]) * inv
				tan.Scale[k] = (b.Pose.Scale[k] - a.Pose.Scale[k]) * inv
			}
			for k := 0; k < 4; k++ {
				tan.Rotation[k] = (b.Pose.Rotation[k] - a.Pose.Rotation[k]) * inv
			}
		}

		tr.Keyframes[i].In = tan
		tr.Keyframes[i].Out = tan
	}
}

// localTime maps a query time onto the clip's [0, duration] window according
// to the loop mode.
func (c *Clip) localTime(t float32) float32 {
	d := c.duration
	if d < common.Epsilon {
		return 0
	}
	switch c.loop {
	case LoopRepeat:
		local := float32(math.Mod(float64(t), float64(d)))
		if local < 0 {
			local += d
		}
		return local
	case LoopPingPong:
		local := float32(math.Mod(float64(t), float64(2*d)))
		if local < 0 {
			local += 2 * d
		}
		if local > d {
			local = 2*d - local
		}
		return local
	default: // LoopNone, LoopClampForever
		return common.Clamp(t, 0, d)
	}
}

// Sample evaluates the named bone's track at the given time under the clip's
// loop mode. Unknown bones, empty tracks, and empty clips return the
// identity pose; a single-keyframe track returns that keyframe's pose
// unchanged for any query time.
//
// Parameters:
//   - boneName: the bone whose track to sample
//   - t: the query time in seconds
//
// Returns:
//   - pose.BonePose: the sampled pose
func (c *Clip) Sample(boneName string, t float32) pose.BonePose {
	idx, ok := c.byBone[boneName]
	if !ok {
		return pose.Identity()
	}
	return c.SampleIndex(idx, t)
}

// SampleIndex evaluates the track at the given index at the given time. An
// out-of-range index returns the identity pose.
//
// Parameters:
//   - trackIndex: the track to sample
//   - t: the query time in seconds
//
// Returns:
//   - pose.BonePose: the sampled pose
func (c *Clip) SampleIndex(trackIndex int, t float32) pose.BonePose {
	if trackIndex < 0 || trackIndex >= len(c.tracks) {
		return pose.Identity()
	}
	keys := c.tracks[trackIndex].Keyframes

	switch len(keys) {
	case 0:
		return pose.Identity()
	case 1:
		return keys[0].Pose
	}

	local := c.localTime(t)

	// Before the first keyframe: hold its pose, no extrapolation.
	if local <= keys[0].Time {
		return keys[0].Pose
	}
	// After the last keyframe: hold its pose, no extrapolation.
	last := keys[len(keys)-1]
	if local >= last.Time {
		return last.Pose
	}

	// Linear scan for the bracketing pair: the last keyframe at or before
	// the local time and the first strictly after it.
	prev := 0
	for i := 1; i < len(keys); i++ {
		if keys[i].Time > local {
			break
		}
		prev = i
	}
	next := prev + 1

	span := keys[next].Time - keys[prev].Time
	var factor float32
	if span >= common.Epsilon {
		factor = (local - keys[prev].Time) / span
	}
	return evaluate(keys[prev], keys[next], factor)
}

// EventsInRange returns the events crossed while playback advances from t0
// to t1, in traversal order. The query is half-open — an event fires when
// t0 <= time < t1 on the traversed timeline — so per-frame queries fire each
// event exactly once regardless of frame rate. Loop wraparound is handled
// here: a repeat query crossing the loop boundary is split internally, and a
// ping-pong query follows the reflected timeline through direction changes.
//
// Parameters:
//   - t0: the previous playback time in seconds
//   - t1: the current playback time in seconds (must be >= t0)
//
// Returns:
//   - []Event: the crossed events in traversal order, or nil
func (c *Clip) EventsInRange(t0, t1 float32) []Event {
	if len(c.events) == 0 || t1 <= t0 {
		return nil
	}
	d := c.duration
	if d < common.Epsilon {
		return nil
	}

	switch c.loop {
	case LoopRepeat:
		return c.eventsRepeat(t0, t1)
	case LoopPingPong:
		return c.eventsPingPong(t0, t1)
	default:
		// Clamped timelines traverse raw time directly; events past the
		// duration are unreachable by construction.
		return c.eventsForward(t0, t1, nil)
	}
}

// eventsForward appends events with lo <= time < hi in ascending time order.
// Duplicate timestamps keep their insertion order.
func (c *Clip) eventsForward(lo, hi float32, out []Event) []Event {
	var matched []Event
	for _, ev := range c.events {
		if ev.Time >= lo && ev.Time < hi {
			matched = append(matched, ev)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Time < matched[j].Time })
	return append(out, matched...)
}

// eventsBackward appends events with lo < time <= hi in descending time
// order, used for the reversed half of a ping-pong traversal.
func (c *Clip) eventsBackward(lo, hi float32, out []Event) []Event {
	var matched []Event
	for _, ev := range c.events {
		if ev.Time > lo && ev.Time <= hi {
			matched = append(matched, ev)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Time > matched[j].Time })
	return append(out, matched...)
}

// eventsRepeat splits the raw query range at loop boundaries and queries
// each wrapped sub-range against the clip-local timeline.
func (c *Clip) eventsRepeat(t0, t1 float32) []Event {
	d := c.duration
	var out []Event

	period := float32(math.Floor(float64(t0 / d)))
	for {
		segStart := period * d
		segEnd := segStart + d
		lo := maxf(t0, segStart) - segStart
		hi := minf(t1, segEnd) - segStart
		if hi > lo {
			out = c.eventsForward(lo, hi, out)
		}
		if segEnd >= t1 {
			return out
		}
		period++
	}
}

// eventsPingPong walks the query range one half-period at a time, querying
// forward on even halves and backward on odd (reflected) halves. An event
// sitting exactly on the reflection point fires once, at the start of the
// reversed half.
func (c *Clip) eventsPingPong(t0, t1 float32) []Event {
	d := c.duration
	var out []Event

	half := float32(math.Floor(float64(t0 / d)))
	for {
		segStart := half * d
		segEnd := segStart + d
		lo := maxf(t0, segStart) - segStart
		hi := minf(t1, segEnd) - segStart
		if hi > lo {
			if int64(half)%2 == 0 {
				out = c.eventsForward(lo, hi, out)
			} else {
				// Reversed half: local time runs from d-lo down to d-hi.
				out = c.eventsBackward(d-hi, d-lo, out)
			}
		}
		if segEnd >= t1 {
			return out
		}
		half++
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

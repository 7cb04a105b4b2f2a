package clip

// LoopMode controls how query times outside a clip's [0, duration] window map
// back onto its timeline.
type LoopMode int

const (
	// LoopNone clamps query times to [0, duration]; playback holds the final
	// pose once the end is reached.
	LoopNone LoopMode = iota

	// LoopRepeat wraps query times modulo the clip duration.
	LoopRepeat

	// LoopPingPong reflects query times back and forth across the clip
	// duration, alternating playback direction each period.
	LoopPingPong

	// LoopClampForever clamps exactly like LoopNone; the clip stays pinned
	// on its final keyframe indefinitely.
	LoopClampForever
)

// String returns the loop mode's name.
//
// Returns:
//   - string: the loop mode name
func (m LoopMode) String() string {
	switch m {
	case LoopNone:
		return "none"
	case LoopRepeat:
		return "repeat"
	case LoopPingPong:
		return "ping-pong"
	case LoopClampForever:
		return "clamp-forever"
	default:
		return "unknown"
	}
}

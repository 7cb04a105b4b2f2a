package clip

import (
	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
)

// TangentSet holds Hermite tangents for each animated channel of a keyframe.
// Rotation tangents are stored for authoring symmetry but rotation is always
// evaluated with SLERP, never cubic Hermite, so a unit-length shortest-path
// result is guaranteed.
type TangentSet struct {
	// Position is the per-axis position tangent.
	Position [3]float32

	// Rotation is the per-component rotation tangent.
	Rotation [4]float32

	// Scale is the per-axis scale tangent.
	Scale [3]float32
}

// Keyframe is a single sampled pose on a track's timeline, with incoming and
// outgoing Hermite tangents. Keyframes are value types owned by the track
// that holds them. Zero tangents (the zero value) give linear interpolation.
type Keyframe struct {
	// Time is the keyframe's track-local time in seconds.
	Time float32

	// Pose is the bone pose at this keyframe.
	Pose pose.BonePose

	// In holds the tangents approaching this keyframe.
	In TangentSet

	// Out holds the tangents leaving this keyframe.
	Out TangentSet
}

// evaluate interpolates between keyframes a and b at normalized factor t.
// Position and scale use the cubic Hermite basis with tangents scaled by the
// inter-keyframe time delta; rotation uses shortest-path SLERP.
func evaluate(a, b Keyframe, t float32) pose.BonePose {
	t = common.Clamp(t, 0, 1)
	dt := b.Time - a.Time

	return pose.BonePose{
		Position: common.Hermite3(
			a.Pose.Position, common.Scale3(a.Out.Position, dt),
			b.Pose.Position, common.Scale3(b.In.Position, dt),
			t,
		),
		Rotation: common.Slerp(a.Pose.Rotation, b.Pose.Rotation, t),
		Scale: common.Hermite3(
			a.Pose.Scale, common.Scale3(a.Out.Scale, dt),
			b.Pose.Scale, common.Scale3(b.In.Scale, dt),
			t,
		),
	}
}

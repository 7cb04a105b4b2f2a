// Package pose defines the per-bone local transform value type and its
// blending algebra. A BonePose is a plain value: copy it freely, there are no
// ownership concerns.
package pose

import (
	"github.com/Carmen-Shannon/rig-go/common"
)

// BonePose is a single bone's local transform: position, rotation quaternion
// (x, y, z, w), and per-axis scale. The rotation is expected to be unit
// length after any operation that mutates it; operations that can denormalize
// it (additive composition, weighted blends) renormalize explicitly.
type BonePose struct {
	// Position is the translation offset from the parent bone.
	Position [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// Identity returns the neutral pose: zero position, identity rotation, unit
// scale.
//
// Returns:
//   - BonePose: the identity pose
func Identity() BonePose {
	return BonePose{
		Rotation: common.QuatIdentity(),
		Scale:    [3]float32{1, 1, 1},
	}
}

// Lerp blends two poses by t: position and scale interpolate linearly,
// rotation uses shortest-path SLERP. t is clamped to [0, 1].
//
// Parameters:
//   - a: the start pose
//   - b: the end pose
//   - t: the blend factor, clamped to [0, 1]
//
// Returns:
//   - BonePose: the blended pose
func Lerp(a, b BonePose, t float32) BonePose {
	t = common.Clamp(t, 0, 1)
	return BonePose{
		Position: common.Lerp3(a.Position, b.Position, t),
		Rotation: common.Slerp(a.Rotation, b.Rotation, t),
		Scale:    common.Lerp3(a.Scale, b.Scale, t),
	}
}

// Multiply composes a local pose onto its parent's pose for hierarchical
// world-pose propagation. Rotation is the quaternion product parent*local,
// scale is the component-wise product, and position is the parent position
// plus the local position scaled component-wise by the parent scale. The
// local offset is intentionally not rotated into the parent's frame; this
// engine's hierarchies are authored against that convention.
//
// Parameters:
//   - parent: the parent bone's composed pose
//   - local: the child bone's local pose
//
// Returns:
//   - BonePose: the child bone's composed pose
func Multiply(parent, local BonePose) BonePose {
	return BonePose{
		Position: common.Add3(parent.Position, common.Hadamard3(local.Position, parent.Scale)),
		Rotation: common.QuatMul(parent.Rotation, local.Rotation),
		Scale:    common.Hadamard3(parent.Scale, local.Scale),
	}
}

// NormalizeRotation renormalizes the pose's rotation quaternion to unit
// length in place. A degenerate quaternion resets to the identity rotation.
func (p *BonePose) NormalizeRotation() {
	p.Rotation = common.Normalize4(p.Rotation)
}

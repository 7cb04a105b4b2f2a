package skeleton

import (
	"github.com/Carmen-Shannon/rig-go/engine/pose"
)

// Bone is a single joint in a skeleton hierarchy. A bone is owned by exactly
// one Skeleton; its Index is its stable position in that skeleton's bone
// list, assigned at add-time.
type Bone struct {
	// Name is the bone's identifier, unique within its skeleton.
	Name string

	// Index is the bone's stable position in the skeleton's bone list.
	Index int

	// ParentIndex is the index of the parent bone, or -1 for root bones.
	ParentIndex int

	// Length is the bone's informational length; it does not affect pose
	// computation.
	Length float32

	// Bind is the bone's rest pose.
	Bind pose.BonePose

	// Local is the bone's authoritative local pose, mutated every frame by
	// animation playback.
	Local pose.BonePose

	// World is the bone's composed pose, derived from Local by
	// CalculateWorldPoses. Read-only to consumers.
	World pose.BonePose
}

// Package skeleton implements the bone hierarchy: an ordered bone list with
// name lookup and world-pose composition from per-bone local poses.
package skeleton

import (
	"fmt"

	"github.com/Carmen-Shannon/rig-go/engine/pose"
)

// worldPoseIterationCap bounds the legacy fixed-point world-pose loop used
// for unfinalized skeletons. A malformed (cyclic) hierarchy never converges;
// the cap keeps the worst case bounded instead of hanging the frame.
const worldPoseIterationCap = 100

// Skeleton owns an ordered collection of Bones plus a name lookup index. A
// skeleton is created once per animated character and lives for the
// character's lifetime; add all bones, then call Finalize before first use so
// world poses can be computed in a single parent-before-child pass.
type Skeleton struct {
	name   string
	bones  []*Bone
	byName map[string]*Bone

	// order holds bone indices sorted parent-before-child, valid only after
	// a successful Finalize.
	order     []int
	finalized bool
}

// NewSkeleton creates an empty skeleton with the given name.
//
// Parameters:
//   - name: the skeleton's identifier
//
// Returns:
//   - *Skeleton: the newly created skeleton
func NewSkeleton(name string) *Skeleton {
	return &Skeleton{
		name:   name,
		byName: make(map[string]*Bone),
	}
}

// Name returns the skeleton's identifier.
//
// Returns:
//   - string: the skeleton name
func (s *Skeleton) Name() string {
	return s.name
}

// AddBone appends a bone to the skeleton and returns it. The bone's index is
// its position in the bone list; parentIndex must be -1 for roots or the
// index of a previously observed bone. The bind pose is also installed as the
// initial local pose. Adding a bone invalidates any previous Finalize.
//
// Parameters:
//   - name: the bone's identifier, unique within the skeleton
//   - parentIndex: the parent bone index, or -1 for a root bone
//   - bind: the bone's rest pose
//
// Returns:
//   - *Bone: the newly added bone, or nil if the name is already taken
func (s *Skeleton) AddBone(name string, parentIndex int, bind pose.BonePose) *Bone {
	if _, exists := s.byName[name]; exists {
		return nil
	}
	b := &Bone{
		Name:        name,
		Index:       len(s.bones),
		ParentIndex: parentIndex,
		Bind:        bind,
		Local:       bind,
		World:       pose.Identity(),
	}
	s.bones = append(s.bones, b)
	s.byName[name] = b
	s.finalized = false
	s.order = nil
	return b
}

// Bone returns the bone at the given index, or nil if the index is out of
// range.
//
// Parameters:
//   - index: the bone index
//
// Returns:
//   - *Bone: the bone, or nil
func (s *Skeleton) Bone(index int) *Bone {
	if index < 0 || index >= len(s.bones) {
		return nil
	}
	return s.bones[index]
}

// BoneByName returns the bone with the given name, or nil if no such bone
// exists.
//
// Parameters:
//   - name: the bone name to look up
//
// Returns:
//   - *Bone: the bone, or nil
func (s *Skeleton) BoneByName(name string) *Bone {
	return s.byName[name]
}

// Bones returns the skeleton's bone list in index order. The slice is the
// skeleton's own backing store; callers must not reorder it.
//
// Returns:
//   - []*Bone: the bones in index order
func (s *Skeleton) Bones() []*Bone {
	return s.bones
}

// Count returns the number of bones in the skeleton.
//
// Returns:
//   - int: the bone count
func (s *Skeleton) Count() int {
	return len(s.bones)
}

// Finalized reports whether the skeleton has been successfully finalized.
//
// Returns:
//   - bool: true if Finalize has validated the hierarchy
func (s *Skeleton) Finalized() bool {
	return s.finalized
}

// Finalize validates the bone hierarchy and computes the parent-before-child
// update order used by CalculateWorldPoses. It fails if any parent index
// references a missing bone, if a bone is its own parent, or if the parent
// graph contains a cycle. Call it once after all bones are added; the
// validated order makes world-pose computation a single linear pass.
//
// Returns:
//   - error: nil on success, or a description of the structural defect
func (s *Skeleton) Finalize() error {
	depths := make([]int, len(s.bones))
	for i, b := range s.bones {
		if b.ParentIndex >= len(s.bones) {
			return fmt.Errorf("skeleton %q: bone %q parent index %d out of range", s.name, b.Name, b.ParentIndex)
		}
		if b.ParentIndex == i {
			return fmt.Errorf("skeleton %q: bone %q is its own parent", s.name, b.Name)
		}

		// Walk to the root, counting depth. Any walk longer than the bone
		// count has revisited a bone, which means the parent graph cycles.
		depth := 0
		for p := b.ParentIndex; p >= 0; p = s.bones[p].ParentIndex {
			depth++
			if depth > len(s.bones) {
				return fmt.Errorf("skeleton %q: cycle detected in parent chain of bone %q", s.name, b.Name)
			}
		}
		depths[i] = depth
	}

	// Stable counting-style sort by depth keeps index order among siblings.
	order := make([]int, 0, len(s.bones))
	maxDepth := 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}
	for d := 0; d <= maxDepth; d++ {
		for i, bd := range depths {
			if bd == d {
				order = append(order, i)
			}
		}
	}

	s.order = order
	s.finalized = true
	return nil
}

// CalculateWorldPoses recomputes every bone's world pose from its local pose.
// On a finalized skeleton this is a single linear pass over the
// parent-before-child order. On an unfinalized skeleton it falls back to an
// iterative fixed-point loop capped at 100 passes, which tolerates arbitrary
// bone ordering but silently leaves stale results on a cyclic hierarchy.
func (s *Skeleton) CalculateWorldPoses() {
	if s.finalized {
		for _, i := range s.order {
			b := s.bones[i]
			if b.ParentIndex < 0 {
				b.World = b.Local
			} else {
				b.World = pose.Multiply(s.bones[b.ParentIndex].World, b.Local)
			}
		}
		return
	}

	for pass := 0; pass < worldPoseIterationCap; pass++ {
		changed := false
		for _, b := range s.bones {
			var next pose.BonePose
			if b.ParentIndex < 0 || b.ParentIndex >= len(s.bones) {
				next = b.Local
			} else {
				next = pose.Multiply(s.bones[b.ParentIndex].World, b.Local)
			}
			if next != b.World {
				b.World = next
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

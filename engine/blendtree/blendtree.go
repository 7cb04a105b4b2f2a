// Package blendtree implements parametric blending of animation clips: one
// or two live control parameters drive per-child blend weights, and sampling
// produces the weighted-average pose per bone.
package blendtree

import (
	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/clip"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
)

// BlendType selects the weighting algorithm for a Tree. It is fixed at
// construction.
type BlendType int

const (
	// Blend1D interpolates between the two children whose thresholds
	// bracket a single parameter.
	Blend1D BlendType = iota

	// Blend2DSimple weights children by inverse square distance from a 2D
	// parameter point.
	Blend2DSimple

	// Blend2DFreeform weights children by inverse square distance, same as
	// Blend2DSimple; the distinct tag exists for authoring-tool semantics.
	Blend2DFreeform

	// BlendDirect normalizes each child's explicitly assigned weight.
	BlendDirect
)

// coincidentWeight substitutes for the unbounded inverse-square weight when
// the 2D parameter point sits on (or within epsilon of) a child's position.
const coincidentWeight float32 = 1e4

// Input is one child motion of a blend tree: a clip reference plus the
// placement data the weighting algorithm reads and the transient per-frame
// state (computed weight, local clock). An Input is owned by exactly one
// Tree. Children run independent clocks advanced by deltaTime times the
// child's speed, so blended clips stay deliberately desynchronized.
type Input struct {
	// Clip is the child's motion source.
	Clip *clip.Clip

	// Threshold places the child on the 1D parameter axis (Blend1D only).
	Threshold float32

	// Position places the child on the 2D parameter plane (2D modes only).
	Position [2]float32

	// DirectWeight is the child's explicit weight (BlendDirect only).
	DirectWeight float32

	// Speed is the child's playback speed multiplier.
	Speed float32

	weight float32
	clock  float32
}

// Weight returns the child's most recently computed blend weight.
//
// Returns:
//   - float32: the normalized blend weight
func (in *Input) Weight() float32 {
	return in.weight
}

// Clock returns the child's local playback clock in seconds.
//
// Returns:
//   - float32: the local clock
func (in *Input) Clock() float32 {
	return in.clock
}

// ChildOption is a functional option for configuring a blend tree child when
// it is added.
type ChildOption func(*Input)

// WithThreshold is an option builder that places the child on the 1D
// parameter axis.
//
// Parameters:
//   - threshold: the parameter value at which this child is fully weighted
//
// Returns:
//   - ChildOption: a function that applies the threshold to a child
func WithThreshold(threshold float32) ChildOption {
	return func(in *Input) {
		in.Threshold = threshold
	}
}

// WithPosition is an option builder that places the child on the 2D
// parameter plane.
//
// Parameters:
//   - x: the first parameter coordinate
//   - y: the second parameter coordinate
//
// Returns:
//   - ChildOption: a function that applies the position to a child
func WithPosition(x, y float32) ChildOption {
	return func(in *Input) {
		in.Position = [2]float32{x, y}
	}
}

// WithDirectWeight is an option builder that sets the child's explicit
// weight for direct blending.
//
// Parameters:
//   - weight: the explicit weight (negative values clamp to 0)
//
// Returns:
//   - ChildOption: a function that applies the weight to a child
func WithDirectWeight(weight float32) ChildOption {
	return func(in *Input) {
		if weight < 0 {
			weight = 0
		}
		in.DirectWeight = weight
	}
}

// WithSpeed is an option builder that sets the child's playback speed
// multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal)
//
// Returns:
//   - ChildOption: a function that applies the speed to a child
func WithSpeed(speed float32) ChildOption {
	return func(in *Input) {
		in.Speed = speed
	}
}

// Tree blends its children's clips into a single pose per bone, weighted by
// one or two live parameters. The weighting algorithm is fixed by the blend
// type at construction. Trees hold mutable per-frame state (parameter
// values, child clocks) and must not be shared between characters.
type Tree struct {
	name      string
	blendType BlendType
	children  []*Input

	paramX float32
	paramY float32
}

// NewTree creates an empty blend tree with the given name and blend type.
//
// Parameters:
//   - name: the tree's identifier
//   - blendType: the weighting algorithm to use
//
// Returns:
//   - *Tree: the newly created tree
func NewTree(name string, blendType BlendType) *Tree {
	return &Tree{
		name:      name,
		blendType: blendType,
	}
}

// Name returns the tree's identifier.
//
// Returns:
//   - string: the tree name
func (t *Tree) Name() string {
	return t.name
}

// Type returns the tree's blend type.
//
// Returns:
//   - BlendType: the weighting algorithm tag
func (t *Tree) Type() BlendType {
	return t.blendType
}

// AddChild appends a child motion to the tree and returns it. The child's
// speed defaults to 1.
//
// Parameters:
//   - c: the clip the child plays (must not be nil)
//   - options: functional options for threshold, position, weight, and speed
//
// Returns:
//   - *Input: the newly added child, or nil if c is nil
func (t *Tree) AddChild(c *clip.Clip, options ...ChildOption) *Input {
	if c == nil {
		return nil
	}
	in := &Input{
		Clip:  c,
		Speed: 1,
	}
	for _, opt := range options {
		opt(in)
	}
	t.children = append(t.children, in)
	return in
}

// Children returns the tree's children in insertion order.
//
// Returns:
//   - []*Input: the child list
func (t *Tree) Children() []*Input {
	return t.children
}

// SetParameter sets the 1D control parameter.
//
// Parameters:
//   - x: the parameter value
func (t *Tree) SetParameter(x float32) {
	t.paramX = x
}

// SetParameter2D sets both control parameters for 2D blending.
//
// Parameters:
//   - x: the first parameter coordinate
//   - y: the second parameter coordinate
func (t *Tree) SetParameter2D(x, y float32) {
	t.paramX = x
	t.paramY = y
}

// Parameter returns the current control parameters.
//
// Returns:
//   - float32: the first parameter coordinate
//   - float32: the second parameter coordinate
func (t *Tree) Parameter() (float32, float32) {
	return t.paramX, t.paramY
}

// Update recomputes child weights from the current parameters, then advances
// every child's local clock by deltaTime scaled by the child's speed.
//
// Parameters:
//   - deltaTime: elapsed time since the last frame in seconds
func (t *Tree) Update(deltaTime float32) {
	t.computeWeights()
	for _, in := range t.children {
		in.clock += deltaTime * in.Speed
	}
}

// computeWeights runs the blend-type-specific weighting algorithm and
// normalizes the result to sum to 1. Normalization is a no-op when the total
// is near zero.
func (t *Tree) computeWeights() {
	if len(t.children) == 0 {
		return
	}

	switch t.blendType {
	case Blend1D:
		t.computeWeights1D()
	case Blend2DSimple, Blend2DFreeform:
		t.computeWeights2D()
	case BlendDirect:
		for _, in := range t.children {
			in.weight = in.DirectWeight
		}
	}

	var total float32
	for _, in := range t.children {
		total += in.weight
	}
	if total < common.Epsilon {
		return
	}
	inv := 1.0 / total
	for _, in := range t.children {
		in.weight *= inv
	}
}

// computeWeights1D finds the children whose thresholds bracket the parameter
// and splits the weight linearly between them. A parameter exactly on a
// threshold gives that child the full weight; a parameter outside the
// threshold range gives the nearest child the full weight.
func (t *Tree) computeWeights1D() {
	var lower, upper *Input
	for _, in := range t.children {
		in.weight = 0
		if in.Threshold <= t.paramX && (lower == nil || in.Threshold > lower.Threshold) {
			lower = in
		}
		if in.Threshold >= t.paramX && (upper == nil || in.Threshold < upper.Threshold) {
			upper = in
		}
	}

	switch {
	case lower == nil && upper == nil:
		return
	case lower == nil:
		upper.weight = 1
	case upper == nil:
		lower.weight = 1
	case lower == upper:
		lower.weight = 1
	default:
		span := upper.Threshold - lower.Threshold
		var factor float32
		if span >= common.Epsilon {
			factor = (t.paramX - lower.Threshold) / span
		}
		lower.weight = 1 - factor
		upper.weight = factor
	}
}

// computeWeights2D assigns inverse-square-distance weights from the 2D
// parameter point, substituting a large constant for near-coincident points.
func (t *Tree) computeWeights2D() {
	for _, in := range t.children {
		dx := t.paramX - in.Position[0]
		dy := t.paramY - in.Position[1]
		distSq := dx*dx + dy*dy
		if distSq < common.Epsilon {
			in.weight = coincidentWeight
		} else {
			in.weight = 1.0 / distSq
		}
	}
}

// Sample produces the weighted-average pose for the named bone across all
// children whose computed weight exceeds the epsilon threshold and whose
// clip has a track for the bone. Each child is sampled at its own local
// clock; the time parameter is accepted for motion-source compatibility but
// unused. The accumulated rotation is renormalized because weighted
// quaternion sums are not generally unit length.
//
// Parameters:
//   - boneName: the bone to sample
//   - _: ignored; children run their own clocks
//
// Returns:
//   - pose.BonePose: the blended pose, or identity if nothing contributed
func (t *Tree) Sample(boneName string, _ float32) pose.BonePose {
	var result pose.BonePose
	var contributed bool

	for _, in := range t.children {
		if in.weight <= common.Epsilon || !in.Clip.HasTrack(boneName) {
			continue
		}
		p := in.Clip.Sample(boneName, in.clock)
		w := in.weight
		for k := 0; k < 3; k++ {
			result.Position[k] += p.Position[k] * w
			result.Scale[k] += p.Scale[k] * w
		}
		for k := 0; k < 4; k++ {
			result.Rotation[k] += p.Rotation[k] * w
		}
		contributed = true
	}

	if !contributed {
		return pose.Identity()
	}
	result.NormalizeRotation()
	return result
}

// Duration returns the weight-averaged duration of the contributing
// children, used to normalize state time for exit-time gating. Falls back to
// the longest child duration when no weights have been computed yet.
//
// Returns:
//   - float32: the effective duration in seconds
func (t *Tree) Duration() float32 {
	var weighted, total, longest float32
	for _, in := range t.children {
		d := in.Clip.Duration()
		weighted += in.weight * d
		total += in.weight
		if d > longest {
			longest = d
		}
	}
	if total < common.Epsilon {
		return longest
	}
	return weighted / total
}

// Package layer implements animation layering: each layer wraps an
// animation state and applies its sampled pose on top of a base pose with
// override or additive blending, gated by a per-bone mask and a layer
// weight.
package layer

import (
	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
	"github.com/Carmen-Shannon/rig-go/engine/statemachine"
)

// BlendMode selects how a layer's pose combines with the base pose.
type BlendMode int

const (
	// Override linearly blends the base pose toward the layer pose by the
	// layer weight.
	Override BlendMode = iota

	// Additive adds the layer pose's deltas from identity onto the base
	// pose, scaled by the layer weight.
	Additive
)

// String returns the blend mode's name.
//
// Returns:
//   - string: the blend mode name
func (m BlendMode) String() string {
	switch m {
	case Override:
		return "override"
	case Additive:
		return "additive"
	default:
		return "unknown"
	}
}

// Layer applies one animation state's output on top of a base pose. The
// state is shared, not owned; the layer never advances its clock. A nil
// mask means every bone is affected.
type Layer struct {
	// Name identifies the layer.
	Name string

	// Weight scales the layer's influence. Clamped to [0, 1] on apply.
	Weight float32

	// Mode selects override or additive blending.
	Mode BlendMode

	// State is the animation state the layer samples. May be nil (layer is
	// then inert).
	State *statemachine.State

	// Mask restricts the layer to the named bones. Nil affects all bones.
	Mask map[string]struct{}

	// Enabled toggles the layer without removing it from its stack.
	Enabled bool
}

// LayerOption is a functional option for configuring a layer at
// construction.
type LayerOption func(*Layer)

// WithMode is an option builder that sets the layer's blend mode.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - LayerOption: a function that applies the mode to a layer
func WithMode(mode BlendMode) LayerOption {
	return func(l *Layer) {
		l.Mode = mode
	}
}

// WithWeight is an option builder that sets the layer's initial weight.
//
// Parameters:
//   - weight: the layer weight
//
// Returns:
//   - LayerOption: a function that applies the weight to a layer
func WithWeight(weight float32) LayerOption {
	return func(l *Layer) {
		l.Weight = weight
	}
}

// WithMask is an option builder that restricts the layer to the named
// bones.
//
// Parameters:
//   - boneNames: the bones the layer may affect
//
// Returns:
//   - LayerOption: a function that applies the mask to a layer
func WithMask(boneNames ...string) LayerOption {
	return func(l *Layer) {
		mask := make(map[string]struct{}, len(boneNames))
		for _, n := range boneNames {
			mask[n] = struct{}{}
		}
		l.Mask = mask
	}
}

// NewLayer creates an enabled layer wrapping the given state. Weight
// defaults to 1 and mode to Override.
//
// Parameters:
//   - name: the layer's identifier
//   - state: the animation state the layer samples (may be nil)
//   - options: functional options for mode, weight, and mask
//
// Returns:
//   - *Layer: the newly created layer
func NewLayer(name string, state *statemachine.State, options ...LayerOption) *Layer {
	l := &Layer{
		Name:    name,
		Weight:  1,
		State:   state,
		Enabled: true,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Covers reports whether the layer's mask allows the named bone.
//
// Parameters:
//   - boneName: the bone to check
//
// Returns:
//   - bool: true if the bone is unmasked or the mask is nil
func (l *Layer) Covers(boneName string) bool {
	if l.Mask == nil {
		return true
	}
	_, ok := l.Mask[boneName]
	return ok
}

// Apply combines the layer's sampled pose for the named bone onto the base
// pose. Returns the base unchanged when the layer is disabled, stateless,
// effectively weightless, or the bone is masked out.
//
// Parameters:
//   - base: the pose to apply the layer onto
//   - boneName: the bone being composed
//
// Returns:
//   - pose.BonePose: the combined pose
func (l *Layer) Apply(base pose.BonePose, boneName string) pose.BonePose {
	weight := common.Clamp(l.Weight, 0, 1)
	if !l.Enabled || l.State == nil || weight <= common.Epsilon || !l.Covers(boneName) {
		return base
	}

	layerPose := l.State.Sample(boneName)

	switch l.Mode {
	case Additive:
		for k := 0; k < 3; k++ {
			base.Position[k] += layerPose.Position[k] * weight
			base.Scale[k] += (layerPose.Scale[k] - 1) * weight
		}
		combined := pose.Multiply(base, layerPose).Rotation
		base.Rotation = common.Slerp(base.Rotation, combined, weight)
		base.NormalizeRotation()
		return base
	default:
		return pose.Lerp(base, layerPose, weight)
	}
}

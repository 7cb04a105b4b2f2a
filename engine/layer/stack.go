package layer

import "github.com/Carmen-Shannon/rig-go/engine/pose"

// Stack is an ordered list of layers applied in sequence over a base pose.
// Later layers see the output of earlier ones.
type Stack struct {
	layers []*Layer
}

// NewStack creates an empty layer stack.
//
// Returns:
//   - *Stack: the newly created stack
func NewStack() *Stack {
	return &Stack{}
}

// Add appends a layer to the stack. Nil layers are ignored.
//
// Parameters:
//   - l: the layer to append
func (s *Stack) Add(l *Layer) {
	if l == nil {
		return
	}
	s.layers = append(s.layers, l)
}

// Remove deletes the named layer from the stack.
//
// Parameters:
//   - name: the layer name to remove
//
// Returns:
//   - bool: whether a layer was removed
func (s *Stack) Remove(name string) bool {
	for i, l := range s.layers {
		if l.Name == name {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return true
		}
	}
	return false
}

// Layer returns the named layer, or nil if absent.
//
// Parameters:
//   - name: the layer name
//
// Returns:
//   - *Layer: the layer, or nil
func (s *Stack) Layer(name string) *Layer {
	for _, l := range s.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Layers returns the stack's layers in application order.
//
// Returns:
//   - []*Layer: the layer list
func (s *Stack) Layers() []*Layer {
	return s.layers
}

// Len returns the number of layers in the stack.
//
// Returns:
//   - int: the layer count
func (s *Stack) Len() int {
	return len(s.layers)
}

// Update advances the clocks of every enabled layer's state. A state shared
// by two enabled layers is advanced once per layer; give each layer its own
// state.
//
// Parameters:
//   - deltaTime: elapsed time since the last frame in seconds
func (s *Stack) Update(deltaTime float32) {
	for _, l := range s.layers {
		if l.Enabled && l.State != nil {
			l.State.Advance(deltaTime)
		}
	}
}

// Apply folds the base pose through every layer in order.
//
// Parameters:
//   - base: the starting pose
//   - boneName: the bone being composed
//
// Returns:
//   - pose.BonePose: the pose after all layers have been applied
func (s *Stack) Apply(base pose.BonePose, boneName string) pose.BonePose {
	for _, l := range s.layers {
		base = l.Apply(base, boneName)
	}
	return base
}

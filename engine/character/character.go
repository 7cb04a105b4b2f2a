// Package character ties one skeleton to one playback driver (an animator
// or a state machine) and an optional layer stack, and runs the whole
// per-frame pipeline: driver update, layer application, one world-pose
// recomputation.
package character

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/layer"
	"github.com/Carmen-Shannon/rig-go/engine/skeleton"
	"github.com/Carmen-Shannon/rig-go/engine/statemachine"
)

// driver is the common per-frame surface of an animator and a state
// machine.
type driver interface {
	Update(deltaTime float32)
}

// Character is the per-instance animation facade. It owns its skeleton for
// the character's lifetime; drivers and layer states are attached once and
// must not be shared with another character.
type Character interface {
	// Name returns the character's identifier.
	Name() string

	// Skeleton returns the character's skeleton.
	Skeleton() *skeleton.Skeleton

	// SetAnimator attaches an animator as the character's driver. The
	// animator should be built with its manual world-pose option; the
	// character recomputes world poses itself after layers. Returns an
	// error if a driver is already attached or the animator refuses the
	// skeleton.
	SetAnimator(a animator.Animator) error

	// SetMachine attaches a state machine as the character's driver, with
	// the same rules as SetAnimator.
	SetMachine(m statemachine.Machine) error

	// Layers returns the character's layer stack.
	Layers() *layer.Stack

	// Update runs one frame: driver, layer clocks, per-bone layer
	// application, then a single world-pose recomputation. Negative deltas
	// are ignored.
	Update(deltaTime float32)
}

type character struct {
	mu sync.Mutex

	name   string
	skel   *skeleton.Skeleton
	drv    driver
	layers *layer.Stack
}

var _ Character = &character{}

// NewCharacter creates a character owning the given skeleton.
//
// Parameters:
//   - name: the character's identifier
//   - skel: the skeleton the character drives (must not be nil)
//
// Returns:
//   - Character: the newly created character
func NewCharacter(name string, skel *skeleton.Skeleton) Character {
	if skel == nil {
		panic("character: skeleton cannot be nil")
	}
	return &character{
		name:   name,
		skel:   skel,
		layers: layer.NewStack(),
	}
}

func (c *character) Name() string {
	return c.name
}

func (c *character) Skeleton() *skeleton.Skeleton {
	return c.skel
}

func (c *character) SetAnimator(a animator.Animator) error {
	if a == nil {
		return fmt.Errorf("character %q: cannot attach nil animator", c.name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drv != nil {
		return fmt.Errorf("character %q: driver already attached", c.name)
	}
	if err := a.AttachSkeleton(c.skel); err != nil {
		return err
	}
	c.drv = a
	return nil
}

func (c *character) SetMachine(m statemachine.Machine) error {
	if m == nil {
		return fmt.Errorf("character %q: cannot attach nil machine", c.name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drv != nil {
		return fmt.Errorf("character %q: driver already attached", c.name)
	}
	if err := m.AttachSkeleton(c.skel); err != nil {
		return err
	}
	c.drv = m
	return nil
}

func (c *character) Layers() *layer.Stack {
	return c.layers
}

func (c *character) Update(deltaTime float32) {
	if deltaTime < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drv != nil {
		c.drv.Update(deltaTime)
	}

	if c.layers.Len() > 0 {
		c.layers.Update(deltaTime)
		for _, b := range c.skel.Bones() {
			b.Local = c.layers.Apply(b.Local, b.Name)
		}
	}

	c.skel.CalculateWorldPoses()
}

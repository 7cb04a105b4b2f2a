// Package loader parses YAML rig, clip, and controller definitions into
// runtime types. It is an authoring convenience, not an asset import
// pipeline: definitions hold already-sampled keyframe data. Clips come out
// frozen, skeletons finalized, controllers wired and ready to start.
package loader

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/rig-go/engine/blendtree"
	"github.com/Carmen-Shannon/rig-go/engine/clip"
	"github.com/Carmen-Shannon/rig-go/engine/layer"
	"github.com/Carmen-Shannon/rig-go/engine/pose"
	"github.com/Carmen-Shannon/rig-go/engine/skeleton"
	"github.com/Carmen-Shannon/rig-go/engine/statemachine"
)

// Controller is the loaded form of a controller definition: a wired state
// machine plus its layer stack. The machine is not yet attached to a
// skeleton or started.
type Controller struct {
	// Name is the controller definition's name.
	Name string

	// Machine is the wired state machine.
	Machine statemachine.Machine

	// Layers is the controller's layer stack. Empty when the definition has
	// no layers.
	Layers *layer.Stack
}

// LoadRig reads and parses a rig definition file into a finalized skeleton.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - *skeleton.Skeleton: the finalized skeleton
//   - error: read, parse, or validation failure
func LoadRig(path string) (*skeleton.Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading rig %s: %w", path, err)
	}
	return ParseRig(data)
}

// ParseRig parses rig definition bytes into a finalized skeleton. Bones
// must declare their parent before themselves.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *skeleton.Skeleton: the finalized skeleton
//   - error: parse or validation failure
func ParseRig(data []byte) (*skeleton.Skeleton, error) {
	var def RigDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("loader: parsing rig: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("loader: rig has no name")
	}

	skel := skeleton.NewSkeleton(def.Name)
	for i, bd := range def.Bones {
		if bd.Name == "" {
			return nil, fmt.Errorf("loader: rig %q: bone %d has no name", def.Name, i)
		}
		parentIndex := -1
		if bd.Parent != "" {
			parent := skel.BoneByName(bd.Parent)
			if parent == nil {
				return nil, fmt.Errorf("loader: rig %q: bone %q: parent %q not declared before it", def.Name, bd.Name, bd.Parent)
			}
			parentIndex = parent.Index
		}
		bind, err := parsePose(bd.Bind)
		if err != nil {
			return nil, fmt.Errorf("loader: rig %q: bone %q: %w", def.Name, bd.Name, err)
		}
		b := skel.AddBone(bd.Name, parentIndex, bind)
		if b == nil {
			return nil, fmt.Errorf("loader: rig %q: duplicate bone name %q", def.Name, bd.Name)
		}
		b.Length = bd.Length
	}

	if err := skel.Finalize(); err != nil {
		return nil, fmt.Errorf("loader: rig %q: %w", def.Name, err)
	}
	log.Printf("[Loader] rig %q loaded (%d bones)", def.Name, skel.Count())
	return skel, nil
}

// LoadClip reads and parses a clip definition file into a frozen clip.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - *clip.Clip: the frozen clip
//   - error: read, parse, or validation failure
func LoadClip(path string) (*clip.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading clip %s: %w", path, err)
	}
	return ParseClip(data)
}

// ParseClip parses clip definition bytes into a frozen clip. Tangents are
// generated per the definition's tangent mode (linear by default).
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *clip.Clip: the frozen clip
//   - error: parse or validation failure
func ParseClip(data []byte) (*clip.Clip, error) {
	var def ClipDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("loader: parsing clip: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("loader: clip has no name")
	}

	mode, err := parseLoopMode(def.Loop)
	if err != nil {
		return nil, fmt.Errorf("loader: clip %q: %w", def.Name, err)
	}

	options := []clip.ClipBuilderOption{clip.WithLoopMode(mode)}
	if def.Duration > 0 {
		options = append(options, clip.WithDuration(def.Duration))
	}
	c := clip.NewClip(def.Name, options...)

	for _, td := range def.Tracks {
		if td.Bone == "" {
			return nil, fmt.Errorf("loader: clip %q: track has no bone name", def.Name)
		}
		idx := c.AddTrack(td.Bone)
		if idx < 0 {
			return nil, fmt.Errorf("loader: clip %q: duplicate track for bone %q", def.Name, td.Bone)
		}
		lastTime := float32(0)
		for i, kd := range td.Keyframes {
			if i > 0 && kd.Time < lastTime {
				return nil, fmt.Errorf("loader: clip %q: track %q: keyframes out of order at %v", def.Name, td.Bone, kd.Time)
			}
			lastTime = kd.Time
			p, err := parsePose(kd.Pose)
			if err != nil {
				return nil, fmt.Errorf("loader: clip %q: track %q: %w", def.Name, td.Bone, err)
			}
			c.AddKeyframe(idx, clip.Keyframe{Time: kd.Time, Pose: p})
		}
	}

	for _, ed := range def.Events {
		c.AddEvent(clip.Event{Time: ed.Time, Name: ed.Name, Args: ed.Args})
	}

	switch def.Tangents {
	case "", "linear":
		c.CalculateLinearTangents()
	case "smooth":
		c.CalculateSmoothTangents()
	default:
		return nil, fmt.Errorf("loader: clip %q: unknown tangent mode %q", def.Name, def.Tangents)
	}

	c.Freeze()
	log.Printf("[Loader] clip %q loaded (%d tracks, %.2fs)", def.Name, c.TrackCount(), c.Duration())
	return c, nil
}

// LoadController reads and parses a controller definition file, resolving
// clip references against the supplied registry.
//
// Parameters:
//   - path: the YAML file to read
//   - clips: the clip registry, keyed by clip name
//
// Returns:
//   - *Controller: the wired controller
//   - error: read, parse, or resolution failure
func LoadController(path string, clips map[string]*clip.Clip) (*Controller, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading controller %s: %w", path, err)
	}
	return ParseController(data, clips)
}

// ParseController parses controller definition bytes and wires the machine,
// blend trees, transitions, and layers. Clip references are resolved
// against the supplied registry; unknown references fail loudly here rather
// than degrading silently at runtime.
//
// Parameters:
//   - data: the YAML document
//   - clips: the clip registry, keyed by clip name
//
// Returns:
//   - *Controller: the wired controller
//   - error: parse or resolution failure
func ParseController(data []byte, clips map[string]*clip.Clip) (*Controller, error) {
	var def ControllerDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("loader: parsing controller: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("loader: controller has no name")
	}

	trees := make(map[string]*blendtree.Tree, len(def.Trees))
	for _, td := range def.Trees {
		tree, err := buildTree(def.Name, td, clips)
		if err != nil {
			return nil, err
		}
		if _, dup := trees[td.Name]; dup {
			return nil, fmt.Errorf("loader: controller %q: duplicate tree %q", def.Name, td.Name)
		}
		trees[td.Name] = tree
	}

	m := statemachine.NewMachine()
	for name, v := range def.Params.Floats {
		m.Params().SetFloat(name, v)
	}
	for name, v := range def.Params.Bools {
		m.Params().SetBool(name, v)
	}

	for _, sd := range def.States {
		source, err := resolveSource(def.Name, sd.Name, sd.Clip, sd.Tree, clips, trees)
		if err != nil {
			return nil, err
		}
		var opts []statemachine.StateOption
		if sd.Speed != nil {
			opts = append(opts, statemachine.WithSpeed(*sd.Speed))
		}
		if sd.Mirror {
			opts = append(opts, statemachine.WithMirror())
		}
		if m.AddState(sd.Name, source, opts...) == nil {
			return nil, fmt.Errorf("loader: controller %q: duplicate state %q", def.Name, sd.Name)
		}
	}

	for _, td := range def.Transitions {
		if td.From == td.To {
			return nil, fmt.Errorf("loader: controller %q: transition %s -> %s: self-transitions are not supported", def.Name, td.From, td.To)
		}
		if m.State(td.From) == nil || m.State(td.To) == nil {
			return nil, fmt.Errorf("loader: controller %q: transition %s -> %s references unknown state", def.Name, td.From, td.To)
		}
		var opts []statemachine.TransitionOption
		if td.ExitTime != nil {
			opts = append(opts, statemachine.WithExitTime(*td.ExitTime))
		}
		if td.Priority != 0 {
			opts = append(opts, statemachine.WithPriority(td.Priority))
		}
		for _, cd := range td.Conditions {
			cond, err := buildCondition(def.Name, cd)
			if err != nil {
				return nil, err
			}
			opts = append(opts, statemachine.WithCondition(cond))
		}
		m.AddTransition(statemachine.NewTransition(td.From, td.To, td.Duration, opts...))
	}

	if def.DefaultState != "" {
		if m.State(def.DefaultState) == nil {
			return nil, fmt.Errorf("loader: controller %q: unknown default state %q", def.Name, def.DefaultState)
		}
		m.SetDefaultState(def.DefaultState)
	}

	stack := layer.NewStack()
	for _, ld := range def.Layers {
		l, err := buildLayer(def.Name, ld, clips, trees)
		if err != nil {
			return nil, err
		}
		stack.Add(l)
	}

	log.Printf("[Loader] controller %q loaded (%d states, %d transitions, %d layers)",
		def.Name, len(def.States), len(def.Transitions), stack.Len())
	return &Controller{Name: def.Name, Machine: m, Layers: stack}, nil
}

func buildTree(controller string, td TreeDef, clips map[string]*clip.Clip) (*blendtree.Tree, error) {
	if td.Name == "" {
		return nil, fmt.Errorf("loader: controller %q: tree has no name", controller)
	}
	var bt blendtree.BlendType
	switch td.Type {
	case "", "1d":
		bt = blendtree.Blend1D
	case "2d":
		bt = blendtree.Blend2DSimple
	case "2d-freeform":
		bt = blendtree.Blend2DFreeform
	case "direct":
		bt = blendtree.BlendDirect
	default:
		return nil, fmt.Errorf("loader: controller %q: tree %q: unknown type %q", controller, td.Name, td.Type)
	}

	tree := blendtree.NewTree(td.Name, bt)
	for _, cd := range td.Children {
		c, ok := clips[cd.Clip]
		if !ok {
			return nil, fmt.Errorf("loader: controller %q: tree %q: unknown clip %q", controller, td.Name, cd.Clip)
		}
		opts := []blendtree.ChildOption{
			blendtree.WithThreshold(cd.Threshold),
			blendtree.WithPosition(cd.Position[0], cd.Position[1]),
			blendtree.WithDirectWeight(cd.Weight),
		}
		if cd.Speed != nil {
			opts = append(opts, blendtree.WithSpeed(*cd.Speed))
		}
		tree.AddChild(c, opts...)
	}
	return tree, nil
}

func buildCondition(controller string, cd ConditionDef) (statemachine.Condition, error) {
	var op statemachine.Comparator
	switch cd.Op {
	case "==":
		op = statemachine.OpEqual
	case "!=":
		op = statemachine.OpNotEqual
	case ">":
		op = statemachine.OpGreater
	case "<":
		op = statemachine.OpLess
	case ">=":
		op = statemachine.OpGreaterEqual
	case "<=":
		op = statemachine.OpLessEqual
	default:
		return statemachine.Condition{}, fmt.Errorf("loader: controller %q: condition on %q: unknown op %q", controller, cd.Param, cd.Op)
	}

	switch cd.Type {
	case "", "float":
		return statemachine.FloatCondition(cd.Param, op, cd.Value), nil
	case "bool":
		if op != statemachine.OpEqual && op != statemachine.OpNotEqual {
			return statemachine.Condition{}, fmt.Errorf("loader: controller %q: condition on %q: bool conditions support == and != only", controller, cd.Param)
		}
		return statemachine.BoolCondition(cd.Param, op, cd.BoolValue), nil
	default:
		return statemachine.Condition{}, fmt.Errorf("loader: controller %q: condition on %q: unknown type %q", controller, cd.Param, cd.Type)
	}
}

func buildLayer(controller string, ld LayerDef, clips map[string]*clip.Clip, trees map[string]*blendtree.Tree) (*layer.Layer, error) {
	if ld.Name == "" {
		return nil, fmt.Errorf("loader: controller %q: layer has no name", controller)
	}
	source, err := resolveSource(controller, ld.Name, ld.Clip, ld.Tree, clips, trees)
	if err != nil {
		return nil, err
	}

	var stateOpts []statemachine.StateOption
	if ld.Speed != nil {
		stateOpts = append(stateOpts, statemachine.WithSpeed(*ld.Speed))
	}
	state := statemachine.NewState(ld.Name, source, stateOpts...)

	opts := []layer.LayerOption{}
	switch ld.Mode {
	case "", "override":
	case "additive":
		opts = append(opts, layer.WithMode(layer.Additive))
	default:
		return nil, fmt.Errorf("loader: controller %q: layer %q: unknown mode %q", controller, ld.Name, ld.Mode)
	}
	if ld.Weight != nil {
		opts = append(opts, layer.WithWeight(*ld.Weight))
	}
	if len(ld.Mask) > 0 {
		opts = append(opts, layer.WithMask(ld.Mask...))
	}
	return layer.NewLayer(ld.Name, state, opts...), nil
}

// resolveSource maps a clip-or-tree name pair to a motion source. Exactly
// one of clipName and treeName must be set.
func resolveSource(controller, owner, clipName, treeName string, clips map[string]*clip.Clip, trees map[string]*blendtree.Tree) (statemachine.MotionSource, error) {
	switch {
	case clipName != "" && treeName != "":
		return nil, fmt.Errorf("loader: controller %q: %q names both a clip and a tree", controller, owner)
	case clipName != "":
		c, ok := clips[clipName]
		if !ok {
			return nil, fmt.Errorf("loader: controller %q: %q: unknown clip %q", controller, owner, clipName)
		}
		return c, nil
	case treeName != "":
		t, ok := trees[treeName]
		if !ok {
			return nil, fmt.Errorf("loader: controller %q: %q: unknown tree %q", controller, owner, treeName)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("loader: controller %q: %q names neither a clip nor a tree", controller, owner)
	}
}

func parseLoopMode(s string) (clip.LoopMode, error) {
	switch s {
	case "", "none":
		return clip.LoopNone, nil
	case "repeat":
		return clip.LoopRepeat, nil
	case "ping-pong":
		return clip.LoopPingPong, nil
	case "clamp-forever":
		return clip.LoopClampForever, nil
	default:
		return clip.LoopNone, fmt.Errorf("unknown loop mode %q", s)
	}
}

func parsePose(pd PoseDef) (pose.BonePose, error) {
	p := pose.Identity()
	if pd.Position != nil {
		if len(pd.Position) != 3 {
			return p, fmt.Errorf("position needs 3 components, got %d", len(pd.Position))
		}
		copy(p.Position[:], pd.Position)
	}
	if pd.Rotation != nil {
		if len(pd.Rotation) != 4 {
			return p, fmt.Errorf("rotation needs 4 components, got %d", len(pd.Rotation))
		}
		copy(p.Rotation[:], pd.Rotation)
		p.NormalizeRotation()
	}
	if pd.Scale != nil {
		if len(pd.Scale) != 3 {
			return p, fmt.Errorf("scale needs 3 components, got %d", len(pd.Scale))
		}
		copy(p.Scale[:], pd.Scale)
	}
	return p, nil
}

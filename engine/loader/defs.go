package loader

// PoseDef is the YAML shape of a bone pose. Missing channels default to the
// identity pose (zero position, identity rotation, unit scale).
type PoseDef struct {
	Position []float32 `yaml:"position"`
	Rotation []float32 `yaml:"rotation"`
	Scale    []float32 `yaml:"scale"`
}

// BoneDef is the YAML shape of one skeleton bone. Parents are referenced by
// name and must be declared before their children.
type BoneDef struct {
	Name   string  `yaml:"name"`
	Parent string  `yaml:"parent"`
	Length float32 `yaml:"length"`
	Bind   PoseDef `yaml:"bind"`
}

// RigDef is the YAML shape of a skeleton definition file.
type RigDef struct {
	Name  string    `yaml:"name"`
	Bones []BoneDef `yaml:"bones"`
}

// KeyframeDef is the YAML shape of one keyframe.
type KeyframeDef struct {
	Time float32 `yaml:"time"`
	Pose PoseDef `yaml:"pose"`
}

// TrackDef is the YAML shape of one bone track.
type TrackDef struct {
	Bone      string        `yaml:"bone"`
	Keyframes []KeyframeDef `yaml:"keyframes"`
}

// EventDef is the YAML shape of one timeline event.
type EventDef struct {
	Time float32        `yaml:"time"`
	Name string         `yaml:"name"`
	Args map[string]any `yaml:"args"`
}

// ClipDef is the YAML shape of an animation clip definition file. Loop is
// one of none, repeat, ping-pong, clamp-forever. Tangents is linear or
// smooth.
type ClipDef struct {
	Name     string     `yaml:"name"`
	Duration float32    `yaml:"duration"`
	Loop     string     `yaml:"loop"`
	Tangents string     `yaml:"tangents"`
	Tracks   []TrackDef `yaml:"tracks"`
	Events   []EventDef `yaml:"events"`
}

// TreeChildDef is the YAML shape of one blend tree child.
type TreeChildDef struct {
	Clip      string     `yaml:"clip"`
	Threshold float32    `yaml:"threshold"`
	Position  [2]float32 `yaml:"position"`
	Weight    float32    `yaml:"weight"`
	Speed     *float32   `yaml:"speed"`
}

// TreeDef is the YAML shape of a blend tree. Type is one of 1d, 2d,
// 2d-freeform, direct.
type TreeDef struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Children []TreeChildDef `yaml:"children"`
}

// StateDef is the YAML shape of one machine state. Exactly one of Clip or
// Tree names the motion source.
type StateDef struct {
	Name   string   `yaml:"name"`
	Clip   string   `yaml:"clip"`
	Tree   string   `yaml:"tree"`
	Speed  *float32 `yaml:"speed"`
	Mirror bool     `yaml:"mirror"`
}

// ConditionDef is the YAML shape of one transition guard. Type is float or
// bool; Op is one of ==, !=, >, <, >=, <= (bools accept == and != only).
type ConditionDef struct {
	Param     string  `yaml:"param"`
	Type      string  `yaml:"type"`
	Op        string  `yaml:"op"`
	Value     float32 `yaml:"value"`
	BoolValue bool    `yaml:"bool_value"`
}

// TransitionDef is the YAML shape of one transition.
type TransitionDef struct {
	From       string         `yaml:"from"`
	To         string         `yaml:"to"`
	Duration   float32        `yaml:"duration"`
	ExitTime   *float32       `yaml:"exit_time"`
	Priority   int            `yaml:"priority"`
	Conditions []ConditionDef `yaml:"conditions"`
}

// ParamsDef is the YAML shape of the machine's initial parameter values.
type ParamsDef struct {
	Floats map[string]float32 `yaml:"floats"`
	Bools  map[string]bool    `yaml:"bools"`
}

// LayerDef is the YAML shape of one animation layer. Exactly one of Clip or
// Tree names the motion source of the layer's state. Mode is override or
// additive; an empty mask affects all bones.
type LayerDef struct {
	Name   string   `yaml:"name"`
	Clip   string   `yaml:"clip"`
	Tree   string   `yaml:"tree"`
	Mode   string   `yaml:"mode"`
	Weight *float32 `yaml:"weight"`
	Mask   []string `yaml:"mask"`
	Speed  *float32 `yaml:"speed"`
}

// ControllerDef is the YAML shape of a controller definition file: the
// machine's parameters, blend trees, states, transitions, and layers. Clips
// are referenced by name and resolved against a registry supplied by the
// caller.
type ControllerDef struct {
	Name         string          `yaml:"name"`
	DefaultState string          `yaml:"default_state"`
	Params       ParamsDef       `yaml:"params"`
	Trees        []TreeDef       `yaml:"trees"`
	States       []StateDef      `yaml:"states"`
	Transitions  []TransitionDef `yaml:"transitions"`
	Layers       []LayerDef      `yaml:"layers"`
}

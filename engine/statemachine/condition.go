package statemachine

// Comparator is the relational operator a Condition applies to its parameter.
type Comparator int

const (
	// OpEqual matches when the parameter equals the comparison value.
	OpEqual Comparator = iota

	// OpNotEqual matches when the parameter differs from the comparison value.
	OpNotEqual

	// OpGreater matches when the parameter is greater (float only).
	OpGreater

	// OpLess matches when the parameter is less (float only).
	OpLess

	// OpGreaterEqual matches when the parameter is greater or equal (float only).
	OpGreaterEqual

	// OpLessEqual matches when the parameter is less or equal (float only).
	OpLessEqual
)

// String returns the comparator's symbol.
//
// Returns:
//   - string: the comparator symbol
func (c Comparator) String() string {
	switch c {
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpGreater:
		return ">"
	case OpLess:
		return "<"
	case OpGreaterEqual:
		return ">="
	case OpLessEqual:
		return "<="
	default:
		return "unknown"
	}
}

type conditionKind int

const (
	conditionFloat conditionKind = iota
	conditionBool
)

// Condition guards a transition on one parameter. A condition against an
// absent parameter never matches. Bool conditions support equality and
// inequality only; any other comparator on a bool condition never matches.
type Condition struct {
	// Param is the parameter name the condition reads.
	Param string

	// Op is the comparator applied to the parameter.
	Op Comparator

	kind       conditionKind
	floatValue float32
	boolValue  bool
}

// FloatCondition builds a condition comparing a float parameter against a
// value.
//
// Parameters:
//   - param: the parameter name
//   - op: the comparator to apply
//   - value: the comparison value
//
// Returns:
//   - Condition: the condition
func FloatCondition(param string, op Comparator, value float32) Condition {
	return Condition{
		Param:      param,
		Op:         op,
		kind:       conditionFloat,
		floatValue: value,
	}
}

// BoolCondition builds a condition comparing a bool parameter against a
// value. Only OpEqual and OpNotEqual are meaningful for bools.
//
// Parameters:
//   - param: the parameter name
//   - op: the comparator to apply (OpEqual or OpNotEqual)
//   - value: the comparison value
//
// Returns:
//   - Condition: the condition
func BoolCondition(param string, op Comparator, value bool) Condition {
	return Condition{
		Param:     param,
		Op:        op,
		kind:      conditionBool,
		boolValue: value,
	}
}

// evaluate reports whether the condition matches the current parameter
// values.
func (c Condition) evaluate(p *Params) bool {
	switch c.kind {
	case conditionFloat:
		v, ok := p.Float(c.Param)
		if !ok {
			return false
		}
		switch c.Op {
		case OpEqual:
			return v == c.floatValue
		case OpNotEqual:
			return v != c.floatValue
		case OpGreater:
			return v > c.floatValue
		case OpLess:
			return v < c.floatValue
		case OpGreaterEqual:
			return v >= c.floatValue
		case OpLessEqual:
			return v <= c.floatValue
		}
	case conditionBool:
		v, ok := p.Bool(c.Param)
		if !ok {
			return false
		}
		switch c.Op {
		case OpEqual:
			return v == c.boolValue
		case OpNotEqual:
			return v != c.boolValue
		}
	}
	return false
}

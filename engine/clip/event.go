package clip

// Event is a timeline marker fired when playback crosses its time. Events
// carry an optional keyed argument map for gameplay consumers (footstep
// surface names, damage amounts, and similar); values are int, float, or
// string.
type Event struct {
	// Time is the event's clip-local time in seconds.
	Time float32

	// Name identifies the event to its consumers.
	Name string

	// Args is optional keyed data attached to the event. May be nil.
	Args map[string]any
}

// IntArg returns the named argument as an int.
//
// Parameters:
//   - key: the argument key
//
// Returns:
//   - int: the value, or 0 if absent or not an int
func (e Event) IntArg(key string) int {
	if v, ok := e.Args[key].(int); ok {
		return v
	}
	return 0
}

// FloatArg returns the named argument as a float32.
//
// Parameters:
//   - key: the argument key
//
// Returns:
//   - float32: the value, or 0 if absent or not a float
func (e Event) FloatArg(key string) float32 {
	switch v := e.Args[key].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	}
	return 0
}

// StringArg returns the named argument as a string.
//
// Parameters:
//   - key: the argument key
//
// Returns:
//   - string: the value, or "" if absent or not a string
func (e Event) StringArg(key string) string {
	if v, ok := e.Args[key].(string); ok {
		return v
	}
	return ""
}

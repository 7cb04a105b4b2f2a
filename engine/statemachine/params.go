package statemachine

// Params is the state machine's name-to-value parameter store, written by
// gameplay logic and read by transition condition evaluation. Floats and
// bools live in separate namespaces; a name may exist in both. Triggers are
// plain booleans with no automatic consumption: firing a transition does NOT
// reset the trigger, the caller is responsible for calling ResetTrigger after
// use.
type Params struct {
	floats map[string]float32
	bools  map[string]bool
}

// NewParams creates an empty parameter store.
//
// Returns:
//   - *Params: the newly created store
func NewParams() *Params {
	return &Params{
		floats: make(map[string]float32),
		bools:  make(map[string]bool),
	}
}

// SetFloat stores a float parameter.
//
// Parameters:
//   - name: the parameter name
//   - value: the value to store
func (p *Params) SetFloat(name string, value float32) {
	p.floats[name] = value
}

// Float returns a float parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - float32: the stored value, or 0 if absent
//   - bool: whether the parameter exists
func (p *Params) Float(name string) (float32, bool) {
	v, ok := p.floats[name]
	return v, ok
}

// SetBool stores a bool parameter.
//
// Parameters:
//   - name: the parameter name
//   - value: the value to store
func (p *Params) SetBool(name string, value bool) {
	p.bools[name] = value
}

// Bool returns a bool parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - bool: the stored value, or false if absent
//   - bool: whether the parameter exists
func (p *Params) Bool(name string) (bool, bool) {
	v, ok := p.bools[name]
	return v, ok
}

// SetTrigger sets the named bool parameter to true. Sugar over SetBool.
//
// Parameters:
//   - name: the trigger name
func (p *Params) SetTrigger(name string) {
	p.bools[name] = true
}

// ResetTrigger clears the named bool parameter back to false. Sugar over
// SetBool.
//
// Parameters:
//   - name: the trigger name
func (p *Params) ResetTrigger(name string) {
	p.bools[name] = false
}

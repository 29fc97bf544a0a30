package strategy

import "strings"

// Values maps parameter names to their current string value.
type Values map[string]string

// Clone returns a shallow copy. Cloning a nil map yields an empty, non-nil map
// so callers can write into the result.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// Get returns the value for name and whether it was present. Safe on nil.
func (v Values) Get(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	value, ok := v[name]
	return value, ok
}

// Definition is a strategy type known to the system. Parameters is nil when
// the type declares no parameter template at all.
type Definition struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  *ParameterSchema `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	d.Parameters = d.Parameters.Clone()
	return d
}

// Instance is a strategy attached to a feature toggle. It is owned by the
// caller; the form only ever produces replacements.
type Instance struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Parameters Values `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Clone returns a copy that shares nothing with the receiver.
func (i Instance) Clone() Instance {
	if i.Parameters != nil {
		i.Parameters = i.Parameters.Clone()
	}
	return i
}

// Param reads a parameter without panicking when Parameters is nil.
func (i Instance) Param(name string) string {
	value, _ := i.Parameters.Get(name)
	return value
}

// ApplyEdit merges a single parameter change into a new Instance. The
// receiver's parameter map is copied first (an absent map counts as empty),
// so the original instance is left untouched and parameters unknown to any
// schema pass through unchanged. Every other attribute is carried over.
func ApplyEdit(current Instance, key, value string) Instance {
	parameters := current.Parameters.Clone()
	parameters[key] = value

	next := current
	next.Parameters = parameters
	return next
}

// ValidateName reports whether name is usable as a strategy identifier.
func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, "/?#")
}

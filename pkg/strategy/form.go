package strategy

import (
	"iter"
	"sync"
)

// UpdateFunc receives the replacement instance produced by an edit.
type UpdateFunc func(Instance)

// Field describes one editable parameter. Label equals Name; Present reports
// whether the current instance carried a value for it.
type Field struct {
	Name     string
	Label    string
	Value    string
	Present  bool
	Template ParameterTemplate

	onChange func(string)
}

// Change forwards a new value through the handler bound to this field. It is a
// no-op for fields produced without an update callback.
func (f Field) Change(value string) {
	if f.onChange != nil {
		f.onChange(value)
	}
}

// Fields lazily yields one Field per schema key, in schema order, seeded with
// the values of current. Each field's change handler merges into current and
// calls update once. Absent and empty schemas yield nothing.
func Fields(schema *ParameterSchema, current Instance, update UpdateFunc) iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for name, tmpl := range schema.All() {
			value, present := current.Parameters.Get(name)
			field := Field{
				Name:     name,
				Label:    name,
				Value:    value,
				Present:  present,
				Template: tmpl,
			}
			if update != nil {
				key := name
				field.onChange = func(v string) {
					update(ApplyEdit(current, key, v))
				}
			}
			if !yield(field) {
				return
			}
		}
	}
}

// Form binds a schema to the latest known instance. Edits always merge into
// the most recent instance, so consecutive edits to different fields do not
// overwrite each other even before the owner re-renders.
type Form struct {
	mu      sync.Mutex
	schema  *ParameterSchema
	current Instance
	update  UpdateFunc
}

// NewForm constructs a form. schema may be nil (no fields).
func NewForm(schema *ParameterSchema, current Instance, update UpdateFunc) *Form {
	return &Form{
		schema:  schema,
		current: current,
		update:  update,
	}
}

// HasFields reports whether the form has anything to edit. A false result
// means "no configuration needed" rather than an empty editor.
func (f *Form) HasFields() bool {
	if f == nil {
		return false
	}
	return f.schema.Len() > 0
}

// Current returns the latest instance known to the form.
func (f *Form) Current() Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Sync replaces the tracked instance, typically after the owner re-rendered
// with the value it accepted.
func (f *Form) Sync(instance Instance) {
	f.mu.Lock()
	f.current = instance
	f.mu.Unlock()
}

// Fields yields the form fields bound to Form.Edit.
func (f *Form) Fields() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		if f == nil {
			return
		}
		current := f.Current()
		for field := range Fields(f.schema, current, nil) {
			key := field.Name
			field.onChange = func(v string) { f.Edit(key, v) }
			if !yield(field) {
				return
			}
		}
	}
}

// Edit applies one parameter change and invokes the update callback exactly
// once with the new instance. The callback runs synchronously; there is no
// batching or retry.
func (f *Form) Edit(key, value string) Instance {
	f.mu.Lock()
	next := ApplyEdit(f.current, key, value)
	f.current = next
	update := f.update
	f.mu.Unlock()

	if update != nil {
		update(next)
	}
	return next
}

// Package widgets picks the input widget used to edit a strategy parameter.
package widgets

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetInput      = "input"
	WidgetToggle     = "toggle"
	WidgetPercentage = "percentage"
	WidgetNumber     = "number"
	WidgetTextArea   = "textarea"
)

// Matcher reports whether a widget fits a parameter.
type Matcher func(tmpl strategy.ParameterTemplate) bool

type rule struct {
	name     string
	priority int
	match    Matcher
}

// Registry maps strategy parameters to widgets. Rules are kept sorted by
// descending priority; equal priorities keep registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns a registry holding the built-in rules: boolean types
// get a toggle, percentages a 0-100 input, numbers a numeric input and
// text or list types a textarea.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.Register(WidgetToggle, 90, typeIs("boolean", "bool"))
	reg.Register(WidgetPercentage, 80, typeIs("percentage"))
	reg.Register(WidgetNumber, 70, typeIs("number", "integer"))
	reg.Register(WidgetTextArea, 60, typeIs("text", "list"))
	return reg
}

// Register adds a rule. Blank names and nil matchers are ignored.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	name = strings.TrimSpace(name)
	if r == nil || matcher == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	at := sort.Search(len(r.rules), func(i int) bool {
		return r.rules[i].priority < priority
	})
	r.rules = slices.Insert(r.rules, at, rule{name: name, priority: priority, match: matcher})
}

// Resolve returns the widget for tmpl. A Widget hint on the template wins
// over every rule; a nil registry or no matching rule yields WidgetInput.
func (r *Registry) Resolve(tmpl strategy.ParameterTemplate) string {
	if hint := strings.TrimSpace(tmpl.Widget); hint != "" {
		return hint
	}
	if r == nil {
		return WidgetInput
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, candidate := range r.rules {
		if candidate.match(tmpl) {
			return candidate.name
		}
	}
	return WidgetInput
}

func typeIs(kinds ...string) Matcher {
	return func(tmpl strategy.ParameterTemplate) bool {
		return slices.Contains(kinds, strings.ToLower(strings.TrimSpace(tmpl.Type)))
	}
}

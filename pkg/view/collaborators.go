package view

import (
	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// Navigator requests a URL change. Implementations decide what a push means
// (a browser history entry, an HTTP redirect, a recorded path in tests).
type Navigator interface {
	Push(path string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(path string)

// Push calls the underlying function.
func (fn NavigatorFunc) Push(path string) {
	if fn != nil {
		fn(path)
	}
}

// Definitions resolves strategy definitions by name. A false result means the
// strategy type is unknown and the card falls back to the missing state.
type Definitions interface {
	Definition(name string) (strategy.Definition, bool)
}

// DefinitionsFunc adapts a function into Definitions.
type DefinitionsFunc func(name string) (strategy.Definition, bool)

// Definition calls the underlying function.
func (fn DefinitionsFunc) Definition(name string) (strategy.Definition, bool) {
	if fn == nil {
		return strategy.Definition{}, false
	}
	return fn(name)
}

// Collaborators groups the externally supplied callbacks the toggle page
// dispatches to. Nil callbacks are skipped. FetchFeatureToggles being set is
// what selects ModeFeatures; otherwise the page runs in ModeArchive.
type Collaborators struct {
	ToggleFeature       func(enabled bool, name string)
	RemoveFeatureToggle func(name string)
	Revive              func(name string)
	FetchFeatureToggles func()
	FetchArchive        func()
	EditFeatureToggle   func(feature.Toggle)
	// UpdateStrategy and RemoveStrategy are optional; when nil the change is
	// sent through EditFeatureToggle as a full toggle replacement.
	UpdateStrategy func(name string, index int, instance strategy.Instance)
	RemoveStrategy func(name string, index int)
	History        func(name string) []feature.Event
	// OnError receives failures of card edits and removals, such as a card
	// whose strategy index no longer exists.
	OnError func(err error)

	Permissions feature.PermissionChecker
	Definitions Definitions
	Navigator   Navigator
}

func (c Collaborators) can(p feature.Permission) bool {
	if c.Permissions == nil {
		return false
	}
	return c.Permissions.HasPermission(p)
}

func (c Collaborators) push(path string) {
	if c.Navigator != nil {
		c.Navigator.Push(path)
	}
}

func (c Collaborators) fail(err error) {
	if err != nil && c.OnError != nil {
		c.OnError(err)
	}
}

func (c Collaborators) definition(name string) (*strategy.Definition, bool) {
	if c.Definitions == nil {
		return nil, false
	}
	def, ok := c.Definitions.Definition(name)
	if !ok {
		return nil, false
	}
	return &def, true
}

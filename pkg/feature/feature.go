// Package feature defines the feature toggle entity, the permission keys the
// admin views check, and the history records kept for each toggle.
package feature

import (
	"time"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// Variant is a named payload/weight option attached to a toggle.
type Variant struct {
	Name    string `json:"name" yaml:"name"`
	Weight  int    `json:"weight" yaml:"weight"`
	Payload string `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Toggle is a named on/off switch with its activation strategies.
type Toggle struct {
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool                `json:"enabled" yaml:"enabled"`
	Strategies  []strategy.Instance `json:"strategies,omitempty" yaml:"strategies,omitempty"`
	Variants    []Variant           `json:"variants,omitempty" yaml:"variants,omitempty"`
	CreatedAt   time.Time           `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Clone returns a deep copy so callers can derive a new toggle without
// aliasing the owner's strategies or variants.
func (t Toggle) Clone() Toggle {
	if t.Strategies != nil {
		strategies := make([]strategy.Instance, len(t.Strategies))
		for i, s := range t.Strategies {
			strategies[i] = s.Clone()
		}
		t.Strategies = strategies
	}
	if t.Variants != nil {
		t.Variants = append([]Variant(nil), t.Variants...)
	}
	return t
}

// WithDescription returns a copy carrying the new description. Strategy IDs
// are cleared on the copy so the receiving side treats them as a fresh set.
func (t Toggle) WithDescription(description string) Toggle {
	next := t.Clone()
	next.Description = description
	for i := range next.Strategies {
		next.Strategies[i].ID = ""
	}
	return next
}

// WithStrategy returns a copy where the strategy at index is replaced.
// Out-of-range indexes return an unchanged copy and false.
func (t Toggle) WithStrategy(index int, instance strategy.Instance) (Toggle, bool) {
	next := t.Clone()
	if index < 0 || index >= len(next.Strategies) {
		return next, false
	}
	next.Strategies[index] = instance.Clone()
	return next, true
}

// WithoutStrategy returns a copy with the strategy at index removed.
func (t Toggle) WithoutStrategy(index int) (Toggle, bool) {
	next := t.Clone()
	if index < 0 || index >= len(next.Strategies) {
		return next, false
	}
	next.Strategies = append(next.Strategies[:index], next.Strategies[index+1:]...)
	return next, true
}

// Strategy returns the strategy at index.
func (t Toggle) Strategy(index int) (strategy.Instance, bool) {
	if index < 0 || index >= len(t.Strategies) {
		return strategy.Instance{}, false
	}
	return t.Strategies[index], true
}

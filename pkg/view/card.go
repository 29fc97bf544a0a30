package view

import (
	"fmt"
	"iter"
	"net/url"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// CardState selects how a strategy card is shown.
type CardState int

const (
	// CardConfigure shows the parameter form for a known strategy type.
	CardConfigure CardState = iota
	// CardMissing is the fallback for strategies whose type no longer exists.
	CardMissing
)

// StrategyCard presents one strategy attached to a toggle.
type StrategyCard struct {
	Index       int
	State       CardState
	Strategy    strategy.Instance
	Description string
	CreatePath  string
	Editable    bool

	form   *strategy.Form
	remove func()
}

// NewStrategyCard picks the card state from whether def is available. The
// update callback receives replacement instances; remove is invoked only
// through StrategyCard.Remove.
func NewStrategyCard(instance strategy.Instance, def *strategy.Definition, update strategy.UpdateFunc, remove func()) StrategyCard {
	card := StrategyCard{
		Strategy: instance,
		remove:   remove,
		Editable: update != nil,
	}
	if def == nil {
		card.State = CardMissing
		card.CreatePath = CreateStrategyPath(instance.Name)
		return card
	}
	card.State = CardConfigure
	card.Description = def.Description
	card.form = strategy.NewForm(def.Parameters, instance, update)
	return card
}

// CreateStrategyPath links to the strategy creation flow pre-filled with name.
func CreateStrategyPath(name string) string {
	return "/strategies/create?name=" + url.QueryEscape(name)
}

// Name is the strategy name.
func (c StrategyCard) Name() string {
	return c.Strategy.Name
}

// Title is the card heading.
func (c StrategyCard) Title() string {
	if c.State == CardMissing {
		return fmt.Sprintf("%q deleted?", c.Strategy.Name)
	}
	return c.Strategy.Name
}

// Message explains the missing state; empty for configurable cards.
func (c StrategyCard) Message() string {
	if c.State != CardMissing {
		return ""
	}
	return fmt.Sprintf("The strategy %q does not exist on this server.", c.Strategy.Name)
}

// HasFields reports whether the card renders any inputs.
func (c StrategyCard) HasFields() bool {
	return c.form.HasFields()
}

// Fields yields the parameter fields; missing cards yield nothing.
func (c StrategyCard) Fields() iter.Seq[strategy.Field] {
	return c.form.Fields()
}

// Form exposes the underlying form, nil for missing cards.
func (c StrategyCard) Form() *strategy.Form {
	return c.form
}

// Remove requests removal of this strategy from its toggle.
func (c StrategyCard) Remove() {
	if c.remove != nil {
		c.remove()
	}
}

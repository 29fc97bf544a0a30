package view

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// ErrInvalidToggle is returned when a feature draft cannot become a toggle.
var ErrInvalidToggle = errors.New("view: invalid feature toggle")

const (
	draftFieldStrategy = "strategy"
	defaultStrategy    = "default"
)

func toggleDraftSchema() *strategy.ParameterSchema {
	schema := strategy.NewParameterSchema()
	schema.Set(draftFieldName, strategy.ParameterTemplate{Type: "string", Required: true})
	schema.Set(draftFieldDescription, strategy.ParameterTemplate{Type: "text"})
	schema.Set(draftFieldStrategy, strategy.ParameterTemplate{
		Type:        "string",
		Description: "activation strategy attached to the new toggle",
	})
	return schema
}

// FeatureCreatePage is the new toggle form, built on the same dynamic form as
// the strategy editor.
type FeatureCreatePage struct {
	Draft  strategy.Instance
	Errors map[string][]string

	form *strategy.Form
}

// NewFeatureCreatePage builds the page, pre-filling the name when given.
func NewFeatureCreatePage(name string) *FeatureCreatePage {
	page := &FeatureCreatePage{
		Draft: strategy.Instance{
			Name: "feature-draft",
			Parameters: strategy.Values{
				draftFieldName:     strings.TrimSpace(name),
				draftFieldStrategy: defaultStrategy,
			},
		},
	}
	page.form = strategy.NewForm(toggleDraftSchema(), page.Draft, func(next strategy.Instance) {
		page.Draft = next
	})
	return page
}

func (*FeatureCreatePage) Kind() PageKind { return KindFeatureCreate }

func (*FeatureCreatePage) Title() string { return "Create feature toggle" }

func (p *FeatureCreatePage) Fields() iter.Seq[strategy.Field] {
	return p.form.Fields()
}

// Apply feeds submitted values through the form, one edit per changed field.
func (p *FeatureCreatePage) Apply(values map[string]string) {
	for field := range p.form.Fields() {
		value, ok := values[field.Name]
		if !ok || value == field.Value {
			continue
		}
		field.Change(value)
	}
}

// Toggle converts the draft into a disabled toggle. The strategy must name a
// known definition when defs is given.
func (p *FeatureCreatePage) Toggle(defs Definitions) (feature.Toggle, error) {
	p.Errors = nil

	name := strings.TrimSpace(p.Draft.Param(draftFieldName))
	if !strategy.ValidateName(name) {
		p.addError(draftFieldName, "a name without '/', '?' or '#' is required")
	}
	strategyName := strings.TrimSpace(p.Draft.Param(draftFieldStrategy))
	if strategyName == "" {
		strategyName = defaultStrategy
	}
	if defs != nil {
		if _, ok := defs.Definition(strategyName); !ok {
			p.addError(draftFieldStrategy, fmt.Sprintf("unknown strategy %q", strategyName))
		}
	}

	if len(p.Errors) > 0 {
		var messages []string
		for _, key := range []string{draftFieldName, draftFieldStrategy} {
			messages = append(messages, p.Errors[key]...)
		}
		return feature.Toggle{}, fmt.Errorf("%w: %s", ErrInvalidToggle, strings.Join(messages, "; "))
	}
	return feature.Toggle{
		Name:        name,
		Description: strings.TrimSpace(p.Draft.Param(draftFieldDescription)),
		Strategies:  []strategy.Instance{{Name: strategyName}},
	}, nil
}

// AddError records a field error found after conversion, such as a name
// clash reported by the store.
func (p *FeatureCreatePage) AddError(field, message string) {
	p.addError(field, message)
}

func (p *FeatureCreatePage) addError(field, message string) {
	if p.Errors == nil {
		p.Errors = make(map[string][]string)
	}
	p.Errors[field] = append(p.Errors[field], message)
}

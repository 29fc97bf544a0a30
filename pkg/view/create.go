package view

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// ErrInvalidDefinition is returned when a strategy draft cannot become a
// definition.
var ErrInvalidDefinition = errors.New("view: invalid strategy definition")

const (
	draftFieldName        = "name"
	draftFieldDescription = "description"
	draftFieldParameters  = "parameters"
)

func definitionDraftSchema() *strategy.ParameterSchema {
	schema := strategy.NewParameterSchema()
	schema.Set(draftFieldName, strategy.ParameterTemplate{Type: "string", Required: true})
	schema.Set(draftFieldDescription, strategy.ParameterTemplate{Type: "text"})
	schema.Set(draftFieldParameters, strategy.ParameterTemplate{
		Type:        "list",
		Description: "parameter names, one per line or comma separated",
	})
	return schema
}

// StrategyCreatePage is the strategy definition form. It reuses the dynamic
// form: the draft is an Instance whose parameters hold the definition fields.
type StrategyCreatePage struct {
	Draft  strategy.Instance
	Errors map[string][]string

	form *strategy.Form
}

// NewStrategyCreatePage builds the page, pre-filling the name when given.
func NewStrategyCreatePage(name string) *StrategyCreatePage {
	page := &StrategyCreatePage{
		Draft: strategy.Instance{
			Name:       "strategy-definition",
			Parameters: strategy.Values{draftFieldName: strings.TrimSpace(name)},
		},
	}
	page.form = strategy.NewForm(definitionDraftSchema(), page.Draft, func(next strategy.Instance) {
		page.Draft = next
	})
	return page
}

func (*StrategyCreatePage) Kind() PageKind { return KindStrategyCreate }

func (*StrategyCreatePage) Title() string { return "Create strategy" }

// Fields yields the draft form fields.
func (p *StrategyCreatePage) Fields() iter.Seq[strategy.Field] {
	return p.form.Fields()
}

// Apply feeds submitted values through the form, one edit per changed field,
// in schema order.
func (p *StrategyCreatePage) Apply(values map[string]string) {
	for field := range p.form.Fields() {
		value, ok := values[field.Name]
		if !ok || value == field.Value {
			continue
		}
		field.Change(value)
	}
}

// Definition converts the draft into a strategy definition. Validation
// problems are recorded on Errors keyed by field name.
func (p *StrategyCreatePage) Definition() (strategy.Definition, error) {
	p.Errors = nil

	name := strings.TrimSpace(p.Draft.Param(draftFieldName))
	if !strategy.ValidateName(name) {
		p.addError(draftFieldName, "a name without '/', '?' or '#' is required")
	}

	params := strategy.NewParameterSchema(splitParameterNames(p.Draft.Param(draftFieldParameters))...)

	if len(p.Errors) > 0 {
		return strategy.Definition{}, fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(p.Errors[draftFieldName], "; "))
	}
	return strategy.Definition{
		Name:        name,
		Description: strings.TrimSpace(p.Draft.Param(draftFieldDescription)),
		Parameters:  params,
	}, nil
}

// AddError records a field error found after conversion, such as a name
// clash reported by the store.
func (p *StrategyCreatePage) AddError(field, message string) {
	p.addError(field, message)
}

func (p *StrategyCreatePage) addError(field, message string) {
	if p.Errors == nil {
		p.Errors = make(map[string][]string)
	}
	p.Errors[field] = append(p.Errors[field], message)
}

func splitParameterNames(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

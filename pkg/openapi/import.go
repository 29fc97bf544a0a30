package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

const (
	extStrategy       = "x-strategy"
	extStrategyName   = "x-strategy-name"
	extParameterOrder = "x-parameter-order"
	extParameterType  = "x-parameter-type"
	extWidget         = "x-widget"
)

// ImportOption configures ImportDefinitions.
type ImportOption func(*importConfig)

type importConfig struct {
	validate bool
}

// WithValidation validates the document against the OpenAPI rules before
// extracting definitions.
func WithValidation() ImportOption {
	return func(cfg *importConfig) {
		cfg.validate = true
	}
}

// Import loads src through loader and extracts its strategy definitions.
func Import(ctx context.Context, loader *Loader, src Source, options ...ImportOption) ([]strategy.Definition, error) {
	if loader == nil {
		loader = NewLoader()
	}
	data, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return ImportDefinitions(ctx, data, options...)
}

// ImportDefinitions parses an OpenAPI document (JSON or YAML) and returns one
// definition per schema flagged with x-strategy, sorted by name.
func ImportDefinitions(ctx context.Context, data []byte, options ...ImportOption) ([]strategy.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	cfg := importConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Components == nil {
		return nil, nil
	}

	var defs []strategy.Definition
	seen := make(map[string]string)
	for key, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil || !truthy(ref.Value.Extensions[extStrategy]) {
			continue
		}
		def, err := definitionFromSchema(key, ref.Value)
		if err != nil {
			return nil, err
		}
		if other, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("openapi: schemas %q and %q both define strategy %q", other, key, def.Name)
		}
		seen[def.Name] = key
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

func definitionFromSchema(key string, schema *openapi3.Schema) (strategy.Definition, error) {
	name := key
	if custom, ok := schema.Extensions[extStrategyName].(string); ok && strings.TrimSpace(custom) != "" {
		name = strings.TrimSpace(custom)
	}
	if !strategy.ValidateName(name) {
		return strategy.Definition{}, fmt.Errorf("openapi: schema %q: invalid strategy name %q", key, name)
	}

	order, err := parameterOrder(key, schema)
	if err != nil {
		return strategy.Definition{}, err
	}

	required := make(map[string]bool, len(schema.Required))
	for _, field := range schema.Required {
		required[field] = true
	}

	def := strategy.Definition{
		Name:        name,
		Description: strings.TrimSpace(schema.Description),
	}
	if schema.Properties == nil && len(order) == 0 {
		return def, nil
	}
	params := strategy.NewParameterSchema()
	for _, prop := range order {
		tmpl := strategy.ParameterTemplate{Required: required[prop]}
		if ref := schema.Properties[prop]; ref != nil && ref.Value != nil {
			tmpl.Type = parameterType(ref.Value)
			tmpl.Description = strings.TrimSpace(ref.Value.Description)
			if widget, ok := ref.Value.Extensions[extWidget].(string); ok {
				tmpl.Widget = strings.TrimSpace(widget)
			}
		}
		params.Set(prop, tmpl)
	}
	def.Parameters = params
	return def, nil
}

// parameterOrder honours x-parameter-order, then appends remaining properties
// in sorted order.
func parameterOrder(key string, schema *openapi3.Schema) ([]string, error) {
	var order []string
	listed := make(map[string]bool)
	if raw, ok := schema.Extensions[extParameterOrder]; ok {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("openapi: schema %q: %s must be a list of property names", key, extParameterOrder)
		}
		for _, item := range items {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("openapi: schema %q: %s entries must be strings", key, extParameterOrder)
			}
			if _, known := schema.Properties[name]; !known {
				return nil, fmt.Errorf("openapi: schema %q: %s names unknown property %q", key, extParameterOrder, name)
			}
			if !listed[name] {
				listed[name] = true
				order = append(order, name)
			}
		}
	}

	rest := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		if !listed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...), nil
}

func parameterType(schema *openapi3.Schema) string {
	if custom, ok := schema.Extensions[extParameterType].(string); ok && custom != "" {
		return custom
	}
	switch {
	case schema.Format == "percentage":
		return "percentage"
	case schema.Format == "textarea":
		return "text"
	case schema.Type == nil:
		return ""
	case schema.Type.Is(openapi3.TypeArray):
		return "list"
	case schema.Type.Is(openapi3.TypeInteger), schema.Type.Is(openapi3.TypeNumber):
		return "number"
	case schema.Type.Is(openapi3.TypeBoolean):
		return "boolean"
	default:
		return "string"
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

package strategy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParameterTemplate describes a single strategy parameter. Every attribute is
// an optional hint for renderers; the presence of the key in the schema is
// what makes the parameter editable.
type ParameterTemplate struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	// Widget names the input renderers should use, overriding the one
	// derived from Type.
	Widget string `json:"widget,omitempty" yaml:"widget,omitempty"`
}

// ParameterSchema is an insertion-ordered mapping of parameter names to
// templates. Keys define the exact set of editable fields and their order.
//
// A nil *ParameterSchema is treated as absent and behaves like an empty
// schema on every read method.
type ParameterSchema struct {
	keys      []string
	templates map[string]ParameterTemplate
}

// NewParameterSchema builds a schema with the given parameter names in order
// and zero-value templates. Duplicate names keep their first position.
func NewParameterSchema(names ...string) *ParameterSchema {
	schema := &ParameterSchema{}
	for _, name := range names {
		schema.Set(name, ParameterTemplate{})
	}
	return schema
}

// Set adds or replaces a parameter. New names are appended; existing names
// keep their position and receive the new template. Blank names are ignored.
func (s *ParameterSchema) Set(name string, tmpl ParameterTemplate) {
	if s == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if s.templates == nil {
		s.templates = make(map[string]ParameterTemplate)
	}
	if _, exists := s.templates[name]; !exists {
		s.keys = append(s.keys, name)
	}
	s.templates[name] = tmpl
}

// Len reports the number of parameters.
func (s *ParameterSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the parameter names in schema order.
func (s *ParameterSchema) Keys() []string {
	if s == nil || len(s.keys) == 0 {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Has reports whether name is part of the schema.
func (s *ParameterSchema) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.templates[name]
	return ok
}

// Template returns the template registered for name.
func (s *ParameterSchema) Template(name string) (ParameterTemplate, bool) {
	if s == nil {
		return ParameterTemplate{}, false
	}
	tmpl, ok := s.templates[name]
	return tmpl, ok
}

// All iterates parameters in schema order.
func (s *ParameterSchema) All() iter.Seq2[string, ParameterTemplate] {
	return func(yield func(string, ParameterTemplate) bool) {
		if s == nil {
			return
		}
		for _, key := range s.keys {
			if !yield(key, s.templates[key]) {
				return
			}
		}
	}
}

// Clone returns an independent copy. Cloning nil yields nil so absence is
// preserved.
func (s *ParameterSchema) Clone() *ParameterSchema {
	if s == nil {
		return nil
	}
	out := &ParameterSchema{}
	for key, tmpl := range s.All() {
		out.Set(key, tmpl)
	}
	return out
}

// MarshalJSON writes the schema as an object whose keys follow schema order.
func (s ParameterSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		tmpl, err := json.Marshal(s.templates[key])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(tmpl)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts either an object (name → template) or an array of
// parameter names. Object key order is preserved.
func (s *ParameterSchema) UnmarshalJSON(data []byte) error {
	*s = ParameterSchema{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("strategy: decode parameter schema: %w", err)
	}

	switch tok {
	case nil:
		return nil
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("strategy: decode parameter name: %w", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("strategy: unexpected parameter name token %v", keyTok)
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("strategy: decode parameter %q: %w", key, err)
			}
			tmpl, err := decodeTemplateJSON(raw)
			if err != nil {
				return fmt.Errorf("strategy: decode parameter %q: %w", key, err)
			}
			s.Set(key, tmpl)
		}
	case json.Delim('['):
		for dec.More() {
			var name string
			if err := dec.Decode(&name); err != nil {
				return fmt.Errorf("strategy: decode parameter name: %w", err)
			}
			s.Set(name, ParameterTemplate{})
		}
	default:
		return fmt.Errorf("strategy: parameter schema must be an object or array, got %v", tok)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("strategy: decode parameter schema: %w", err)
	}
	return nil
}

func decodeTemplateJSON(raw json.RawMessage) (ParameterTemplate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ParameterTemplate{}, nil
	}
	if trimmed[0] == '"' {
		var kind string
		if err := json.Unmarshal(trimmed, &kind); err != nil {
			return ParameterTemplate{}, err
		}
		return ParameterTemplate{Type: kind}, nil
	}
	var tmpl ParameterTemplate
	if err := json.Unmarshal(trimmed, &tmpl); err != nil {
		return ParameterTemplate{}, err
	}
	return tmpl, nil
}

// MarshalYAML emits an ordered mapping node.
func (s ParameterSchema) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range s.keys {
		value := &yaml.Node{}
		if err := value.Encode(s.templates[key]); err != nil {
			return nil, fmt.Errorf("strategy: encode parameter %q: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}
	return node, nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents, reading the mapping
// node directly so key order survives.
func (s *ParameterSchema) UnmarshalYAML(node *yaml.Node) error {
	*s = ParameterSchema{}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			tmpl, err := decodeTemplateYAML(node.Content[i+1])
			if err != nil {
				return fmt.Errorf("strategy: decode parameter %q: %w", key, err)
			}
			s.Set(key, tmpl)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("strategy: parameter list entries must be names (line %d)", item.Line)
			}
			s.Set(item.Value, ParameterTemplate{})
		}
	case yaml.ScalarNode:
		if node.Tag != "!!null" && strings.TrimSpace(node.Value) != "" {
			return fmt.Errorf("strategy: parameter schema must be a mapping or sequence (line %d)", node.Line)
		}
	default:
		return fmt.Errorf("strategy: unsupported parameter schema node (line %d)", node.Line)
	}
	return nil
}

func decodeTemplateYAML(node *yaml.Node) (ParameterTemplate, error) {
	if node == nil {
		return ParameterTemplate{}, nil
	}
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" || strings.TrimSpace(node.Value) == "" {
			return ParameterTemplate{}, nil
		}
		return ParameterTemplate{Type: node.Value}, nil
	}
	var tmpl ParameterTemplate
	if err := node.Decode(&tmpl); err != nil {
		return ParameterTemplate{}, err
	}
	return tmpl, nil
}

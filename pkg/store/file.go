package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// Document is the seed file layout.
type Document struct {
	Definitions []strategy.Definition `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Features    []feature.Toggle      `json:"features,omitempty" yaml:"features,omitempty"`
	Archive     []feature.Toggle      `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// MergeDefinitions adds defs to the document, replacing same-named entries in
// place and appending new ones.
func (d *Document) MergeDefinitions(defs []strategy.Definition) {
	index := make(map[string]int, len(d.Definitions))
	for i, def := range d.Definitions {
		index[def.Name] = i
	}
	for _, def := range defs {
		if i, ok := index[def.Name]; ok {
			d.Definitions[i] = def.Clone()
			continue
		}
		index[def.Name] = len(d.Definitions)
		d.Definitions = append(d.Definitions, def.Clone())
	}
}

// LoadFile reads a seed document. Files ending in .json are decoded as JSON,
// everything else as YAML.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("store: read %s: %w", path, err)
	}
	doc, err := Decode(data, isJSON(path))
	if err != nil {
		return Document{}, fmt.Errorf("store: %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a seed document.
func Decode(data []byte, asJSON bool) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if asJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("decode json: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode yaml: %w", err)
	}
	return doc, nil
}

// Encode serialises doc in the format matching asJSON.
func Encode(doc Document, asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("store: encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("store: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("store: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFile writes doc to path through a temporary file in the same directory.
func SaveFile(path string, doc Document) error {
	data, err := Encode(doc, isJSON(path))
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".toggleadmin-*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

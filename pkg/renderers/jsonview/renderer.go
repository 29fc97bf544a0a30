// Package jsonview renders composed pages as JSON documents for API clients.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

type Option func(*Renderer)

// WithIndent pretty-prints output using indent per level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer encodes render.PageData.
type Renderer struct {
	indent string
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render encodes page. Theme information is not part of the payload.
func (r *Renderer) Render(_ context.Context, page view.Page, opts render.RenderOptions) ([]byte, error) {
	data, err := render.BuildPageData(page, opts)
	if err != nil {
		return nil, fmt.Errorf("json renderer: %w", err)
	}

	var out []byte
	if r.indent != "" {
		out, err = json.MarshalIndent(data, "", r.indent)
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return append(out, '\n'), nil
}

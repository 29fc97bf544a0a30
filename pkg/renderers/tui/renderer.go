package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

// TextRenderer prints composed pages as plain text for terminals.
type TextRenderer struct{}

// NewTextRenderer constructs the plain-text renderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (*TextRenderer) Name() string { return "text" }

func (*TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render writes a line-oriented summary of page.
func (*TextRenderer) Render(_ context.Context, page view.Page, opts render.RenderOptions) ([]byte, error) {
	data, err := render.BuildPageData(page, opts)
	if err != nil {
		return nil, fmt.Errorf("text renderer: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", data.Title, strings.Repeat("=", len(data.Title)))
	if data.Flash != "" {
		fmt.Fprintf(&b, "> %s\n", data.Flash)
	}
	for _, message := range data.Errors {
		fmt.Fprintf(&b, "! %s\n", message)
	}

	switch {
	case data.Toggle != nil:
		writeToggle(&b, data.Toggle)
	case data.List != nil:
		if data.List.State != "loaded" {
			b.WriteString("loading...\n")
		}
		for _, item := range data.List.Toggles {
			fmt.Fprintf(&b, "%s %s (%d strategies)\n", onOff(item.Enabled), item.Name, item.Strategies)
		}
	case data.Strategies != nil:
		for _, def := range data.Strategies.Definitions {
			names := make([]string, 0, len(def.Parameters))
			for _, p := range def.Parameters {
				names = append(names, p.Name)
			}
			fmt.Fprintf(&b, "%s [%s]\n", def.Name, strings.Join(names, ", "))
		}
	case data.Create != nil:
		for _, field := range data.Create.Fields {
			fmt.Fprintf(&b, "%s: %s\n", field.Label, field.Value)
		}
	}
	return []byte(b.String()), nil
}

func writeToggle(b *strings.Builder, t *render.ToggleData) {
	switch t.Status {
	case "loading":
		b.WriteString("loading...\n")
		return
	case "not-found":
		fmt.Fprintf(b, "Could not find the toggle %s\n", t.Name)
		if t.CreatePath != "" {
			fmt.Fprintf(b, "Create it at %s\n", t.CreatePath)
		}
		return
	}

	fmt.Fprintf(b, "%s %s\n", onOff(t.Enabled), t.Description)
	tabs := make([]string, 0, len(t.Tabs))
	for _, tab := range t.Tabs {
		label := tab.Label
		if tab.Active {
			label = "[" + label + "]"
		}
		tabs = append(tabs, label)
	}
	fmt.Fprintf(b, "%s\n", strings.Join(tabs, " | "))

	c := t.Content
	if c == nil {
		return
	}
	switch c.Kind {
	case "strategies", "strategies-editor":
		for _, card := range c.Cards {
			fmt.Fprintf(b, "#%d %s\n", card.Index, card.Title)
			if card.State == "missing" {
				fmt.Fprintf(b, "   %s\n", card.Message)
				continue
			}
			for _, field := range card.Fields {
				fmt.Fprintf(b, "   %s = %s\n", field.Label, field.Value)
			}
		}
	case "metrics":
		if c.Metrics == nil {
			return
		}
		fmt.Fprintf(b, "strategies: %d, variants: %d\n", c.Metrics.Strategies, c.Metrics.Variants)
	case "variants":
		for _, v := range c.Variants {
			fmt.Fprintf(b, "%s (%d)\n", v.Name, v.Weight)
		}
	case "history":
		for _, e := range c.Events {
			fmt.Fprintf(b, "%s %s %s\n", e.CreatedAt, e.Type, e.Detail)
		}
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "[on]"
	}
	return "[off]"
}

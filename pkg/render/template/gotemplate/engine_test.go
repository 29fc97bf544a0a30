package gotemplate_test

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-toggleadmin/pkg/render/template/gotemplate"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func shout(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(fmt.Sprintf("%s!", strings.ToUpper(in.String()))), nil
}

func TestEngineExecute(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     any
		golden   string
	}{
		{name: "map data", template: "hello", data: map[string]any{"name": "Ada"}, golden: "hello.golden"},
		{name: "explicit extension", template: "hello.tmpl", data: map[string]any{"name": "Ada"}, golden: "hello.golden"},
		{name: "filter", template: "use-filter", data: map[string]any{"name": "Ada"}, golden: "use-filter.golden"},
		{name: "globals", template: "use-global", golden: "use-global.golden"},
		{
			name:     "struct data uses json names",
			template: "strategies",
			data: struct {
				Strategies []strategy.Instance `json:"strategies"`
			}{
				Strategies: []strategy.Instance{
					{Name: "gradualRollout", Parameters: strategy.Values{"groupId": "B"}},
					{Name: "default"},
				},
			},
			golden: "strategies.golden",
		},
	}

	engine := newEngine(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := engine.Execute(&buf, tc.template, tc.data); err != nil {
				t.Fatalf("execute: %v", err)
			}
			want := testsupport.ReadString(t, filepath.Join("testdata", tc.golden))
			if buf.String() != want {
				t.Fatalf("output mismatch\nwant: %q\n got: %q", want, buf.String())
			}
		})
	}
}

func TestEngineOverrideSourceShadowsBuiltin(t *testing.T) {
	override := fstest.MapFS{"hello.tmpl": {Data: []byte("Hi {{ name }}")}}
	engine, err := gotemplate.New(gotemplate.WithFS(override), gotemplate.WithFS(templatesFS(t)), gotemplate.WithExtension(".tmpl"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	var buf bytes.Buffer
	if err := engine.Execute(&buf, "hello", map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.String() != "Hi Ada" {
		t.Fatalf("override not used: %q", buf.String())
	}
}

func TestEngineExtension(t *testing.T) {
	files := fstest.MapFS{
		"page.tpl":  {Data: []byte("tpl {{ name }}")},
		"page.html": {Data: []byte("html {{ name }}")},
	}
	tests := []struct {
		name    string
		options []gotemplate.Option
		want    string
	}{
		{name: "default", want: "tpl Ada"},
		{name: "without dot", options: []gotemplate.Option{gotemplate.WithExtension("html")}, want: "html Ada"},
		{name: "blank keeps default", options: []gotemplate.Option{gotemplate.WithExtension(" ")}, want: "tpl Ada"},
		{name: "go-template options", options: []gotemplate.Option{gotemplate.WithGoTemplateOptions()}, want: "tpl Ada"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(files)}, tc.options...)...)
			if err != nil {
				t.Fatalf("new engine: %v", err)
			}
			var buf bytes.Buffer
			if err := engine.Execute(&buf, "page", map[string]any{"name": "Ada"}); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if buf.String() != tc.want {
				t.Fatalf("output = %q, want %q", buf.String(), tc.want)
			}
		})
	}
}

func TestEngineMissingTemplateWritesNothing(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	if err := engine.Execute(&buf, "missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on failure, got %q", buf.String())
	}
}

func TestEngineRejectsNonObjectData(t *testing.T) {
	engine := newEngine(t)
	if err := engine.Execute(&bytes.Buffer{}, "hello", []string{"Ada"}); err == nil {
		t.Fatalf("expected error for list data")
	}
}

func TestEngineRequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); !errors.Is(err, gotemplate.ErrNoTemplates) {
		t.Fatalf("expected ErrNoTemplates, got %v", err)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()
	engine, err := gotemplate.New(
		gotemplate.WithFS(templatesFS(t)),
		gotemplate.WithExtension(".tmpl"),
		gotemplate.WithFilter("shout", shout),
		gotemplate.WithGlobals(map[string]any{"settings": map[string]any{"env": "staging"}}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func templatesFS(t *testing.T) fs.FS {
	t.Helper()
	files, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	return files
}

package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-toggleadmin/pkg/render/template"
)

// ErrNoTemplates is returned when an engine is built without any source.
var ErrNoTemplates = errors.New("gotemplate: no template source configured")

// Option configures an Engine.
type Option func(*Engine)

// WithFS adds a template source. Earlier sources shadow later ones, so an
// override bundle goes before the built-in templates.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		if files != nil {
			e.sources = append(e.sources, files)
		}
	}
}

// WithExtension sets the extension appended to template names that lack it.
// The default is ".tpl", matching go-template.
func WithExtension(ext string) Option {
	return func(e *Engine) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.ext = ext
	}
}

// WithFilter registers a pongo2 filter. Filters are process-wide in pongo2;
// a name already taken keeps its first registration.
func WithFilter(name string, fn pongo2.FilterFunction) Option {
	return func(e *Engine) {
		name = strings.TrimSpace(name)
		if name != "" && fn != nil {
			e.filters[name] = fn
		}
	}
}

// WithGlobals seeds values every template can read.
func WithGlobals(values map[string]any) Option {
	return func(e *Engine) {
		for key, value := range values {
			e.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithGoTemplateOptions accepts options written for go-template engines.
// The pongo2 set has no counterpart for them, so they are ignored.
func WithGoTemplateOptions(_ ...gotemplatepkg.Option) Option {
	return func(*Engine) {}
}

// Engine executes templates through a pongo2 set that follows go-template's
// conventions: an extension appended to bare names, process-wide filters and
// set-level globals. Parsed templates are cached for the life of the engine.
type Engine struct {
	sources []fs.FS
	ext     string
	filters map[string]pongo2.FilterFunction
	globals pongo2.Context

	set   *pongo2.TemplateSet
	mu    sync.Mutex
	cache map[string]*pongo2.Template
}

var _ template.Executor = (*Engine)(nil)

// New builds an engine. At least one WithFS source is required.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		ext:     ".tpl",
		filters: make(map[string]pongo2.FilterFunction),
		globals: make(pongo2.Context),
		cache:   make(map[string]*pongo2.Template),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if len(e.sources) == 0 {
		return nil, ErrNoTemplates
	}

	loaders := make([]pongo2.TemplateLoader, 0, len(e.sources))
	for _, files := range e.sources {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}
	e.set = pongo2.NewSet("toggleadmin", loaders...)
	e.set.Globals.Update(e.globals)

	for name, fn := range e.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register filter %q: %w", name, err)
		}
	}
	return e, nil
}

// Execute renders the named template with data. Output is buffered so a
// failing template never leaves a half-written page in w.
func (e *Engine) Execute(w io.Writer, name string, data any) error {
	tmpl, err := e.lookup(name)
	if err != nil {
		return err
	}
	ctx, err := contextOf(data)
	if err != nil {
		return fmt.Errorf("gotemplate: %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return fmt.Errorf("gotemplate: execute %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	path := strings.TrimSpace(name)
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %s: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

// contextOf turns page data into plain maps through its JSON form, so
// templates address fields by the same names as JSON clients.
func contextOf(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var ctx map[string]any
	if err := dec.Decode(&ctx); err != nil {
		return nil, fmt.Errorf("template data must be an object: %w", err)
	}
	return pongo2.Context(ctx), nil
}

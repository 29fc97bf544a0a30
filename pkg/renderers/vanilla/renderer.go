package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/render"
	rendertemplate "github.com/goliatone/go-toggleadmin/pkg/render/template"
	"github.com/goliatone/go-toggleadmin/pkg/render/template/gotemplate"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.Executor
	stylesheet       string
	inlineStyles     bool
	logger           *zap.Logger
}

// WithTemplatesDir loads theme partials from a directory on disk. Files there
// shadow the built-in templates of the same name.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.Executor) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet links an external stylesheet from every page.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(href)
	}
}

// WithDefaultStyles inlines the embedded stylesheet.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithLogger sets the logger used for template diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer produces server-rendered HTML pages from composed views.
type Renderer struct {
	templates    rendertemplate.Executor
	stylesheet   string
	inlineStyles string
	logger       *zap.Logger
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithFS(TemplatesFS()),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithFilter("ugc", filterUGC),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	renderer := &Renderer{
		templates:  templates,
		stylesheet: cfg.stylesheet,
		logger:     cfg.logger,
	}
	if cfg.inlineStyles {
		renderer.inlineStyles = defaultStylesheet()
	}
	return renderer, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes a full HTML document for page.
func (r *Renderer) Render(_ context.Context, page view.Page, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	data, err := render.BuildPageData(page, opts)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	partials := render.DefaultPartials()
	if opts.Theme != nil {
		for key, value := range opts.Theme.Partials {
			if strings.TrimSpace(value) != "" {
				partials[key] = value
			}
		}
	}

	content := partials[partialKey(page.Kind())]
	layout := partials["layout"]
	r.logger.Debug("render page",
		zap.String("kind", data.Kind),
		zap.String("layout", layout),
		zap.String("content", content),
	)

	var out bytes.Buffer
	err = r.templates.Execute(&out, layout, map[string]any{
		"page":         data,
		"content":      content,
		"locale":       opts.Locale,
		"theme":        themeContext(opts),
		"stylesheet":   r.stylesheetURL(opts),
		"inlineStyles": r.inlineStyles,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return out.Bytes(), nil
}

func partialKey(kind view.PageKind) string {
	switch kind {
	case view.KindToggle:
		return "page.toggle"
	case view.KindToggleList:
		return "page.list"
	case view.KindStrategyList:
		return "page.strategies"
	case view.KindStrategyCreate:
		return "page.create"
	case view.KindFeatureCreate:
		return "page.new-toggle"
	default:
		return "page.list"
	}
}

func (r *Renderer) stylesheetURL(opts render.RenderOptions) string {
	if opts.Theme != nil && opts.Theme.AssetURL != nil {
		if href := opts.Theme.AssetURL("stylesheet"); href != "" {
			return href
		}
	}
	return r.stylesheet
}

func themeContext(opts render.RenderOptions) map[string]any {
	if opts.Theme == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    opts.Theme.Theme,
		"variant": opts.Theme.Variant,
		"cssVars": cssVarsStyle(opts.Theme.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := strings.TrimSpace(vars[key])
		if value == "" || strings.ContainsAny(value, ";{}<>") {
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

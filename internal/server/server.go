// Package server exposes the toggle admin views over HTTP.
package server

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

// Store is the persistence the handlers bind view collaborators to.
type Store interface {
	Features() []feature.Toggle
	Archived() []feature.Toggle
	CreateFeature(toggle feature.Toggle) error
	ReplaceFeature(toggle feature.Toggle) error
	SetEnabled(name string, enabled bool) error
	ArchiveFeature(name string) error
	ReviveFeature(name string) error
	UpdateStrategy(name string, index int, instance strategy.Instance) error
	RemoveStrategy(name string, index int) error
	History(name string) []feature.Event
	Definitions() []strategy.Definition
	Definition(name string) (strategy.Definition, bool)
	CreateDefinition(def strategy.Definition) error
	DeleteDefinition(name string) error
}

// PermissionResolver returns the permissions of the caller of r.
type PermissionResolver func(r *http.Request) feature.PermissionChecker

type Option func(*Server)

// WithPermissions sets how permissions are resolved per request. Without it
// every caller is read-only.
func WithPermissions(resolver PermissionResolver) Option {
	return func(s *Server) {
		if resolver != nil {
			s.permissions = resolver
		}
	}
}

// WithFallbackRenderer names the renderer used when negotiation finds no
// match.
func WithFallbackRenderer(name string) Option {
	return func(s *Server) {
		if name = strings.TrimSpace(name); name != "" {
			s.fallback = name
		}
	}
}

// WithTheme sets the theme selector and its default theme and variant.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *Server) {
		s.themes = selector
		s.themeName = name
		s.themeVariant = variant
	}
}

// WithTranslator localises labels for locale.
func WithTranslator(locale string, translator render.Translator) Option {
	return func(s *Server) {
		s.locale = locale
		s.translator = translator
	}
}

// WithAssets serves files under prefix, e.g. the embedded stylesheet.
func WithAssets(prefix string, files fs.FS) Option {
	return func(s *Server) {
		s.assetPrefix = "/" + strings.Trim(prefix, "/")
		s.assets = files
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server routes admin requests to composed views.
type Server struct {
	store        Store
	registry     *render.Registry
	fallback     string
	permissions  PermissionResolver
	themes       theme.ThemeSelector
	themeName    string
	themeVariant string
	locale       string
	translator   render.Translator
	assetPrefix  string
	assets       fs.FS
	logger       *zap.Logger
	router       chi.Router
}

// New builds the server. registry must hold the fallback renderer, "vanilla"
// unless overridden.
func New(st Store, registry *render.Registry, options ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("server: store is required")
	}
	if registry == nil {
		return nil, errors.New("server: renderer registry is required")
	}
	s := &Server{
		store:       st,
		registry:    registry,
		fallback:    "vanilla",
		permissions: func(*http.Request) feature.PermissionChecker { return feature.NewPermissionSet() },
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if !registry.Has(s.fallback) {
		return nil, errors.New("server: fallback renderer " + s.fallback + " is not registered")
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/features", http.StatusFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.assets != nil {
		r.Handle(s.assetPrefix+"/*", http.StripPrefix(s.assetPrefix, http.FileServer(http.FS(s.assets))))
	}

	r.Route("/features", func(r chi.Router) {
		r.Get("/", s.handle(s.listToggles(view.ModeFeatures)))
		r.Post("/", s.handle(s.createToggle))
		r.Get("/create", s.handle(s.newToggle))
		r.Get("/{tab}/{name}", s.handle(s.showToggle(view.ModeFeatures)))
		r.Post("/{name}/toggle", s.handle(s.toggle))
		r.Post("/{name}/description", s.handle(s.updateDescription))
		r.Post("/{name}/archive", s.handle(s.archive))
		r.Post("/{name}/strategies", s.handle(s.addStrategy))
		r.Post("/{name}/strategies/{index}", s.handle(s.editStrategy))
		r.Post("/{name}/strategies/{index}/remove", s.handle(s.removeStrategy))
	})
	r.Route("/archive", func(r chi.Router) {
		r.Get("/", s.handle(s.listToggles(view.ModeArchive)))
		r.Get("/{tab}/{name}", s.handle(s.showToggle(view.ModeArchive)))
		r.Post("/{name}/revive", s.handle(s.revive))
	})
	r.Route("/strategies", func(r chi.Router) {
		r.Get("/", s.handle(s.listStrategies))
		r.Post("/", s.handle(s.createStrategy))
		r.Get("/create", s.handle(s.newStrategy))
		r.Post("/{name}/delete", s.handle(s.deleteStrategy))
	})
	return r
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

// renderPage negotiates a renderer and writes page with status.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page view.Page, status int, opts render.RenderOptions) error {
	renderer, err := s.negotiate(r)
	if err != nil {
		return err
	}

	opts.Theme = s.resolveTheme(r)
	if opts.Locale == "" {
		opts.Locale = s.locale
		if lang := r.URL.Query().Get("lang"); lang != "" {
			opts.Locale = lang
		}
	}
	if opts.Translator == nil {
		opts.Translator = s.translator
	}
	if opts.OnMissing == nil {
		opts.OnMissing = s.missingLabel
	}

	body, err := renderer.Render(r.Context(), page, opts)
	if err != nil {
		return fmt.Errorf("server: render %s: %w", page.Kind(), err)
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Vary", "Accept")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

func (s *Server) negotiate(r *http.Request) (render.Renderer, error) {
	if format := strings.TrimSpace(r.URL.Query().Get("format")); format != "" {
		renderer, err := s.registry.Get(format)
		if err != nil {
			return nil, StatusError{Code: http.StatusNotAcceptable, Err: err}
		}
		return renderer, nil
	}
	return s.registry.Negotiate(r.Header.Get("Accept"), s.fallback)
}

// resolveTheme honours ?theme= and ?variant= overrides, falling back to the
// configured defaults when the requested theme is unknown.
func (s *Server) resolveTheme(r *http.Request) *theme.RendererConfig {
	if s.themes == nil {
		return nil
	}
	name := r.URL.Query().Get("theme")
	if name == "" {
		name = s.themeName
	}
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = s.themeVariant
	}
	cfg, err := render.ResolveTheme(s.themes, name, variant, render.DefaultPartials())
	if err == nil {
		return cfg
	}
	s.logger.Warn("theme selection failed", zap.String("theme", name), zap.Error(err))
	cfg, err = render.ResolveTheme(s.themes, s.themeName, s.themeVariant, render.DefaultPartials())
	if err != nil {
		return nil
	}
	return cfg
}

// missingLabel logs catalog misses; the label falls back to its default text.
func (s *Server) missingLabel(locale, key string, err error) {
	s.logger.Debug("missing translation",
		zap.String("locale", locale),
		zap.String("key", key),
		zap.Error(err),
	)
}

// redirect answers a form post with 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, path string) error {
	http.Redirect(w, r, path, http.StatusSeeOther)
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", code),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	message := err.Error()
	if code >= http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": message, "status": code})
		return
	}
	http.Error(w, message, code)
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "application/json" {
			return true
		}
	}
	return false
}

package render

import (
	"errors"
	"fmt"
	"mime"
	"slices"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrUnknownFormat is returned when no renderer is registered under the
	// requested format name.
	ErrUnknownFormat = errors.New("render: unknown format")
	// ErrDuplicateFormat is returned when a format name is registered twice.
	ErrDuplicateFormat = errors.New("render: format already registered")
)

// Registry holds the page renderers keyed by format name ("vanilla", "json",
// "text") and picks one for an Accept header.
type Registry struct {
	mu      sync.RWMutex
	formats []string
	byName  map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

// Register adds renderer under its Name.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateFormat, name)
	}
	r.byName[name] = renderer
	r.formats = append(r.formats, name)
	return nil
}

// MustRegister is Register for wiring code that cannot recover.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(format string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.byName[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return renderer, nil
}

func (r *Registry) Has(format string) bool {
	_, err := r.Get(format)
	return err == nil
}

// Formats lists the registered names in registration order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.formats)
}

// Negotiate picks the renderer whose media type has the highest quality in
// accept. Ties keep header order, q=0 entries are refused and wildcards or
// an empty header select fallback. When two renderers share a media type the
// first registered wins.
func (r *Registry) Negotiate(accept, fallback string) (Renderer, error) {
	r.mu.RLock()
	byType := make(map[string]Renderer, len(r.formats))
	for _, name := range r.formats {
		renderer := r.byName[name]
		mediaType, _, err := mime.ParseMediaType(renderer.ContentType())
		if err != nil {
			continue
		}
		if _, taken := byType[mediaType]; !taken {
			byType[mediaType] = renderer
		}
	}
	r.mu.RUnlock()

	for _, mediaType := range acceptedTypes(accept) {
		if renderer, ok := byType[mediaType]; ok {
			return renderer, nil
		}
	}
	return r.Get(fallback)
}

type acceptEntry struct {
	mediaType string
	quality   float64
}

func acceptedTypes(header string) []string {
	var entries []acceptEntry
	for _, part := range strings.Split(header, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		quality := 1.0
		if q, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(q, 64); err == nil {
				quality = parsed
			}
		}
		if quality <= 0 {
			continue
		}
		entries = append(entries, acceptEntry{mediaType: mediaType, quality: quality})
	}
	slices.SortStableFunc(entries, func(a, b acceptEntry) int {
		switch {
		case a.quality > b.quality:
			return -1
		case a.quality < b.quality:
			return 1
		}
		return 0
	})

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.mediaType)
	}
	return out
}

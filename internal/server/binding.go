package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

// binding collects what the view collaborators did during one request: the
// store errors they hit and the last path pushed through the navigator.
type binding struct {
	errs []error
	path string
}

// Push records a navigation; the handler turns it into a redirect.
func (b *binding) Push(path string) {
	b.path = path
}

func (b *binding) check(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

func (b *binding) err() error {
	return errors.Join(b.errs...)
}

// composer builds the toggle page for one request with collaborators bound
// to the store. The list is always loaded so the fetch callbacks only mark
// the mode.
func (s *Server) composer(r *http.Request, mode view.Mode, tab, name string, b *binding) *view.Composer {
	items := s.store.Features()
	if mode == view.ModeArchive {
		items = s.store.Archived()
	}

	collab := view.Collaborators{
		ToggleFeature: func(enabled bool, name string) {
			b.check(s.store.SetEnabled(name, enabled))
		},
		RemoveFeatureToggle: func(name string) {
			b.check(s.store.ArchiveFeature(name))
		},
		Revive: func(name string) {
			b.check(s.store.ReviveFeature(name))
		},
		EditFeatureToggle: func(toggle feature.Toggle) {
			b.check(s.store.ReplaceFeature(toggle))
		},
		UpdateStrategy: func(name string, index int, instance strategy.Instance) {
			b.check(s.store.UpdateStrategy(name, index, instance))
		},
		RemoveStrategy: func(name string, index int) {
			b.check(s.store.RemoveStrategy(name, index))
		},
		History:     s.store.History,
		OnError:     b.check,
		Permissions: s.permissions(r),
		Definitions: s.store,
		Navigator:   b,
	}
	if mode == view.ModeFeatures {
		collab.FetchFeatureToggles = func() {}
	} else {
		collab.FetchArchive = func() {}
	}

	c := view.NewComposer(view.Props{
		ActiveTab:  tab,
		ToggleName: name,
		Features:   view.Loaded(items),
	}, collab)
	c.Mount()
	return c
}

// param reads a path parameter, undoing percent-encoding chi leaves in
// place when the request path carried escaped characters.
func param(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

// formValues returns the first submitted value of every posted key.
func formValues(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, StatusError{Code: http.StatusBadRequest, Err: err}
	}
	values := make(map[string]string, len(r.PostForm))
	for key, list := range r.PostForm {
		if len(list) > 0 {
			values[key] = list[0]
		}
	}
	return values, nil
}

package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/store"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

func (s *Server) listStrategies(w http.ResponseWriter, r *http.Request) error {
	page := view.NewStrategyListPage(s.store.Definitions(), s.permissions(r))
	return s.renderPage(w, r, page, http.StatusOK, render.RenderOptions{})
}

func (s *Server) newStrategy(w http.ResponseWriter, r *http.Request) error {
	if !s.permissions(r).HasPermission(feature.CreateStrategy) {
		return view.ErrPermissionDenied
	}
	page := view.NewStrategyCreatePage(r.URL.Query().Get("name"))
	return s.renderPage(w, r, page, http.StatusOK, render.RenderOptions{})
}

func (s *Server) createStrategy(w http.ResponseWriter, r *http.Request) error {
	if !s.permissions(r).HasPermission(feature.CreateStrategy) {
		return view.ErrPermissionDenied
	}
	values, err := formValues(r)
	if err != nil {
		return err
	}
	page := view.NewStrategyCreatePage("")
	page.Apply(values)

	def, err := page.Definition()
	if err != nil {
		if errors.Is(err, view.ErrInvalidDefinition) {
			return s.renderPage(w, r, page, http.StatusUnprocessableEntity, render.RenderOptions{Errors: page.Errors})
		}
		return err
	}
	if err := s.store.CreateDefinition(def); err != nil {
		if errors.Is(err, store.ErrExists) {
			page.AddError("name", "a strategy with this name already exists")
			return s.renderPage(w, r, page, http.StatusConflict, render.RenderOptions{Errors: page.Errors})
		}
		return err
	}
	return redirect(w, r, "/strategies")
}

func (s *Server) deleteStrategy(w http.ResponseWriter, r *http.Request) error {
	if !s.permissions(r).HasPermission(feature.DeleteStrategy) {
		return view.ErrPermissionDenied
	}
	if err := s.store.DeleteDefinition(param(r, "name")); err != nil {
		return err
	}
	return redirect(w, r, "/strategies")
}

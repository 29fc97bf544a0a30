package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/store"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/validation"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

func (s *Server) listToggles(mode view.Mode) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		items := s.store.Features()
		if mode == view.ModeArchive {
			items = s.store.Archived()
		}
		page := view.NewToggleListPage(mode, view.Loaded(items), s.permissions(r))
		return s.renderPage(w, r, page, http.StatusOK, render.RenderOptions{})
	}
}

func (s *Server) showToggle(mode view.Mode) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		b := &binding{}
		page := s.composer(r, mode, param(r, "tab"), param(r, "name"), b).Compose()
		status := http.StatusOK
		if page.Status == view.StatusNotFound {
			status = http.StatusNotFound
		}
		return s.renderPage(w, r, page, status, render.RenderOptions{})
	}
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) error {
	b := &binding{}
	c := s.composer(r, view.ModeFeatures, r.FormValue("tab"), param(r, "name"), b)
	if err := c.Toggle(); err != nil {
		return err
	}
	return s.finish(w, r, c, b)
}

func (s *Server) updateDescription(w http.ResponseWriter, r *http.Request) error {
	b := &binding{}
	c := s.composer(r, view.ModeFeatures, r.FormValue("tab"), param(r, "name"), b)
	if err := c.UpdateDescription(strings.TrimSpace(r.PostFormValue("description"))); err != nil {
		return err
	}
	return s.finish(w, r, c, b)
}

func (s *Server) archive(w http.ResponseWriter, r *http.Request) error {
	b := &binding{}
	c := s.composer(r, view.ModeFeatures, r.FormValue("tab"), param(r, "name"), b)
	archived, err := c.Archive(func() bool {
		return r.PostFormValue("confirm") == "yes"
	})
	if err != nil {
		return err
	}
	if !archived {
		return s.renderPage(w, r, c.Compose(), http.StatusUnprocessableEntity, render.RenderOptions{
			Flash: "Tick the confirmation box to archive this toggle.",
		})
	}
	if err := b.err(); err != nil {
		return err
	}
	return redirect(w, r, b.path)
}

func (s *Server) revive(w http.ResponseWriter, r *http.Request) error {
	b := &binding{}
	c := s.composer(r, view.ModeArchive, "", param(r, "name"), b)
	if err := c.Revive(); err != nil {
		return err
	}
	if err := b.err(); err != nil {
		return err
	}
	return redirect(w, r, b.path)
}

func (s *Server) addStrategy(w http.ResponseWriter, r *http.Request) error {
	b := &binding{}
	c := s.composer(r, view.ModeFeatures, view.TabStrategies.Slug(), param(r, "name"), b)
	if _, err := c.AddStrategy(strings.TrimSpace(r.PostFormValue("strategy"))); err != nil {
		return err
	}
	return s.finish(w, r, c, b)
}

// editStrategy pushes every changed parameter through the card form, so the
// store sees one update per changed field, each building on the previous.
func (s *Server) editStrategy(w http.ResponseWriter, r *http.Request) error {
	values, err := formValues(r)
	if err != nil {
		return err
	}
	b := &binding{}
	c, card, err := s.strategyCard(r, b)
	if err != nil {
		return err
	}
	if card.State == view.CardMissing {
		return StatusError{
			Code: http.StatusConflict,
			Err:  fmt.Errorf("strategy %q does not exist on this server", card.Name()),
		}
	}

	type change struct {
		field strategy.Field
		value string
	}
	var (
		changes []change
		invalid = make(map[string][]string)
	)
	for field := range card.Fields() {
		value, ok := values[field.Name]
		if !ok || value == field.Value {
			continue
		}
		var issue validation.Issue
		if err := validation.Value(field.Name, field.Template, value); errors.As(err, &issue) {
			invalid[field.Name] = append(invalid[field.Name], issue.Message)
			continue
		}
		changes = append(changes, change{field: field, value: value})
	}
	if len(invalid) > 0 {
		return s.renderPage(w, r, c.Compose(), http.StatusUnprocessableEntity, render.RenderOptions{Errors: invalid})
	}

	for _, ch := range changes {
		ch.field.Change(ch.value)
	}
	if err := b.err(); err != nil {
		return err
	}
	return redirect(w, r, c.GoToTab(view.TabStrategies))
}

func (s *Server) removeStrategy(w http.ResponseWriter, r *http.Request) error {
	b := &binding{}
	c, card, err := s.strategyCard(r, b)
	if err != nil {
		return err
	}
	card.Remove()
	if err := b.err(); err != nil {
		return err
	}
	return redirect(w, r, c.GoToTab(view.TabStrategies))
}

// strategyCard composes the strategies editor and returns the card at the
// {index} path parameter.
func (s *Server) strategyCard(r *http.Request, b *binding) (*view.Composer, view.StrategyCard, error) {
	index, err := strconv.Atoi(param(r, "index"))
	if err != nil {
		return nil, view.StrategyCard{}, StatusError{Code: http.StatusNotFound, Err: view.ErrStrategyIndex}
	}
	c := s.composer(r, view.ModeFeatures, view.TabStrategies.Slug(), param(r, "name"), b)
	page := c.Compose()
	if page.Status != view.StatusReady {
		return nil, view.StrategyCard{}, view.ErrToggleNotFound
	}
	editor, ok := page.Content.(view.StrategiesEditor)
	if !ok {
		return nil, view.StrategyCard{}, view.ErrPermissionDenied
	}
	if index < 0 || index >= len(editor.Cards) {
		return nil, view.StrategyCard{}, view.ErrStrategyIndex
	}
	return c, editor.Cards[index], nil
}

func (s *Server) newToggle(w http.ResponseWriter, r *http.Request) error {
	if !s.permissions(r).HasPermission(feature.CreateFeature) {
		return view.ErrPermissionDenied
	}
	page := view.NewFeatureCreatePage(r.URL.Query().Get("name"))
	return s.renderPage(w, r, page, http.StatusOK, render.RenderOptions{})
}

func (s *Server) createToggle(w http.ResponseWriter, r *http.Request) error {
	if !s.permissions(r).HasPermission(feature.CreateFeature) {
		return view.ErrPermissionDenied
	}
	values, err := formValues(r)
	if err != nil {
		return err
	}
	page := view.NewFeatureCreatePage("")
	page.Apply(values)

	toggle, err := page.Toggle(s.store)
	if err != nil {
		if errors.Is(err, view.ErrInvalidToggle) {
			return s.renderPage(w, r, page, http.StatusUnprocessableEntity, render.RenderOptions{Errors: page.Errors})
		}
		return err
	}
	if err := s.store.CreateFeature(toggle); err != nil {
		if errors.Is(err, store.ErrExists) {
			page.AddError("name", "a toggle with this name already exists")
			return s.renderPage(w, r, page, http.StatusConflict, render.RenderOptions{Errors: page.Errors})
		}
		return err
	}
	s.logger.Info("feature toggle created", zap.String("feature", toggle.Name))
	return redirect(w, r, view.ModeFeatures.TogglePath(view.TabStrategies, toggle.Name))
}

// finish redirects back to the tab the form was posted from.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, c *view.Composer, b *binding) error {
	if err := b.err(); err != nil {
		return err
	}
	return redirect(w, r, c.GoToTab(c.ActiveTab()))
}

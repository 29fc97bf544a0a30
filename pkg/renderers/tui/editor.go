package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/validation"
	"github.com/goliatone/go-toggleadmin/pkg/view"
	"github.com/goliatone/go-toggleadmin/pkg/widgets"
)

// Result summarises an editing session on one strategy.
type Result struct {
	Instance strategy.Instance
	Changed  []string
	Removed  bool
}

// Editor drives strategy cards through terminal prompts. Each changed answer
// is pushed through the card's form, which issues one update per change.
type Editor struct {
	driver  PromptDriver
	theme   Theme
	widgets *widgets.Registry
	logger  *zap.Logger
}

// New constructs an Editor with the survey driver unless overridden.
func New(options ...Option) *Editor {
	e := &Editor{widgets: widgets.NewRegistry(), logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(nil)
	}
	return e
}

// EditPage edits one strategy of a composed toggle page. A negative index
// asks the user to pick the strategy.
func (e *Editor) EditPage(ctx context.Context, page view.TogglePage, index int) (Result, error) {
	if page.Status != view.StatusReady {
		return Result{}, fmt.Errorf("tui: toggle %q is %s", page.ToggleName, page.Status)
	}
	editor, ok := page.Content.(view.StrategiesEditor)
	if !ok {
		return Result{}, ErrNotEditable
	}
	if len(editor.Cards) == 0 {
		return Result{}, ErrNoStrategies
	}

	if index < 0 {
		options := make([]string, 0, len(editor.Cards))
		for _, card := range editor.Cards {
			options = append(options, fmt.Sprintf("%d: %s", card.Index, card.Title()))
		}
		picked, err := e.driver.Select(ctx, SelectConfig{
			Message: fmt.Sprintf("Strategy of %s to edit", page.ToggleName),
			Options: options,
		})
		if err != nil {
			return Result{}, err
		}
		index = picked
	}
	if index < 0 || index >= len(editor.Cards) {
		return Result{}, fmt.Errorf("%w: %d", view.ErrStrategyIndex, index)
	}
	return e.EditStrategy(ctx, editor.Cards[index])
}

// EditStrategy prompts for every parameter of card in schema order. Missing
// strategy types offer removal instead.
func (e *Editor) EditStrategy(ctx context.Context, card view.StrategyCard) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("tui: context is required")
	}
	result := Result{Instance: card.Strategy}

	switch card.State {
	case view.CardMissing:
		if err := e.info(ctx, fmt.Sprintf("%s\n%s\nCreate it at %s", card.Title(), card.Message(), card.CreatePath)); err != nil {
			return result, err
		}
		remove, err := e.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Remove strategy %q from this toggle?", card.Name()),
		})
		if err != nil {
			return result, err
		}
		if remove {
			card.Remove()
			result.Removed = true
			e.logger.Info("strategy removed", zap.String("strategy", card.Name()), zap.Int("index", card.Index))
		}
		return result, nil
	case view.CardConfigure:
	}

	if !card.HasFields() {
		return result, e.info(ctx, fmt.Sprintf("%s does not have any configuration options.", card.Name()))
	}
	if !card.Editable {
		return result, ErrNotEditable
	}

	for field := range card.Fields() {
		answer, err := e.ask(ctx, field)
		if err != nil {
			return result, err
		}
		if answer == field.Value {
			continue
		}
		field.Change(answer)
		result.Changed = append(result.Changed, field.Name)
		e.logger.Debug("strategy parameter changed",
			zap.String("strategy", card.Name()),
			zap.String("parameter", field.Name),
		)
	}
	result.Instance = card.Form().Current()
	return result, nil
}

func (e *Editor) ask(ctx context.Context, field strategy.Field) (string, error) {
	help := field.Template.Description
	validate := func(value string) error {
		return validation.Value(field.Name, field.Template, value)
	}

	switch e.widgets.Resolve(field.Template) {
	case widgets.WidgetTextArea:
		return e.driver.TextArea(ctx, TextAreaConfig{
			Message:   field.Label,
			Default:   field.Value,
			Help:      help,
			Validator: validate,
		})
	case widgets.WidgetToggle:
		current := field.Value == "true"
		on, err := e.driver.Confirm(ctx, ConfirmConfig{
			Message: field.Label,
			Default: current,
			Help:    help,
		})
		if err != nil {
			return "", err
		}
		// Accepting the default of an unset flag leaves it unset.
		if !field.Present && on == current {
			return field.Value, nil
		}
		return strconv.FormatBool(on), nil
	default:
		return e.driver.Input(ctx, InputConfig{
			Message:   field.Label,
			Default:   field.Value,
			Help:      help,
			Validator: validate,
		})
	}
}

func (e *Editor) info(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, e.theme.InfoPrefix+msg)
}

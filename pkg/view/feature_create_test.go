package view

import (
	"errors"
	"testing"

	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

func TestFeatureCreatePageToggle(t *testing.T) {
	page := NewFeatureCreatePage("checkout")
	page.Apply(map[string]string{
		"description": " New checkout ",
		"strategy":    "gradualRollout",
	})

	toggle, err := page.Toggle(definitions())
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if toggle.Name != "checkout" || toggle.Description != "New checkout" || toggle.Enabled {
		t.Fatalf("unexpected toggle %+v", toggle)
	}
	if len(toggle.Strategies) != 1 || toggle.Strategies[0].Name != "gradualRollout" {
		t.Fatalf("strategies = %+v", toggle.Strategies)
	}
}

func TestFeatureCreatePageDefaultsStrategy(t *testing.T) {
	page := NewFeatureCreatePage("")
	page.Apply(map[string]string{"name": "banner", "strategy": ""})

	toggle, err := page.Toggle(nil)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if toggle.Strategies[0].Name != "default" {
		t.Fatalf("strategy = %q", toggle.Strategies[0].Name)
	}
}

func TestFeatureCreatePageValidation(t *testing.T) {
	page := NewFeatureCreatePage("a?b")
	page.Apply(map[string]string{"strategy": "nope"})

	defs := DefinitionsFunc(func(string) (strategy.Definition, bool) { return strategy.Definition{}, false })
	if _, err := page.Toggle(defs); !errors.Is(err, ErrInvalidToggle) {
		t.Fatalf("expected ErrInvalidToggle, got %v", err)
	}
	if len(page.Errors["name"]) != 1 || len(page.Errors["strategy"]) != 1 {
		t.Fatalf("errors = %v", page.Errors)
	}
	if page.Kind() != KindFeatureCreate || page.Kind().String() != "feature-create" {
		t.Fatalf("kind = %v", page.Kind())
	}
}

package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/view"
	"github.com/goliatone/go-toggleadmin/pkg/widgets"
)

func editorPage(t *testing.T) view.Page {
	t.Helper()
	defs := view.DefinitionsFunc(func(name string) (strategy.Definition, bool) {
		if name != "gradualRollout" {
			return strategy.Definition{}, false
		}
		return strategy.Definition{
			Name:       name,
			Parameters: strategy.NewParameterSchema("rolloutPercentage", "groupId"),
		}, true
	})
	toggle := feature.Toggle{
		Name:    "f1",
		Enabled: true,
		Strategies: []strategy.Instance{
			{Name: "gradualRollout", Parameters: strategy.Values{"groupId": "A"}},
			{Name: "legacy"},
		},
	}
	composer := view.NewComposer(view.Props{
		ActiveTab:  "strategies",
		ToggleName: "f1",
		Features:   view.Loaded([]feature.Toggle{toggle}),
	}, view.Collaborators{
		FetchFeatureToggles: func() {},
		Permissions:         feature.NewPermissionSet(feature.UpdateFeature, feature.DeleteFeature),
		Definitions:         defs,
	})
	return composer.Compose()
}

func TestBuildPageDataToggleEditor(t *testing.T) {
	data, err := render.BuildPageData(editorPage(t), render.RenderOptions{
		Errors: map[string][]string{
			"groupId": {"must not be empty"},
			"":        {"save failed"},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if data.Kind != "toggle" || data.Toggle == nil {
		t.Fatalf("unexpected data %+v", data)
	}
	toggle := data.Toggle
	if toggle.Content == nil || toggle.Content.Kind != "strategies-editor" {
		t.Fatalf("content = %+v", toggle.Content)
	}
	cards := toggle.Content.Cards
	if len(cards) != 2 {
		t.Fatalf("cards = %d", len(cards))
	}
	if cards[0].Action != "/features/f1/strategies/0" || cards[1].RemoveAction != "/features/f1/strategies/1/remove" {
		t.Fatalf("card actions = %q / %q", cards[0].Action, cards[1].RemoveAction)
	}
	if cards[1].State != "missing" || cards[1].CreatePath != "/strategies/create?name=legacy" {
		t.Fatalf("missing card = %+v", cards[1])
	}

	wantFields := []render.FieldData{
		{Name: "rolloutPercentage", Label: "rolloutPercentage", Widget: "input"},
		{Name: "groupId", Label: "groupId", Value: "A", Present: true, Widget: "input", Errors: []string{"must not be empty"}},
	}
	if diff := cmp.Diff(wantFields, cards[0].Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"save failed"}, data.Errors); diff != "" {
		t.Fatalf("page errors mismatch (-want +got):\n%s", diff)
	}
	if toggle.Archive == nil || !toggle.Archive.Enabled || toggle.Archive.Action != "/features/f1/archive" {
		t.Fatalf("archive = %+v", toggle.Archive)
	}
	if toggle.Revive != nil {
		t.Fatalf("revive must be hidden in features mode")
	}
}

func TestBuildPageDataTranslatesLabels(t *testing.T) {
	translator := render.TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
		if locale == "es" && key == "tabs.history" {
			return "Historial", nil
		}
		return "", nil
	})
	data, err := render.BuildPageData(editorPage(t), render.RenderOptions{Locale: "es", Translator: translator})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	labels := map[string]string{}
	for _, tab := range data.Toggle.Tabs {
		labels[tab.Slug] = tab.Label
	}
	if labels["history"] != "Historial" || labels["variants"] != "Variants" {
		t.Fatalf("labels = %v", labels)
	}
}

func TestBuildPageDataStrategyCreate(t *testing.T) {
	page := view.NewStrategyCreatePage("legacy")
	data, err := render.BuildPageData(page, render.RenderOptions{
		Errors: map[string][]string{"name": {"already exists"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if data.Create == nil || data.Create.Action != "/strategies" {
		t.Fatalf("create = %+v", data.Create)
	}
	first := data.Create.Fields[0]
	if first.Name != "name" || first.Value != "legacy" || len(first.Errors) != 1 {
		t.Fatalf("first field = %+v", first)
	}
}

func TestBuildPageDataFeatureCreate(t *testing.T) {
	page := view.NewFeatureCreatePage("checkout")
	data, err := render.BuildPageData(page, render.RenderOptions{
		Errors: map[string][]string{"strategy": {"unknown strategy"}, "_": {"try again"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if data.Kind != "feature-create" || data.Create.Action != "/features" || data.Create.Submit != "Create toggle" {
		t.Fatalf("create = %+v", data.Create)
	}
	last := data.Create.Fields[len(data.Create.Fields)-1]
	if last.Name != "strategy" || last.Value != "default" || len(last.Errors) != 1 {
		t.Fatalf("strategy field = %+v", last)
	}
	if len(data.Errors) != 1 {
		t.Fatalf("page errors = %v", data.Errors)
	}
}

func TestBuildPageDataRejectsNil(t *testing.T) {
	if _, err := render.BuildPageData(nil, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil page")
	}
}

func TestBuildPageDataResolvesWidgets(t *testing.T) {
	page := view.NewFeatureCreatePage("checkout")

	data, err := render.BuildPageData(page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := map[string]string{}
	for _, field := range data.Create.Fields {
		got[field.Name] = field.Widget
	}
	want := map[string]string{"name": "input", "description": "textarea", "strategy": "input"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("widgets mismatch (-want +got):\n%s", diff)
	}

	custom := widgets.NewRegistry()
	custom.Register("markdown", 100, func(tmpl strategy.ParameterTemplate) bool { return tmpl.Type == "text" })
	data, err = render.BuildPageData(page, render.RenderOptions{Widgets: custom})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if widget := data.Create.Fields[1].Widget; widget != "markdown" {
		t.Fatalf("description widget = %q", widget)
	}
}

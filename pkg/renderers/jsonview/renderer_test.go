package jsonview_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/renderers/jsonview"
	"github.com/goliatone/go-toggleadmin/pkg/testsupport"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

func TestRenderer_ToggleList(t *testing.T) {
	list := view.Loaded([]feature.Toggle{testsupport.Toggle("checkout")})
	page := view.NewToggleListPage(view.ModeFeatures, list, feature.NewPermissionSet(feature.CreateFeature))

	output, err := jsonview.New().Render(testsupport.Context(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got render.PageData
	if err := json.Unmarshal(output, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := render.PageData{
		Kind:  "toggle-list",
		Title: "Feature toggles",
		List: &render.ToggleListData{
			Mode:      "features",
			State:     "loaded",
			CanCreate: true,
			Toggles: []view.ToggleSummary{{
				Name:        "checkout",
				Description: "Checkout redesign",
				Enabled:     true,
				Strategies:  2,
				Path:        "/features/strategies/checkout",
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_LoadingToggleIsExplicit(t *testing.T) {
	page := view.NewComposer(view.Props{ToggleName: "checkout"}, view.Collaborators{FetchArchive: func() {}}).Compose()

	output, err := jsonview.New(jsonview.WithIndent("  ")).Render(testsupport.Context(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(output, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	toggle, _ := got["toggle"].(map[string]any)
	if toggle["status"] != "loading" || toggle["mode"] != "archive" {
		t.Fatalf("toggle = %v", toggle)
	}
}

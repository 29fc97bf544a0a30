package view

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

type recorder struct {
	fetches  int
	archives int
	toggles  []bool
	removed  []string
	revived  []string
	edits    []feature.Toggle
	paths    []string
}

func (r *recorder) collaborators(perms ...feature.Permission) Collaborators {
	return Collaborators{
		FetchFeatureToggles: func() { r.fetches++ },
		ToggleFeature:       func(enabled bool, name string) { r.toggles = append(r.toggles, enabled) },
		RemoveFeatureToggle: func(name string) { r.removed = append(r.removed, name) },
		EditFeatureToggle:   func(t feature.Toggle) { r.edits = append(r.edits, t) },
		Permissions:         feature.NewPermissionSet(perms...),
		Definitions:         definitions(),
		Navigator:           NavigatorFunc(func(path string) { r.paths = append(r.paths, path) }),
	}
}

func (r *recorder) archiveCollaborators(perms ...feature.Permission) Collaborators {
	return Collaborators{
		FetchArchive: func() { r.archives++ },
		Revive:       func(name string) { r.revived = append(r.revived, name) },
		Permissions:  feature.NewPermissionSet(perms...),
		Definitions:  definitions(),
		Navigator:    NavigatorFunc(func(path string) { r.paths = append(r.paths, path) }),
	}
}

func definitions() Definitions {
	known := map[string]strategy.Definition{
		"gradualRollout": {
			Name:       "gradualRollout",
			Parameters: strategy.NewParameterSchema("rolloutPercentage", "stickiness", "groupId"),
		},
		"default": {Name: "default"},
	}
	return DefinitionsFunc(func(name string) (strategy.Definition, bool) {
		def, ok := known[name]
		return def, ok
	})
}

func sampleToggle() feature.Toggle {
	return feature.Toggle{
		Name:        "f1",
		Description: "checkout",
		Enabled:     true,
		Strategies: []strategy.Instance{
			{ID: "s1", Name: "gradualRollout", Parameters: strategy.Values{"groupId": "A", "rolloutPercentage": "10"}},
			{ID: "s2", Name: "legacy"},
		},
	}
}

func TestComposerUnknownTabRendersStrategies(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{
		ActiveTab:  "settings",
		ToggleName: "f1",
		Features:   Loaded([]feature.Toggle{sampleToggle()}),
	}, rec.collaborators())

	page := c.Compose()
	if page.Status != StatusReady {
		t.Fatalf("status = %v", page.Status)
	}
	if page.ActiveTab != TabStrategies {
		t.Fatalf("active tab = %v", page.ActiveTab)
	}
	if _, ok := page.Content.(StrategiesReadOnly); !ok {
		t.Fatalf("expected read-only strategies without UPDATE_FEATURE, got %T", page.Content)
	}
	if page.Switch.Enabled || page.Description.Editable {
		t.Fatalf("switch and description must be locked without UPDATE_FEATURE")
	}
}

func TestComposerEditorWithUpdatePermission(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{
		ActiveTab:  "strategies",
		ToggleName: "f1",
		Features:   Loaded([]feature.Toggle{sampleToggle()}),
	}, rec.collaborators(feature.UpdateFeature))

	page := c.Compose()
	editor, ok := page.Content.(StrategiesEditor)
	if !ok {
		t.Fatalf("expected editor, got %T", page.Content)
	}
	if len(editor.Cards) != 2 {
		t.Fatalf("cards = %d", len(editor.Cards))
	}
	if editor.Cards[0].State != CardConfigure || editor.Cards[1].State != CardMissing {
		t.Fatalf("card states = %v, %v", editor.Cards[0].State, editor.Cards[1].State)
	}

	var labels []string
	for field := range editor.Cards[0].Fields() {
		labels = append(labels, field.Label)
	}
	if diff := cmp.Diff([]string{"rolloutPercentage", "stickiness", "groupId"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	editor.Cards[0].Form().Edit("groupId", "B")
	if len(rec.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(rec.edits))
	}
	got := rec.edits[0].Strategies[0]
	want := strategy.Instance{ID: "s1", Name: "gradualRollout", Parameters: strategy.Values{"groupId": "B", "rolloutPercentage": "10"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("strategy mismatch (-want +got):\n%s", diff)
	}

	editor.Cards[1].Remove()
	if len(rec.edits) != 2 {
		t.Fatalf("edits = %d, want 2", len(rec.edits))
	}
	last := rec.edits[1]
	if len(last.Strategies) != 1 || last.Strategies[0].Parameters["groupId"] != "B" {
		t.Fatalf("remove lost the earlier edit: %+v", last.Strategies)
	}
}

func TestComposerLoadingVersusNotFound(t *testing.T) {
	rec := &recorder{}
	loading := NewComposer(Props{ToggleName: "f1"}, rec.collaborators(feature.CreateFeature))
	if got := loading.Compose().Status; got != StatusLoading {
		t.Fatalf("not loaded list: status = %v, want loading", got)
	}

	empty := NewComposer(Props{ToggleName: "f1", Features: Loaded(nil)}, rec.collaborators(feature.CreateFeature))
	page := empty.Compose()
	if page.Status != StatusNotFound {
		t.Fatalf("loaded empty list: status = %v, want not found", page.Status)
	}
	if page.CreatePath != "/features/create?name=f1" {
		t.Fatalf("CreatePath = %q", page.CreatePath)
	}

	denied := NewComposer(Props{ToggleName: "f1", Features: Loaded(nil)}, rec.collaborators())
	if got := denied.Compose().CreatePath; got != "" {
		t.Fatalf("create link shown without CREATE_FEATURE: %q", got)
	}
}

func TestComposerMountFetchesOnce(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1"}, rec.collaborators())
	if !c.Mount() {
		t.Fatalf("first mount should fetch")
	}
	c.Mount()
	c.Compose()
	if rec.fetches != 1 {
		t.Fatalf("fetches = %d, want 1", rec.fetches)
	}

	loaded := NewComposer(Props{ToggleName: "f1", Features: Loaded(nil)}, rec.collaborators())
	if loaded.Mount() {
		t.Fatalf("loaded list must not be fetched again")
	}

	archive := NewComposer(Props{ToggleName: "f1"}, rec.archiveCollaborators())
	if archive.Mode() != ModeArchive {
		t.Fatalf("mode = %v", archive.Mode())
	}
	archive.Mount()
	if rec.archives != 1 || rec.fetches != 1 {
		t.Fatalf("archive fetches = %d, feature fetches = %d", rec.archives, rec.fetches)
	}
}

func TestComposerFetchResultReplacesList(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1"}, rec.collaborators())
	c.Mount()
	if got := c.Compose().Status; got != StatusLoading {
		t.Fatalf("status while fetching = %v, want loading", got)
	}

	c.SetFeatures(Loaded([]feature.Toggle{sampleToggle()}))
	if got := c.Compose().Status; got != StatusReady {
		t.Fatalf("status after fetch = %v, want ready", got)
	}
	if c.Mount() || rec.fetches != 1 {
		t.Fatalf("remount must not fetch again, fetches = %d", rec.fetches)
	}
}

func TestComposerArchiveRequiresConfirmation(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})},
		rec.collaborators(feature.DeleteFeature))

	archived, err := c.Archive(func() bool { return false })
	if err != nil || archived {
		t.Fatalf("declined archive: archived=%v err=%v", archived, err)
	}
	if len(rec.removed) != 0 || len(rec.paths) != 0 {
		t.Fatalf("declined archive must do nothing")
	}

	archived, err = c.Archive(func() bool { return true })
	if err != nil || !archived {
		t.Fatalf("confirmed archive: archived=%v err=%v", archived, err)
	}
	if diff := cmp.Diff([]string{"f1"}, rec.removed); diff != "" {
		t.Fatalf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/features"}, rec.paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestComposerArchiveDenied(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})}, rec.collaborators())
	if _, err := c.Archive(func() bool { return true }); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if page := c.Compose(); page.Archive.Enabled || !page.Archive.Visible {
		t.Fatalf("archive button = %+v", page.Archive)
	}
}

func TestComposerReviveNavigatesToFeatures(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})},
		rec.archiveCollaborators(feature.UpdateFeature))

	page := c.Compose()
	if !page.Revive.Visible || page.Archive.Visible {
		t.Fatalf("archive mode buttons: archive=%+v revive=%+v", page.Archive, page.Revive)
	}
	if _, ok := page.Content.(StrategiesReadOnly); !ok {
		t.Fatalf("archived toggles render read-only, got %T", page.Content)
	}
	if err := c.Revive(); err != nil {
		t.Fatalf("Revive: %v", err)
	}
	if diff := cmp.Diff([]string{"f1"}, rec.revived); diff != "" {
		t.Fatalf("revived mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/features"}, rec.paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if err := c.Toggle(); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("toggle in archive: %v", err)
	}
}

func TestComposerToggleSendsInverse(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})},
		rec.collaborators(feature.UpdateFeature))
	if err := c.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if diff := cmp.Diff([]bool{false}, rec.toggles); diff != "" {
		t.Fatalf("toggles mismatch (-want +got):\n%s", diff)
	}
}

func TestComposerUpdateDescriptionCopiesToggle(t *testing.T) {
	rec := &recorder{}
	owned := sampleToggle()
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{owned})},
		rec.collaborators(feature.UpdateFeature))

	if err := c.UpdateDescription("new checkout flow"); err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}
	if len(rec.edits) != 1 {
		t.Fatalf("edits = %d", len(rec.edits))
	}
	sent := rec.edits[0]
	if sent.Description != "new checkout flow" {
		t.Fatalf("description = %q", sent.Description)
	}
	for _, s := range sent.Strategies {
		if s.ID != "" {
			t.Fatalf("strategy id kept on the copy: %q", s.ID)
		}
	}
	if owned.Strategies[0].ID != "s1" || owned.Description != "checkout" {
		t.Fatalf("owned toggle was mutated: %+v", owned)
	}
}

func TestComposerGoToTab(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})}, rec.collaborators())
	c.GoToTab(TabHistory)

	archive := NewComposer(Props{ToggleName: "f1"}, rec.archiveCollaborators())
	archive.GoToTab(TabMetrics)

	if diff := cmp.Diff([]string{"/features/history/f1", "/archive/view/f1"}, rec.paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestComposerTabContentVariants(t *testing.T) {
	history := []feature.Event{{ID: "e1", Toggle: "f1", Type: feature.EventCreated}}
	cases := []struct {
		tab  string
		want Tab
	}{
		{"view", TabMetrics},
		{"variants", TabVariants},
		{"history", TabHistory},
	}
	for _, tc := range cases {
		rec := &recorder{}
		collab := rec.collaborators(feature.UpdateFeature)
		collab.History = func(string) []feature.Event { return history }
		page := NewComposer(Props{ActiveTab: tc.tab, ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})}, collab).Compose()

		if page.Content.Tab() != tc.want {
			t.Fatalf("%s: content tab = %v", tc.tab, page.Content.Tab())
		}
		switch content := page.Content.(type) {
		case HistoryView:
			if len(content.Events) != 1 {
				t.Fatalf("history events = %d", len(content.Events))
			}
		case VariantsView:
			if !content.Editable {
				t.Fatalf("variants should be editable with UPDATE_FEATURE")
			}
		}
		active := 0
		for _, link := range page.Tabs {
			if link.Active {
				active++
			}
		}
		if active != 1 {
			t.Fatalf("%s: %d active tabs", tc.tab, active)
		}
	}
}

func TestComposerAddStrategy(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})},
		rec.collaborators(feature.UpdateFeature))

	instance, err := c.AddStrategy("gradualRollout")
	if err != nil {
		t.Fatalf("AddStrategy: %v", err)
	}
	want := strategy.Values{"rolloutPercentage": "", "stickiness": "", "groupId": ""}
	if diff := cmp.Diff(want, instance.Parameters); diff != "" {
		t.Fatalf("parameters mismatch (-want +got):\n%s", diff)
	}
	if got := len(rec.edits[0].Strategies); got != 3 {
		t.Fatalf("strategies = %d", got)
	}
	if _, err := c.AddStrategy("nope"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestComposerStaleCardReportsError(t *testing.T) {
	rec := &recorder{}
	collab := rec.collaborators(feature.UpdateFeature)
	var errs []error
	collab.OnError = func(err error) { errs = append(errs, err) }
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})}, collab)

	editor := c.Compose().Content.(StrategiesEditor)
	editor.Cards[0].Remove()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	editor.Cards[1].Remove()
	if len(errs) != 1 || !errors.Is(errs[0], ErrStrategyIndex) {
		t.Fatalf("expected ErrStrategyIndex, got %v", errs)
	}
	if len(rec.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(rec.edits))
	}
}

func TestComposerStrategyIndexOutOfRange(t *testing.T) {
	rec := &recorder{}
	c := NewComposer(Props{ToggleName: "f1", Features: Loaded([]feature.Toggle{sampleToggle()})},
		rec.collaborators(feature.UpdateFeature))
	if err := c.UpdateStrategy(5, strategy.Instance{}); !errors.Is(err, ErrStrategyIndex) {
		t.Fatalf("expected ErrStrategyIndex, got %v", err)
	}
	if err := c.RemoveStrategy(-1); !errors.Is(err, ErrStrategyIndex) {
		t.Fatalf("expected ErrStrategyIndex, got %v", err)
	}
}

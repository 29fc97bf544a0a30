package view

import "testing"

func TestParseTabDefaultsToStrategies(t *testing.T) {
	cases := map[string]Tab{
		"":           TabStrategies,
		"strategies": TabStrategies,
		"view":       TabMetrics,
		"VARIANTS":   TabVariants,
		" history ":  TabHistory,
		"settings":   TabStrategies,
		"metrics":    TabStrategies,
	}
	for raw, want := range cases {
		if got := ParseTab(raw); got != want {
			t.Errorf("ParseTab(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestTabSlugRoundTrip(t *testing.T) {
	for _, tab := range Tabs() {
		if got := ParseTab(tab.Slug()); got != tab {
			t.Fatalf("ParseTab(%q) = %v, want %v", tab.Slug(), got, tab)
		}
	}
}

func TestTogglePathEscapesName(t *testing.T) {
	got := ModeArchive.TogglePath(TabHistory, "new checkout")
	if want := "/archive/history/new%20checkout"; got != want {
		t.Fatalf("TogglePath = %q, want %q", got, want)
	}
	got = ModeFeatures.TogglePath(TabMetrics, "f1")
	if want := "/features/view/f1"; got != want {
		t.Fatalf("TogglePath = %q, want %q", got, want)
	}
}

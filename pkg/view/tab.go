package view

import "strings"

// Tab is the closed set of sections shown for a toggle.
type Tab int

const (
	TabStrategies Tab = iota
	TabMetrics
	TabVariants
	TabHistory
)

// Tabs returns every tab in display order.
func Tabs() []Tab {
	return []Tab{TabStrategies, TabMetrics, TabVariants, TabHistory}
}

// ParseTab maps a URL segment to a tab. Unknown values select TabStrategies.
func ParseTab(raw string) Tab {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "view":
		return TabMetrics
	case "variants":
		return TabVariants
	case "history":
		return TabHistory
	default:
		return TabStrategies
	}
}

// Slug is the URL segment for the tab.
func (t Tab) Slug() string {
	switch t {
	case TabStrategies:
		return "strategies"
	case TabMetrics:
		return "view"
	case TabVariants:
		return "variants"
	case TabHistory:
		return "history"
	default:
		return "strategies"
	}
}

// Label is the human-facing tab title.
func (t Tab) Label() string {
	switch t {
	case TabStrategies:
		return "Strategies"
	case TabMetrics:
		return "Metrics"
	case TabVariants:
		return "Variants"
	case TabHistory:
		return "History"
	default:
		return "Strategies"
	}
}

func (t Tab) String() string {
	return t.Slug()
}

// TabLink is a rendered tab header.
type TabLink struct {
	Tab    Tab    `json:"-"`
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

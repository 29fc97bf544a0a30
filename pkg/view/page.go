package view

import (
	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// PageKind identifies the page variant for renderers.
type PageKind int

const (
	KindToggle PageKind = iota
	KindToggleList
	KindStrategyList
	KindStrategyCreate
	KindFeatureCreate
)

func (k PageKind) String() string {
	switch k {
	case KindToggle:
		return "toggle"
	case KindToggleList:
		return "toggle-list"
	case KindStrategyList:
		return "strategy-list"
	case KindStrategyCreate:
		return "strategy-create"
	case KindFeatureCreate:
		return "feature-create"
	default:
		return "unknown"
	}
}

// Page is a composed, render-ready view model.
type Page interface {
	Kind() PageKind
	Title() string
}

// Status describes what the toggle page can show.
type Status int

const (
	StatusLoading Status = iota
	StatusNotFound
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusNotFound:
		return "not-found"
	default:
		return "ready"
	}
}

// DescriptionField is the toggle description input.
type DescriptionField struct {
	Value    string
	Editable bool
}

// SwitchState is the enabled/disabled switch.
type SwitchState struct {
	Checked bool
	Enabled bool
}

// Label is the text next to the switch.
func (s SwitchState) Label() string {
	if s.Checked {
		return "Enabled"
	}
	return "Disabled"
}

// Button is an action affordance.
type Button struct {
	Label   string
	Visible bool
	Enabled bool
}

// TogglePage is the detail view of a single toggle.
type TogglePage struct {
	Mode       Mode
	Status     Status
	ToggleName string
	// CreatePath is set on StatusNotFound when the user may create toggles.
	CreatePath string

	Toggle      feature.Toggle
	ActiveTab   Tab
	Tabs        []TabLink
	Content     TabContent
	Description DescriptionField
	Switch      SwitchState
	Archive     Button
	Revive      Button
}

func (TogglePage) Kind() PageKind { return KindToggle }

func (p TogglePage) Title() string { return p.ToggleName }

// ToggleSummary is one row of the toggle list.
type ToggleSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	Strategies  int    `json:"strategies"`
	Path        string `json:"path"`
}

// ToggleListPage lists toggles of a mode.
type ToggleListPage struct {
	Mode      Mode
	State     LoadState
	Toggles   []ToggleSummary
	CanCreate bool
}

func (ToggleListPage) Kind() PageKind { return KindToggleList }

func (p ToggleListPage) Title() string {
	if p.Mode == ModeArchive {
		return "Archived toggles"
	}
	return "Feature toggles"
}

// NewToggleListPage builds the list page for list.
func NewToggleListPage(mode Mode, list ToggleList, perms feature.PermissionChecker) ToggleListPage {
	page := ToggleListPage{Mode: mode, State: list.State}
	if perms != nil {
		page.CanCreate = mode == ModeFeatures && perms.HasPermission(feature.CreateFeature)
	}
	for _, item := range list.Items {
		page.Toggles = append(page.Toggles, ToggleSummary{
			Name:        item.Name,
			Description: item.Description,
			Enabled:     item.Enabled,
			Strategies:  len(item.Strategies),
			Path:        mode.TogglePath(TabStrategies, item.Name),
		})
	}
	return page
}

// StrategyListPage lists strategy definitions.
type StrategyListPage struct {
	Definitions []strategy.Definition
	CanCreate   bool
	CanDelete   bool
}

func (StrategyListPage) Kind() PageKind { return KindStrategyList }

func (StrategyListPage) Title() string { return "Strategies" }

// NewStrategyListPage builds the definition list page.
func NewStrategyListPage(defs []strategy.Definition, perms feature.PermissionChecker) StrategyListPage {
	page := StrategyListPage{Definitions: defs}
	if perms != nil {
		page.CanCreate = perms.HasPermission(feature.CreateStrategy)
		page.CanDelete = perms.HasPermission(feature.DeleteStrategy)
	}
	return page
}

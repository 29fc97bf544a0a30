package view

import "github.com/goliatone/go-toggleadmin/pkg/feature"

// TabContent is the sub-view shown under the tab bar. The set of
// implementations is closed; switch over the concrete types.
type TabContent interface {
	Tab() Tab
	tabContent()
}

// StrategiesEditor lets the user edit strategy parameters.
type StrategiesEditor struct {
	Toggle feature.Toggle
	Cards  []StrategyCard
}

// StrategiesReadOnly lists strategies without edit affordances.
type StrategiesReadOnly struct {
	Toggle feature.Toggle
	Cards  []StrategyCard
}

// MetricsView shows usage information for the toggle.
type MetricsView struct {
	Toggle feature.Toggle
}

// VariantsView lists the toggle variants.
type VariantsView struct {
	Toggle   feature.Toggle
	Editable bool
}

// HistoryView lists the change log of the toggle.
type HistoryView struct {
	ToggleName string
	Events     []feature.Event
}

func (StrategiesEditor) Tab() Tab   { return TabStrategies }
func (StrategiesReadOnly) Tab() Tab { return TabStrategies }
func (MetricsView) Tab() Tab        { return TabMetrics }
func (VariantsView) Tab() Tab       { return TabVariants }
func (HistoryView) Tab() Tab        { return TabHistory }

func (StrategiesEditor) tabContent()   {}
func (StrategiesReadOnly) tabContent() {}
func (MetricsView) tabContent()        {}
func (VariantsView) tabContent()       {}
func (HistoryView) tabContent()        {}

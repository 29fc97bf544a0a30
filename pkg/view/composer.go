package view

import (
	"errors"
	"net/url"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

var (
	ErrToggleNotFound   = errors.New("view: toggle not found")
	ErrPermissionDenied = errors.New("view: permission denied")
	ErrStrategyIndex    = errors.New("view: strategy index out of range")
	ErrReadOnly         = errors.New("view: archived toggles are read-only")
	ErrUnknownStrategy  = errors.New("view: unknown strategy")
)

// Props are the inputs the owner passes when showing a toggle page.
// ActiveTab is the raw URL segment; it is parsed with ParseTab.
type Props struct {
	ActiveTab  string
	ToggleName string
	Features   ToggleList
}

// Composer assembles the toggle page and dispatches user actions to the
// collaborators. A Composer is built per request or per screen and is not
// safe for concurrent use.
type Composer struct {
	props   Props
	collab  Collaborators
	mode    Mode
	mounted bool
}

// NewComposer creates a composer. The mode is ModeFeatures when the features
// loader is supplied and ModeArchive otherwise.
func NewComposer(props Props, collab Collaborators) *Composer {
	mode := ModeArchive
	if collab.FetchFeatureToggles != nil {
		mode = ModeFeatures
	}
	return &Composer{props: props, collab: collab, mode: mode}
}

// Mode reports which list the page operates on.
func (c *Composer) Mode() Mode { return c.mode }

// ActiveTab is the parsed tab of the page.
func (c *Composer) ActiveTab() Tab { return ParseTab(c.props.ActiveTab) }

// Mount runs the first-mount side effect: when the list was never loaded,
// exactly one fetch is triggered through the mode's loader. Later calls do
// nothing. It reports whether a fetch was issued.
func (c *Composer) Mount() bool {
	if c.mounted {
		return false
	}
	c.mounted = true
	if c.props.Features.State != LoadStateNotLoaded {
		return false
	}

	fetch := c.collab.FetchArchive
	if c.mode == ModeFeatures {
		fetch = c.collab.FetchFeatureToggles
	}
	if fetch == nil {
		return false
	}
	c.props.Features.State = LoadStateLoading
	fetch()
	return true
}

// SetFeatures replaces the list, typically once a fetch completes.
func (c *Composer) SetFeatures(list ToggleList) {
	c.props.Features = list
}

// Compose builds the page for the current props.
func (c *Composer) Compose() TogglePage {
	name := c.props.ToggleName
	page := TogglePage{
		Mode:       c.mode,
		ToggleName: name,
		ActiveTab:  c.ActiveTab(),
	}

	toggle, ok := c.props.Features.Find(name)
	if !ok {
		if c.props.Features.State != LoadStateLoaded {
			page.Status = StatusLoading
			return page
		}
		page.Status = StatusNotFound
		if c.collab.can(feature.CreateFeature) {
			page.CreatePath = CreateFeaturePath(name)
		}
		return page
	}

	editable := c.editable()
	page.Status = StatusReady
	page.Toggle = toggle
	page.Tabs = c.tabLinks(page.ActiveTab)
	page.Content = c.content(page.ActiveTab, toggle)
	page.Description = DescriptionField{Value: toggle.Description, Editable: editable}
	page.Switch = SwitchState{Checked: toggle.Enabled, Enabled: editable}

	switch c.mode {
	case ModeFeatures:
		page.Archive = Button{Label: "Archive", Visible: true, Enabled: c.collab.can(feature.DeleteFeature)}
	case ModeArchive:
		page.Revive = Button{Label: "Revive", Visible: true, Enabled: c.collab.can(feature.UpdateFeature)}
	}
	return page
}

// CreateFeaturePath links to toggle creation pre-filled with name.
func CreateFeaturePath(name string) string {
	return "/features/create?name=" + url.QueryEscape(name)
}

func (c *Composer) editable() bool {
	return c.mode == ModeFeatures && c.collab.can(feature.UpdateFeature)
}

func (c *Composer) tabLinks(active Tab) []TabLink {
	tabs := Tabs()
	links := make([]TabLink, 0, len(tabs))
	for _, tab := range tabs {
		links = append(links, TabLink{
			Tab:    tab,
			Slug:   tab.Slug(),
			Label:  tab.Label(),
			Path:   c.mode.TogglePath(tab, c.props.ToggleName),
			Active: tab == active,
		})
	}
	return links
}

func (c *Composer) content(tab Tab, toggle feature.Toggle) TabContent {
	switch tab {
	case TabStrategies:
		if c.editable() {
			return StrategiesEditor{Toggle: toggle, Cards: c.cards(toggle, true)}
		}
		return StrategiesReadOnly{Toggle: toggle, Cards: c.cards(toggle, false)}
	case TabMetrics:
		return MetricsView{Toggle: toggle}
	case TabVariants:
		return VariantsView{Toggle: toggle, Editable: c.editable()}
	case TabHistory:
		var events []feature.Event
		if c.collab.History != nil {
			events = c.collab.History(toggle.Name)
		}
		return HistoryView{ToggleName: toggle.Name, Events: events}
	default:
		return StrategiesReadOnly{Toggle: toggle, Cards: c.cards(toggle, false)}
	}
}

func (c *Composer) cards(toggle feature.Toggle, editable bool) []StrategyCard {
	cards := make([]StrategyCard, 0, len(toggle.Strategies))
	for i, instance := range toggle.Strategies {
		def, _ := c.collab.definition(instance.Name)

		var (
			update strategy.UpdateFunc
			remove func()
		)
		if editable {
			index := i
			update = func(next strategy.Instance) { c.collab.fail(c.UpdateStrategy(index, next)) }
			remove = func() { c.collab.fail(c.RemoveStrategy(index)) }
		}
		card := NewStrategyCard(instance, def, update, remove)
		card.Index = i
		cards = append(cards, card)
	}
	return cards
}

// GoToTab navigates to tab and returns the pushed path.
func (c *Composer) GoToTab(tab Tab) string {
	path := c.mode.TogglePath(tab, c.props.ToggleName)
	c.collab.push(path)
	return path
}

// Toggle flips the enabled state.
func (c *Composer) Toggle() error {
	toggle, err := c.writable()
	if err != nil {
		return err
	}
	if c.collab.ToggleFeature != nil {
		c.collab.ToggleFeature(!toggle.Enabled, toggle.Name)
	}
	return nil
}

// Archive removes the live toggle after confirm returns true and then
// navigates to the features list. A nil confirm never archives. It reports
// whether the toggle was archived.
func (c *Composer) Archive(confirm func() bool) (bool, error) {
	toggle, ok := c.props.Features.Find(c.props.ToggleName)
	if !ok {
		return false, ErrToggleNotFound
	}
	if c.mode != ModeFeatures {
		return false, ErrReadOnly
	}
	if !c.collab.can(feature.DeleteFeature) {
		return false, ErrPermissionDenied
	}
	if confirm == nil || !confirm() {
		return false, nil
	}
	if c.collab.RemoveFeatureToggle != nil {
		c.collab.RemoveFeatureToggle(toggle.Name)
	}
	c.collab.push(ModeFeatures.Root())
	return true, nil
}

// Revive restores an archived toggle and navigates to the features list.
func (c *Composer) Revive() error {
	toggle, ok := c.props.Features.Find(c.props.ToggleName)
	if !ok {
		return ErrToggleNotFound
	}
	if c.mode != ModeArchive {
		return ErrReadOnly
	}
	if !c.collab.can(feature.UpdateFeature) {
		return ErrPermissionDenied
	}
	if c.collab.Revive != nil {
		c.collab.Revive(toggle.Name)
	}
	c.collab.push(ModeFeatures.Root())
	return nil
}

// UpdateDescription sends a copy of the toggle with the new description and
// cleared strategy IDs. The owned toggle is left untouched.
func (c *Composer) UpdateDescription(description string) error {
	toggle, err := c.writable()
	if err != nil {
		return err
	}
	c.edit(toggle.WithDescription(description))
	return nil
}

// UpdateStrategy replaces the strategy at index.
func (c *Composer) UpdateStrategy(index int, instance strategy.Instance) error {
	toggle, err := c.writable()
	if err != nil {
		return err
	}
	next, ok := toggle.WithStrategy(index, instance)
	if !ok {
		return ErrStrategyIndex
	}
	if c.collab.UpdateStrategy != nil {
		c.collab.UpdateStrategy(toggle.Name, index, instance)
		c.replace(next)
		return nil
	}
	c.edit(next)
	return nil
}

// RemoveStrategy drops the strategy at index.
func (c *Composer) RemoveStrategy(index int) error {
	toggle, err := c.writable()
	if err != nil {
		return err
	}
	next, ok := toggle.WithoutStrategy(index)
	if !ok {
		return ErrStrategyIndex
	}
	if c.collab.RemoveStrategy != nil {
		c.collab.RemoveStrategy(toggle.Name, index)
		c.replace(next)
		return nil
	}
	c.edit(next)
	return nil
}

// AddStrategy appends a new instance of the named strategy type with every
// declared parameter present and empty.
func (c *Composer) AddStrategy(name string) (strategy.Instance, error) {
	toggle, err := c.writable()
	if err != nil {
		return strategy.Instance{}, err
	}
	def, ok := c.collab.definition(name)
	if !ok {
		return strategy.Instance{}, ErrUnknownStrategy
	}
	instance := strategy.Instance{Name: def.Name, Parameters: strategy.Values{}}
	for key := range def.Parameters.All() {
		instance.Parameters[key] = ""
	}
	next := toggle.Clone()
	next.Strategies = append(next.Strategies, instance)
	c.edit(next)
	return instance, nil
}

func (c *Composer) writable() (feature.Toggle, error) {
	toggle, ok := c.props.Features.Find(c.props.ToggleName)
	if !ok {
		return feature.Toggle{}, ErrToggleNotFound
	}
	if c.mode != ModeFeatures {
		return feature.Toggle{}, ErrReadOnly
	}
	if !c.collab.can(feature.UpdateFeature) {
		return feature.Toggle{}, ErrPermissionDenied
	}
	return toggle, nil
}

func (c *Composer) edit(next feature.Toggle) {
	if c.collab.EditFeatureToggle != nil {
		c.collab.EditFeatureToggle(next)
	}
	c.replace(next)
}

// replace swaps the toggle in a copy of the list so later actions build on the
// latest value without writing into the owner's slice.
func (c *Composer) replace(next feature.Toggle) {
	items := make([]feature.Toggle, len(c.props.Features.Items))
	copy(items, c.props.Features.Items)
	for i := range items {
		if items[i].Name == next.Name {
			items[i] = next
		}
	}
	c.props.Features.Items = items
}

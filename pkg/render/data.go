package render

import (
	"fmt"
	"iter"
	"time"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/view"
	"github.com/goliatone/go-toggleadmin/pkg/widgets"
)

var defaultWidgets = widgets.NewRegistry()

// widgetsFor returns the widget registry of opts, or the built-in one.
func widgetsFor(opts RenderOptions) *widgets.Registry {
	if opts.Widgets != nil {
		return opts.Widgets
	}
	return defaultWidgets
}

// PageData is the serialisable form of a composed page shared by the HTML
// and JSON renderers. Exactly one of the page sections is set.
type PageData struct {
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	Flash  string   `json:"flash,omitempty"`
	Errors []string `json:"errors,omitempty"`

	Toggle     *ToggleData       `json:"toggle,omitempty"`
	List       *ToggleListData   `json:"list,omitempty"`
	Strategies *StrategyListData `json:"strategies,omitempty"`
	Create     *FormData         `json:"create,omitempty"`
}

type ToggleData struct {
	Mode        string       `json:"mode"`
	Status      string       `json:"status"`
	Name        string       `json:"name"`
	CreatePath  string       `json:"createPath,omitempty"`
	Description string       `json:"description,omitempty"`
	Editable    bool         `json:"editable"`
	Enabled     bool         `json:"enabled"`
	Switch      SwitchData   `json:"switch"`
	Archive     *ButtonData  `json:"archive,omitempty"`
	Revive      *ButtonData  `json:"revive,omitempty"`
	ActiveTab   string       `json:"activeTab"`
	Tabs        []TabData    `json:"tabs,omitempty"`
	Content     *ContentData `json:"content,omitempty"`
	Actions     ToggleAction `json:"actions"`
}

type ToggleAction struct {
	Toggle      string `json:"toggle,omitempty"`
	Description string `json:"description,omitempty"`
	AddStrategy string `json:"addStrategy,omitempty"`
}

type SwitchData struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
	Enabled bool   `json:"enabled"`
}

type ButtonData struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Action  string `json:"action"`
}

type TabData struct {
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

// ContentData is the active tab body. Kind is one of "strategies-editor",
// "strategies", "metrics", "variants" or "history".
type ContentData struct {
	Tab      string            `json:"tab"`
	Kind     string            `json:"kind"`
	Editable bool              `json:"editable"`
	Cards    []CardData        `json:"cards,omitempty"`
	Variants []feature.Variant `json:"variants,omitempty"`
	Events   []EventData       `json:"events,omitempty"`
	Metrics  *MetricsData      `json:"metrics,omitempty"`
}

type CardData struct {
	Index        int         `json:"index"`
	State        string      `json:"state"`
	Name         string      `json:"name"`
	Title        string      `json:"title"`
	Message      string      `json:"message,omitempty"`
	Description  string      `json:"description,omitempty"`
	CreatePath   string      `json:"createPath,omitempty"`
	Editable     bool        `json:"editable"`
	NoConfig     bool        `json:"noConfig"`
	Fields       []FieldData `json:"fields,omitempty"`
	Action       string      `json:"action,omitempty"`
	RemoveAction string      `json:"removeAction,omitempty"`
}

type FieldData struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Value       string   `json:"value"`
	Present     bool     `json:"present"`
	Type        string   `json:"type,omitempty"`
	Widget      string   `json:"widget"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

type EventData struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type MetricsData struct {
	Enabled    bool   `json:"enabled"`
	Strategies int    `json:"strategies"`
	Variants   int    `json:"variants"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

type ToggleListData struct {
	Mode      string               `json:"mode"`
	State     string               `json:"state"`
	CanCreate bool                 `json:"canCreate"`
	Toggles   []view.ToggleSummary `json:"toggles"`
}

type StrategyListData struct {
	CanCreate   bool             `json:"canCreate"`
	CanDelete   bool             `json:"canDelete"`
	Definitions []DefinitionData `json:"definitions"`
}

type DefinitionData struct {
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Parameters   []FieldData `json:"parameters,omitempty"`
	DeleteAction string      `json:"deleteAction,omitempty"`
}

// FormData is a create form: the strategy definition form or the new
// toggle form.
type FormData struct {
	Action string      `json:"action"`
	Submit string      `json:"submit"`
	Fields []FieldData `json:"fields"`
}

// BuildPageData converts page into its serialisable form. Field errors from
// opts are attached to matching fields; the rest become page errors.
func BuildPageData(page view.Page, opts RenderOptions) (PageData, error) {
	if page == nil {
		return PageData{}, fmt.Errorf("render: page is required")
	}
	data := PageData{
		Kind:  page.Kind().String(),
		Title: page.Title(),
		Flash: opts.Flash,
	}

	var fieldNames []string
	switch p := page.(type) {
	case view.TogglePage:
		data.Toggle = toggleData(p, opts)
		if data.Toggle.Content != nil {
			for _, card := range data.Toggle.Content.Cards {
				for _, field := range card.Fields {
					fieldNames = append(fieldNames, field.Name)
				}
			}
		}
	case *view.TogglePage:
		return BuildPageData(*p, opts)
	case view.ToggleListPage:
		data.List = &ToggleListData{
			Mode:      p.Mode.String(),
			State:     p.State.String(),
			CanCreate: p.CanCreate,
			Toggles:   p.Toggles,
		}
	case view.StrategyListPage:
		data.Strategies = strategyListData(p, widgetsFor(opts))
	case *view.StrategyCreatePage:
		data.Create = &FormData{
			Action: "/strategies",
			Submit: Label(opts, "actions.create-strategy", "Create strategy"),
			Fields: fieldData(p.Fields(), widgetsFor(opts)),
		}
		for _, field := range data.Create.Fields {
			fieldNames = append(fieldNames, field.Name)
		}
	case *view.FeatureCreatePage:
		data.Create = &FormData{
			Action: view.ModeFeatures.Root(),
			Submit: Label(opts, "actions.create-feature", "Create toggle"),
			Fields: fieldData(p.Fields(), widgetsFor(opts)),
		}
		for _, field := range data.Create.Fields {
			fieldNames = append(fieldNames, field.Name)
		}
	default:
		return PageData{}, fmt.Errorf("render: unsupported page %T", page)
	}

	feedback := SplitFeedback(fieldNames, opts.Errors)
	data.Errors = feedback.Page
	attachFieldErrors(&data, feedback.Fields)
	return data, nil
}

func toggleData(p view.TogglePage, opts RenderOptions) *ToggleData {
	data := &ToggleData{
		Mode:       p.Mode.String(),
		Status:     p.Status.String(),
		Name:       p.ToggleName,
		CreatePath: p.CreatePath,
		ActiveTab:  p.ActiveTab.Slug(),
	}
	if p.Status != view.StatusReady {
		return data
	}

	name := p.Toggle.Name
	data.Description = p.Description.Value
	data.Editable = p.Description.Editable
	data.Enabled = p.Toggle.Enabled
	data.Switch = SwitchData{
		Label:   Label(opts, "switch."+p.Switch.Label(), p.Switch.Label()),
		Checked: p.Switch.Checked,
		Enabled: p.Switch.Enabled,
	}
	if p.Description.Editable {
		data.Actions = ToggleAction{
			Toggle:      view.FeatureActionPath(name, "toggle"),
			Description: view.FeatureActionPath(name, "description"),
			AddStrategy: view.StrategiesActionPath(name),
		}
	}
	if p.Archive.Visible {
		data.Archive = &ButtonData{
			Label:   Label(opts, "actions.archive", p.Archive.Label),
			Enabled: p.Archive.Enabled,
			Action:  view.FeatureActionPath(name, "archive"),
		}
	}
	if p.Revive.Visible {
		data.Revive = &ButtonData{
			Label:   Label(opts, "actions.revive", p.Revive.Label),
			Enabled: p.Revive.Enabled,
			Action:  view.ReviveActionPath(name),
		}
	}
	for _, tab := range p.Tabs {
		data.Tabs = append(data.Tabs, TabData{
			Slug:   tab.Slug,
			Label:  Label(opts, "tabs."+tab.Slug, tab.Label),
			Path:   tab.Path,
			Active: tab.Active,
		})
	}
	if p.Content != nil {
		data.Content = contentData(p.Content, widgetsFor(opts))
	}
	return data
}

func contentData(content view.TabContent, reg *widgets.Registry) *ContentData {
	data := &ContentData{Tab: content.Tab().Slug()}
	switch c := content.(type) {
	case view.StrategiesEditor:
		data.Kind = "strategies-editor"
		data.Editable = true
		data.Cards = cardsData(c.Toggle.Name, c.Cards, true, reg)
	case view.StrategiesReadOnly:
		data.Kind = "strategies"
		data.Cards = cardsData(c.Toggle.Name, c.Cards, false, reg)
	case view.MetricsView:
		data.Kind = "metrics"
		data.Metrics = &MetricsData{
			Enabled:    c.Toggle.Enabled,
			Strategies: len(c.Toggle.Strategies),
			Variants:   len(c.Toggle.Variants),
			CreatedAt:  formatTime(c.Toggle.CreatedAt),
		}
	case view.VariantsView:
		data.Kind = "variants"
		data.Editable = c.Editable
		data.Variants = c.Toggle.Variants
	case view.HistoryView:
		data.Kind = "history"
		for _, event := range c.Events {
			data.Events = append(data.Events, EventData{
				ID:        event.ID,
				Type:      string(event.Type),
				Detail:    event.Detail,
				CreatedAt: formatTime(event.CreatedAt),
			})
		}
	}
	return data
}

func cardsData(toggle string, cards []view.StrategyCard, editable bool, reg *widgets.Registry) []CardData {
	out := make([]CardData, 0, len(cards))
	for _, card := range cards {
		data := CardData{
			Index:       card.Index,
			Name:        card.Name(),
			Title:       card.Title(),
			Message:     card.Message(),
			Description: card.Description,
			CreatePath:  card.CreatePath,
			Editable:    editable,
		}
		switch card.State {
		case view.CardMissing:
			data.State = "missing"
		case view.CardConfigure:
			data.State = "configure"
			data.NoConfig = !card.HasFields()
			data.Fields = fieldData(card.Fields(), reg)
		}
		if editable {
			data.Action = view.StrategyActionPath(toggle, card.Index)
			data.RemoveAction = view.StrategyRemovePath(toggle, card.Index)
		}
		out = append(out, data)
	}
	return out
}

func fieldData(fields iter.Seq[strategy.Field], reg *widgets.Registry) []FieldData {
	var out []FieldData
	for field := range fields {
		out = append(out, FieldData{
			Name:        field.Name,
			Label:       field.Label,
			Value:       field.Value,
			Present:     field.Present,
			Type:        field.Template.Type,
			Widget:      reg.Resolve(field.Template),
			Description: field.Template.Description,
			Required:    field.Template.Required,
		})
	}
	return out
}

func strategyListData(p view.StrategyListPage, reg *widgets.Registry) *StrategyListData {
	data := &StrategyListData{CanCreate: p.CanCreate, CanDelete: p.CanDelete}
	for _, def := range p.Definitions {
		item := DefinitionData{Name: def.Name, Description: def.Description}
		for name, tmpl := range def.Parameters.All() {
			item.Parameters = append(item.Parameters, FieldData{
				Name:        name,
				Label:       name,
				Type:        tmpl.Type,
				Widget:      reg.Resolve(tmpl),
				Description: tmpl.Description,
				Required:    tmpl.Required,
			})
		}
		if p.CanDelete {
			item.DeleteAction = view.DefinitionDeletePath(def.Name)
		}
		data.Definitions = append(data.Definitions, item)
	}
	return data
}

func attachFieldErrors(data *PageData, errs map[string][]string) {
	if len(errs) == 0 {
		return
	}
	attach := func(fields []FieldData) {
		for i := range fields {
			fields[i].Errors = errs[fields[i].Name]
		}
	}
	if data.Create != nil {
		attach(data.Create.Fields)
	}
	if data.Toggle != nil && data.Toggle.Content != nil {
		for i := range data.Toggle.Content.Cards {
			attach(data.Toggle.Content.Cards[i].Fields)
		}
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-toggleadmin/pkg/widgets"
)

// RenderOptions carry per-request data renderers use to customise output
// without touching the composed page.
type RenderOptions struct {
	// Theme is the resolved theme configuration; nil renders unthemed.
	Theme *theme.RendererConfig
	// Errors holds validation feedback keyed by field name. Keys that do not
	// match a field are shown as page-level errors.
	Errors map[string][]string
	// Flash is a one-off notice shown above the page content.
	Flash string
	// Locale and Translator localise labels. A nil Translator keeps the
	// built-in English labels.
	Locale     string
	Translator Translator
	// OnMissing is told about keys the Translator could not resolve. err is
	// nil when the translator returned blank text.
	OnMissing func(locale, key string, err error)
	// Widgets picks the input widget per parameter; nil uses the built-in
	// registry.
	Widgets *widgets.Registry
}

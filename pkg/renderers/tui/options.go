package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/widgets"
)

// Theme captures optional message prefixes applied to informational output.
type Theme struct {
	InfoPrefix string
}

// Option configures the Editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

// WithLogger sets the logger used to trace accepted edits.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithWidgets overrides how parameters map to prompt kinds. Textarea
// widgets open an editor, toggle widgets a yes/no prompt, the rest a line
// input.
func WithWidgets(reg *widgets.Registry) Option {
	return func(e *Editor) {
		if reg != nil {
			e.widgets = reg
		}
	}
}

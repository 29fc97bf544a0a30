package tui

import "errors"

var (
	// ErrAborted is returned when the user interrupts a prompt.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoStrategies is returned for a toggle without strategy cards.
	ErrNoStrategies = errors.New("tui: toggle has no strategies")
	// ErrNotEditable is returned when the viewer lacks UPDATE_FEATURE or the
	// active tab shows no strategy editor.
	ErrNotEditable = errors.New("tui: strategies are not editable")
)

package view

import (
	"net/url"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
)

// Mode distinguishes live toggles from archived ones.
type Mode int

const (
	ModeFeatures Mode = iota
	ModeArchive
)

// Root is the URL prefix of the mode.
func (m Mode) Root() string {
	if m == ModeArchive {
		return "/archive"
	}
	return "/features"
}

func (m Mode) String() string {
	if m == ModeArchive {
		return "archive"
	}
	return "features"
}

// TogglePath builds the bookmarkable path for a toggle tab.
func (m Mode) TogglePath(tab Tab, name string) string {
	return m.Root() + "/" + tab.Slug() + "/" + url.PathEscape(name)
}

// LoadState tracks whether the toggle list has been fetched. An empty list
// in LoadStateLoaded is a confirmed empty result, not a pending load.
type LoadState int

const (
	LoadStateNotLoaded LoadState = iota
	LoadStateLoading
	LoadStateLoaded
)

func (s LoadState) String() string {
	switch s {
	case LoadStateLoading:
		return "loading"
	case LoadStateLoaded:
		return "loaded"
	default:
		return "not-loaded"
	}
}

// ToggleList is the externally owned list of toggles plus its load state.
type ToggleList struct {
	State LoadState
	Items []feature.Toggle
}

// Loaded builds a list in LoadStateLoaded.
func Loaded(items []feature.Toggle) ToggleList {
	return ToggleList{State: LoadStateLoaded, Items: items}
}

// Find returns the toggle named name.
func (l ToggleList) Find(name string) (feature.Toggle, bool) {
	for _, item := range l.Items {
		if item.Name == name {
			return item, true
		}
	}
	return feature.Toggle{}, false
}

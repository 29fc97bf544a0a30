// Package view composes the admin pages for feature toggles and strategies
// into plain view models. It owns no state beyond what a single request needs:
// every mutation is handed to externally supplied collaborators and every
// navigation is a path pushed through a Navigator, so tabs stay bookmarkable.
package view

package view

import (
	"net/url"
	"strconv"
)

// FeatureActionPath is the POST target of a toggle action such as "toggle",
// "description" or "archive".
func FeatureActionPath(name, action string) string {
	return ModeFeatures.Root() + "/" + url.PathEscape(name) + "/" + action
}

// ReviveActionPath is the POST target that revives an archived toggle.
func ReviveActionPath(name string) string {
	return ModeArchive.Root() + "/" + url.PathEscape(name) + "/revive"
}

// StrategiesActionPath is the POST target that adds a strategy to a toggle.
func StrategiesActionPath(name string) string {
	return FeatureActionPath(name, "strategies")
}

// StrategyActionPath is the POST target that edits the strategy at index.
func StrategyActionPath(name string, index int) string {
	return StrategiesActionPath(name) + "/" + strconv.Itoa(index)
}

// StrategyRemovePath is the POST target that removes the strategy at index.
func StrategyRemovePath(name string, index int) string {
	return StrategyActionPath(name, index) + "/remove"
}

// DefinitionDeletePath is the POST target that deletes a strategy definition.
func DefinitionDeletePath(name string) string {
	return "/strategies/" + url.PathEscape(name) + "/delete"
}

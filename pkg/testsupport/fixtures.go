// Package testsupport holds the toggle and strategy fixtures shared by the
// package tests.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

// Epoch is the fixed timestamp used by fixtures.
var Epoch = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// Definitions returns the strategy types used across tests: one with an
// ordered parameter schema, one without parameters and one with an empty
// schema.
func Definitions() []strategy.Definition {
	rollout := strategy.NewParameterSchema()
	rollout.Set("rolloutPercentage", strategy.ParameterTemplate{Type: "percentage", Required: true})
	rollout.Set("stickiness", strategy.ParameterTemplate{Type: "string"})
	rollout.Set("groupId", strategy.ParameterTemplate{Type: "string"})

	return []strategy.Definition{
		{Name: "default", Description: "Enabled for everyone"},
		{Name: "gradualRollout", Description: "Roll out to a percentage of users", Parameters: rollout},
		{Name: "userWithId", Description: "Enabled for listed users", Parameters: strategy.NewParameterSchema("userIds")},
		{Name: "remoteAddress", Parameters: strategy.NewParameterSchema()},
	}
}

// Toggle returns a live toggle carrying a configured strategy and one whose
// type is unknown.
func Toggle(name string) feature.Toggle {
	return feature.Toggle{
		Name:        name,
		Description: "Checkout redesign",
		Enabled:     true,
		CreatedAt:   Epoch,
		Strategies: []strategy.Instance{
			{ID: "s1", Name: "gradualRollout", Parameters: strategy.Values{"rolloutPercentage": "10", "groupId": "A"}},
			{ID: "s2", Name: "legacyStrategy"},
		},
		Variants: []feature.Variant{{Name: "blue", Weight: 50}, {Name: "green", Weight: 50}},
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// ReadString returns the content of path, failing the test when it cannot
// be read.
func ReadString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// WriteFile writes content under dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

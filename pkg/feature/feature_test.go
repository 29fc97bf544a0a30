package feature_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
)

func sampleToggle() feature.Toggle {
	return feature.Toggle{
		Name:        "checkout.v2",
		Description: "new checkout",
		Enabled:     true,
		Strategies: []strategy.Instance{
			{ID: "s1", Name: "default"},
			{ID: "s2", Name: "gradualRollout", Parameters: strategy.Values{"rolloutPercentage": "10"}},
		},
		Variants: []feature.Variant{{Name: "blue", Weight: 1000}},
	}
}

func TestToggle_WithDescriptionClearsIDsOnCopyOnly(t *testing.T) {
	original := sampleToggle()

	next := original.WithDescription("updated")

	if next.Description != "updated" {
		t.Fatalf("description not applied: %q", next.Description)
	}
	for _, s := range next.Strategies {
		if s.ID != "" {
			t.Fatalf("expected strategy ids cleared on copy, got %q", s.ID)
		}
	}
	if original.Strategies[0].ID != "s1" || original.Strategies[1].ID != "s2" {
		t.Fatalf("original strategies mutated: %+v", original.Strategies)
	}
	if original.Description != "new checkout" {
		t.Fatalf("original description mutated")
	}
}

func TestToggle_WithStrategy(t *testing.T) {
	original := sampleToggle()
	replacement := strategy.Instance{ID: "s2", Name: "gradualRollout", Parameters: strategy.Values{"rolloutPercentage": "75"}}

	next, ok := original.WithStrategy(1, replacement)
	if !ok {
		t.Fatalf("expected replacement to succeed")
	}
	if next.Strategies[1].Param("rolloutPercentage") != "75" {
		t.Fatalf("replacement not applied: %+v", next.Strategies[1])
	}
	if original.Strategies[1].Param("rolloutPercentage") != "10" {
		t.Fatalf("original mutated: %+v", original.Strategies[1])
	}

	replacement.Parameters["rolloutPercentage"] = "99"
	if next.Strategies[1].Param("rolloutPercentage") != "75" {
		t.Fatalf("toggle aliases caller parameters")
	}

	if _, ok := original.WithStrategy(5, replacement); ok {
		t.Fatalf("expected out of range index to fail")
	}
}

func TestToggle_WithoutStrategy(t *testing.T) {
	original := sampleToggle()

	next, ok := original.WithoutStrategy(0)
	if !ok {
		t.Fatalf("expected removal to succeed")
	}
	names := make([]string, 0, len(next.Strategies))
	for _, s := range next.Strategies {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"gradualRollout"}, names); diff != "" {
		t.Fatalf("strategies mismatch (-want +got):\n%s", diff)
	}
	if len(original.Strategies) != 2 || original.Strategies[0].Name != "default" {
		t.Fatalf("original mutated: %+v", original.Strategies)
	}
	if _, ok := original.WithoutStrategy(-1); ok {
		t.Fatalf("expected negative index to fail")
	}
}

func TestPermissionSet(t *testing.T) {
	set := feature.NewPermissionSet(feature.UpdateFeature, "")

	if !set.HasPermission(feature.UpdateFeature) {
		t.Fatalf("expected update permission")
	}
	if set.HasPermission(feature.DeleteFeature) {
		t.Fatalf("unexpected delete permission")
	}

	var nilFunc feature.PermissionFunc
	if nilFunc.HasPermission(feature.CreateFeature) {
		t.Fatalf("nil func should deny")
	}
	allow := feature.PermissionFunc(func(feature.Permission) bool { return true })
	if !allow.HasPermission(feature.CreateFeature) {
		t.Fatalf("func adapter should delegate")
	}
}

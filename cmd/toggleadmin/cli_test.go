package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/goliatone/go-toggleadmin/internal/config"
	"github.com/goliatone/go-toggleadmin/pkg/renderers/tui"
	"github.com/goliatone/go-toggleadmin/pkg/store"
	"github.com/goliatone/go-toggleadmin/pkg/testsupport"
)

const seedDocument = `definitions:
  - name: gradualRollout
    description: Roll out to a percentage of users
    parameters:
      rolloutPercentage:
        type: percentage
        required: true
      stickiness: string
  - name: default
features:
  - name: checkout
    description: Checkout redesign
    enabled: true
    strategies:
      - id: s1
        name: gradualRollout
        parameters:
          rolloutPercentage: "10"
archive:
  - name: old-banner
    strategies:
      - name: default
`

const openAPIDocument = `openapi: 3.0.3
info:
  title: Strategies
  version: 1.0.0
paths: {}
components:
  schemas:
    UserWithID:
      type: object
      x-strategy: true
      x-strategy-name: userWithId
      properties:
        userIds:
          type: array
          items:
            type: string
`

// scriptedPrompts answers input prompts in order.
type scriptedPrompts struct {
	inputs []string
}

func (s *scriptedPrompts) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	answer := cfg.Default
	if len(s.inputs) > 0 {
		answer, s.inputs = s.inputs[0], s.inputs[1:]
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (s *scriptedPrompts) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, nil
}

func (s *scriptedPrompts) Select(context.Context, tui.SelectConfig) (int, error) {
	return 0, nil
}

func (s *scriptedPrompts) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func (s *scriptedPrompts) Info(context.Context, string) error {
	return nil
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	if a.logger == nil {
		a.logger = zaptest.NewLogger(t)
	}
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderTextPage(t *testing.T) {
	data := testsupport.WriteFile(t, t.TempDir(), "toggles.yaml", seedDocument)

	out, err := run(t, newApp(), "render", "checkout", "--data", data, "--format", "text", "--role", "editor")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	for _, want := range []string{"checkout", "gradualRollout", "rolloutPercentage = 10"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderArchivedJSON(t *testing.T) {
	data := testsupport.WriteFile(t, t.TempDir(), "toggles.yaml", seedDocument)

	out, err := run(t, newApp(), "render", "old-banner", "history", "--archive", "--data", data, "--format", "json")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"mode": "archive"`) || !strings.Contains(out, `"activeTab": "history"`) {
		t.Fatalf("unexpected json:\n%s", out)
	}
}

func TestRenderUnknownToggle(t *testing.T) {
	data := testsupport.WriteFile(t, t.TempDir(), "toggles.yaml", seedDocument)

	if _, err := run(t, newApp(), "render", "nope", "--data", data); err == nil {
		t.Fatalf("expected error for unknown toggle")
	}
}

func TestEditWritesChangedParameters(t *testing.T) {
	data := testsupport.WriteFile(t, t.TempDir(), "toggles.yaml", seedDocument)

	a := newApp()
	a.prompts = &scriptedPrompts{inputs: []string{"50", "userId"}}
	out, err := run(t, a, "edit", "checkout", "0", "--data", data)
	if err != nil {
		t.Fatalf("edit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Updated gradualRollout on checkout") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	doc, err := store.LoadFile(data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := doc.Features[0].Strategies[0]
	if got.ID != "s1" {
		t.Fatalf("strategy id = %q, want s1", got.ID)
	}
	want := map[string]string{"rolloutPercentage": "50", "stickiness": "userId"}
	if diff := cmp.Diff(want, map[string]string(got.Parameters)); diff != "" {
		t.Fatalf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestEditWithoutChangesLeavesFile(t *testing.T) {
	data := testsupport.WriteFile(t, t.TempDir(), "toggles.yaml", seedDocument)

	a := newApp()
	a.prompts = &scriptedPrompts{}
	out, err := run(t, a, "edit", "checkout", "--data", data)
	if err != nil {
		t.Fatalf("edit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No changes.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if got := testsupport.ReadString(t, data); got != seedDocument {
		t.Fatalf("data file should be untouched:\n%s", got)
	}
}

func TestEditRejectsBadIndex(t *testing.T) {
	data := testsupport.WriteFile(t, t.TempDir(), "toggles.yaml", seedDocument)

	a := newApp()
	a.prompts = &scriptedPrompts{}
	if _, err := run(t, a, "edit", "checkout", "two", "--data", data); err == nil {
		t.Fatalf("expected error for non-numeric index")
	}
}

func TestImportOpenAPIPrintsDefinitions(t *testing.T) {
	dir := t.TempDir()
	spec := testsupport.WriteFile(t, dir, "strategies.yaml", openAPIDocument)

	out, err := run(t, newApp(), "import-openapi", spec, "--data", dir+"/missing.yaml")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	doc, err := store.Decode([]byte(out), false)
	if err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(doc.Definitions) != 1 || doc.Definitions[0].Name != "userWithId" {
		t.Fatalf("unexpected definitions: %+v", doc.Definitions)
	}
}

func TestImportOpenAPIMergesIntoDataFile(t *testing.T) {
	dir := t.TempDir()
	data := testsupport.WriteFile(t, dir, "toggles.yaml", seedDocument)
	spec := testsupport.WriteFile(t, dir, "strategies.yaml", openAPIDocument)

	out, err := run(t, newApp(), "import-openapi", spec, "--write", "--data", data)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	doc, err := store.LoadFile(data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	var names []string
	for _, def := range doc.Definitions {
		names = append(names, def.Name)
	}
	if diff := cmp.Diff([]string{"gradualRollout", "default", "userWithId"}, names); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Features) != 1 || len(doc.Archive) != 1 {
		t.Fatalf("toggles should survive the merge: %+v", doc)
	}
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Data.Path = testsupport.WriteFile(t, t.TempDir(), "toggles.yaml", seedDocument)
	cfg.Data.Watch = true

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, zaptest.NewLogger(t)) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after the context ended")
	}
}

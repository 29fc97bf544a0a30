package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/render"
)

const sampleConfig = `server:
  addr: ":7070"
  shutdown_timeout: 3s
data:
  path: seed.yaml
  watch: true
log:
  level: debug
theme:
  name: acme
  variant: dark
  manifests:
    - name: acme
      version: 1.0.0
      tokens:
        brand: "#123456"
      templates:
        page.toggle: themes/acme/toggle.tmpl
      assets:
        prefix: /assets/acme
        files:
          stylesheet: acme.css
      variants:
        dark:
          tokens:
            brand: "#000000"
auth:
  roles:
    owner: [CREATE_FEATURE, update_feature]
i18n:
  messages:
    de:
      tabs.strategies: Strategien
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toggleadmin.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default().Server, cfg.Server); diff != "" {
		t.Fatalf("server mismatch (-want +got):\n%s", diff)
	}
	if cfg.Auth.RoleHeader != "X-Toggle-Role" {
		t.Fatalf("role header = %q", cfg.Auth.RoleHeader)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("TOGGLEADMIN_LOG_LEVEL", "warn")
	t.Setenv("TOGGLEADMIN_SERVER_ADDR", ":6060")

	cfg, err := Load(LoadOptions{
		ConfigPath:    path,
		FlagOverrides: map[string]any{Key("server", "addr"): ":5050"},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != ":5050" {
		t.Fatalf("flags must win, addr = %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("env must beat the file, level = %q", cfg.Log.Level)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Fatalf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Data.Watch || cfg.Data.Path != "seed.yaml" {
		t.Fatalf("data = %+v", cfg.Data)
	}
	if cfg.Server.ReadTimeout != Default().Server.ReadTimeout {
		t.Fatalf("defaults must fill gaps, read timeout = %v", cfg.Server.ReadTimeout)
	}
}

func TestThemeSelectorFromConfig(t *testing.T) {
	cfg, err := Load(LoadOptions{ConfigPath: writeConfig(t, sampleConfig)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	selector, err := cfg.Theme.Selector()
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	themeCfg, err := render.ResolveTheme(selector, "", "", render.DefaultPartials())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if themeCfg.Variant != "dark" {
		t.Fatalf("variant = %q", themeCfg.Variant)
	}
	if got := themeCfg.CSSVars["--brand"]; got != "#000000" {
		t.Fatalf("brand = %q", got)
	}
	if got := themeCfg.Partials["page.toggle"]; got != "themes/acme/toggle.tmpl" {
		t.Fatalf("dotted partial key lost, got %q", got)
	}
	if got := themeCfg.AssetURL("stylesheet"); got != "/assets/acme/acme.css" {
		t.Fatalf("asset = %q", got)
	}
}

func TestRolePermissions(t *testing.T) {
	cfg, err := Load(LoadOptions{ConfigPath: writeConfig(t, sampleConfig)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	owner := cfg.Auth.Permissions("Owner")
	if !owner.HasPermission(feature.CreateFeature) || !owner.HasPermission(feature.UpdateFeature) {
		t.Fatal("owner must create and update")
	}
	if owner.HasPermission(feature.DeleteFeature) {
		t.Fatal("owner must not delete")
	}

	admin := cfg.Auth.Permissions("admin")
	for _, p := range feature.Permissions() {
		if !admin.HasPermission(p) {
			t.Fatalf("admin lacks %s", p)
		}
	}

	anonymous := cfg.Auth.Permissions("")
	if anonymous.HasPermission(feature.UpdateFeature) {
		t.Fatal("default viewer role must be read-only")
	}
}

func TestConfiguredRoleReplacesBuiltinRole(t *testing.T) {
	path := writeConfig(t, `
auth:
  roles:
    Editor: [CREATE_FEATURE]
`)
	cfg, err := Load(LoadOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	editor := cfg.Auth.Permissions("editor")
	if !editor.HasPermission(feature.CreateFeature) || editor.HasPermission(feature.UpdateFeature) {
		t.Fatalf("configured editor role not applied: %v", cfg.Auth.Roles)
	}
	if !cfg.Auth.Permissions("admin").HasPermission(feature.DeleteFeature) {
		t.Fatal("built-in admin role dropped")
	}
	if _, ok := cfg.Auth.Roles["viewer"]; !ok {
		t.Fatal("built-in viewer role dropped")
	}
}

func TestTranslatorFromConfig(t *testing.T) {
	cfg, err := Load(LoadOptions{ConfigPath: writeConfig(t, sampleConfig)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := render.RenderOptions{Locale: "de", Translator: cfg.I18n.Translator()}
	if got := render.Label(opts, "tabs.strategies", "Strategies"); got != "Strategien" {
		t.Fatalf("label = %q", got)
	}
	if got := render.Label(opts, "tabs.history", "History"); got != "History" {
		t.Fatalf("fallback label = %q", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Auth.Roles["broken"] = []string{"FLY"}
	cfg.Theme = ThemeConfig{Name: "missing", Manifests: []ManifestConfig{{Name: "acme"}}}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"log.level", `unknown permission "FLY"`, `theme.name "missing"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	if _, err := Load(LoadOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
		t.Fatal("explicit missing config must fail")
	}
}

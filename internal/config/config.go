// Package config loads the admin server configuration with viper.
//
// Precedence: defaults < config file < TOGGLEADMIN_* environment < flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/render"
)

// Config is the effective configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Log    LogConfig    `mapstructure:"log"`
	Theme  ThemeConfig  `mapstructure:"theme"`
	Auth   AuthConfig   `mapstructure:"auth"`
	I18n   I18nConfig   `mapstructure:"i18n"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DataConfig points at the seed document loaded into the store.
type DataConfig struct {
	Path     string        `mapstructure:"path"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ThemeConfig selects the default theme and declares the available manifests.
// TemplatesDir holds the partials manifests point at; it is searched before
// the built-in templates.
type ThemeConfig struct {
	Name         string           `mapstructure:"name"`
	Variant      string           `mapstructure:"variant"`
	TemplatesDir string           `mapstructure:"templates_dir"`
	Manifests    []ManifestConfig `mapstructure:"manifests"`
}

type ManifestConfig struct {
	Name      string                   `mapstructure:"name"`
	Version   string                   `mapstructure:"version"`
	Tokens    map[string]string        `mapstructure:"tokens"`
	Templates map[string]string        `mapstructure:"templates"`
	Assets    AssetsConfig             `mapstructure:"assets"`
	Variants  map[string]VariantConfig `mapstructure:"variants"`
}

type AssetsConfig struct {
	Prefix string            `mapstructure:"prefix"`
	Files  map[string]string `mapstructure:"files"`
}

type VariantConfig struct {
	Tokens    map[string]string `mapstructure:"tokens"`
	Templates map[string]string `mapstructure:"templates"`
	Assets    AssetsConfig      `mapstructure:"assets"`
}

// AuthConfig maps the role named by RoleHeader to permission keys. The "*"
// entry grants every permission.
type AuthConfig struct {
	RoleHeader  string              `mapstructure:"role_header"`
	DefaultRole string              `mapstructure:"default_role"`
	Roles       map[string][]string `mapstructure:"roles"`
}

// I18nConfig holds message catalogs keyed by locale then message key.
type I18nConfig struct {
	Locale   string                       `mapstructure:"locale"`
	Messages map[string]map[string]string `mapstructure:"messages"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Path:     "toggles.yaml",
			Debounce: 200 * time.Millisecond,
		},
		Log: LogConfig{Level: "info"},
		Auth: AuthConfig{
			RoleHeader:  "X-Toggle-Role",
			DefaultRole: "viewer",
			Roles: map[string][]string{
				"viewer": {},
				"editor": {string(feature.UpdateFeature)},
				"admin":  {"*"},
			},
		},
		I18n: I18nConfig{Locale: "en"},
	}
}

// Validate reports configuration mistakes.
func Validate(cfg Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	if cfg.Data.Debounce < 0 {
		errs = append(errs, errors.New("data.debounce must not be negative"))
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if strings.TrimSpace(cfg.Auth.RoleHeader) == "" {
		errs = append(errs, errors.New("auth.role_header is required"))
	}

	known := make(map[string]bool)
	for _, p := range feature.Permissions() {
		known[string(p)] = true
	}
	for role, perms := range cfg.Auth.Roles {
		for _, p := range perms {
			if p != "*" && !known[strings.ToUpper(p)] {
				errs = append(errs, fmt.Errorf("auth.roles.%s: unknown permission %q", role, p))
			}
		}
	}

	names := make(map[string]bool)
	for i, m := range cfg.Theme.Manifests {
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Errorf("theme.manifests[%d].name is required", i))
			continue
		}
		names[strings.ToLower(m.Name)] = true
	}
	if len(cfg.Theme.Manifests) > 0 && cfg.Theme.Name != "" && !names[strings.ToLower(cfg.Theme.Name)] {
		errs = append(errs, fmt.Errorf("theme.name %q does not match any manifest", cfg.Theme.Name))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}

// Permissions returns the permission set granted to role. Unknown roles fall
// back to the default role.
func (c AuthConfig) Permissions(role string) feature.PermissionSet {
	perms, ok := c.lookup(role)
	if !ok {
		perms, _ = c.lookup(c.DefaultRole)
	}
	var granted []feature.Permission
	for _, p := range perms {
		if p == "*" {
			return feature.NewPermissionSet(feature.Permissions()...)
		}
		granted = append(granted, feature.Permission(strings.ToUpper(p)))
	}
	return feature.NewPermissionSet(granted...)
}

func (c AuthConfig) lookup(role string) ([]string, bool) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return nil, false
	}
	for name, perms := range c.Roles {
		if strings.ToLower(name) == role {
			return perms, true
		}
	}
	return nil, false
}

// Selector builds a theme selector from the configured manifests. It returns
// nil when no manifest is configured.
func (c ThemeConfig) Selector() (*render.ManifestSelector, error) {
	if len(c.Manifests) == 0 {
		return nil, nil
	}
	name := c.Name
	if name == "" {
		name = c.Manifests[0].Name
	}
	selector := render.NewManifestSelector(name, c.Variant)
	for _, m := range c.Manifests {
		if err := selector.Add(m.manifest()); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return selector, nil
}

func (m ManifestConfig) manifest() *theme.Manifest {
	out := &theme.Manifest{
		Name:      m.Name,
		Version:   m.Version,
		Tokens:    m.Tokens,
		Templates: m.Templates,
		Assets:    theme.Assets{Prefix: m.Assets.Prefix, Files: m.Assets.Files},
	}
	if len(m.Variants) > 0 {
		out.Variants = make(map[string]theme.Variant, len(m.Variants))
		for name, v := range m.Variants {
			out.Variants[name] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return out
}

// Translator serves the configured catalogs. Missing keys return an error so
// renderers fall back to the built-in labels.
func (c I18nConfig) Translator() render.Translator {
	if len(c.Messages) == 0 {
		return nil
	}
	return render.TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
		catalog, ok := c.Messages[strings.ToLower(locale)]
		if !ok {
			return "", fmt.Errorf("config: no messages for locale %q", locale)
		}
		msg, ok := catalog[strings.ToLower(key)]
		if !ok {
			return "", fmt.Errorf("config: no message %q for locale %q", key, locale)
		}
		return msg, nil
	})
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "TOGGLEADMIN"

// keyDelimiter keeps dotted map keys such as partial names and message keys
// intact when viper flattens the configuration.
const keyDelimiter = "::"

// Key joins path segments into a viper key, e.g. Key("server", "addr").
func Key(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath is an explicit config file. When empty, toggleadmin.yaml is
	// looked up in the working directory and ignored when absent.
	ConfigPath string
	// FlagOverrides are highest-priority values keyed with Key.
	FlagOverrides map[string]any
}

// Load returns the effective configuration.
func Load(opts LoadOptions) (Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v)

	if err := readConfigFile(v, opts.ConfigPath); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	for key, value := range opts.FlagOverrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Auth.Roles = withDefaultRoles(cfg.Auth.Roles)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault(Key("server", "addr"), def.Server.Addr)
	v.SetDefault(Key("server", "read_timeout"), def.Server.ReadTimeout)
	v.SetDefault(Key("server", "write_timeout"), def.Server.WriteTimeout)
	v.SetDefault(Key("server", "shutdown_timeout"), def.Server.ShutdownTimeout)

	v.SetDefault(Key("data", "path"), def.Data.Path)
	v.SetDefault(Key("data", "watch"), def.Data.Watch)
	v.SetDefault(Key("data", "debounce"), def.Data.Debounce)

	v.SetDefault(Key("log", "level"), def.Log.Level)
	v.SetDefault(Key("log", "development"), def.Log.Development)

	v.SetDefault(Key("theme", "name"), def.Theme.Name)
	v.SetDefault(Key("theme", "variant"), def.Theme.Variant)
	v.SetDefault(Key("theme", "templates_dir"), def.Theme.TemplatesDir)

	v.SetDefault(Key("auth", "role_header"), def.Auth.RoleHeader)
	v.SetDefault(Key("auth", "default_role"), def.Auth.DefaultRole)

	v.SetDefault(Key("i18n", "locale"), def.I18n.Locale)
}

// withDefaultRoles adds every built-in role the configuration does not
// define. Configured roles win, compared case-insensitively.
func withDefaultRoles(roles map[string][]string) map[string][]string {
	if roles == nil {
		roles = make(map[string][]string)
	}
	configured := AuthConfig{Roles: roles}
	for name, perms := range Default().Auth.Roles {
		if _, ok := configured.lookup(name); !ok {
			roles[name] = perms
		}
	}
	return roles
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("config: stat %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("config: %s is a directory", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("toggleadmin")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read toggleadmin.yaml: %w", err)
	}
	return nil
}

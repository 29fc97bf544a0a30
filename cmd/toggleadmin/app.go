package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-toggleadmin/internal/config"
	"github.com/goliatone/go-toggleadmin/pkg/render"
	"github.com/goliatone/go-toggleadmin/pkg/renderers/jsonview"
	"github.com/goliatone/go-toggleadmin/pkg/renderers/tui"
	"github.com/goliatone/go-toggleadmin/pkg/renderers/vanilla"
	"github.com/goliatone/go-toggleadmin/pkg/store"
)

const assetPrefix = "/assets"

// app carries the persistent flags and the seams tests replace.
type app struct {
	configPath string
	logLevel   string
	dataPath   string

	// prompts overrides the terminal driver of the edit command.
	prompts tui.PromptDriver
	// logger overrides the logger built from configuration.
	logger *zap.Logger
}

func newApp() *app {
	return &app{}
}

// load resolves configuration, letting explicitly set persistent flags win
// over file and environment values.
func (a *app) load(cmd *cobra.Command, overrides map[string]any) (config.Config, error) {
	if overrides == nil {
		overrides = make(map[string]any)
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		overrides[config.Key("log", "level")] = a.logLevel
	}
	if flags.Changed("data") {
		overrides[config.Key("data", "path")] = a.dataPath
	}
	return config.Load(config.LoadOptions{
		ConfigPath:    a.configPath,
		FlagOverrides: overrides,
	})
}

func (a *app) newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("toggleadmin: log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// openStore seeds a memory store from path. A missing file starts empty.
func openStore(path string, logger *zap.Logger) (*store.Memory, error) {
	st := store.NewMemory(store.WithLogger(logger.Named("store")))
	doc, err := store.LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("data file not found, starting empty", zap.String("path", path))
			return st, nil
		}
		return nil, err
	}
	if err := st.Load(doc); err != nil {
		return nil, err
	}
	return st, nil
}

// loadDocument reads path, treating a missing file as an empty document.
func loadDocument(path string) (store.Document, error) {
	doc, err := store.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.Document{}, nil
	}
	return doc, err
}

// newRegistry registers every page renderer the command line can select.
func newRegistry(logger *zap.Logger, stylesheet, templatesDir string) (*render.Registry, error) {
	opts := []vanilla.Option{
		vanilla.WithLogger(logger.Named("vanilla")),
		vanilla.WithTemplatesDir(templatesDir),
	}
	if stylesheet != "" {
		opts = append(opts, vanilla.WithStylesheet(stylesheet))
	} else {
		opts = append(opts, vanilla.WithDefaultStyles())
	}
	html, err := vanilla.New(opts...)
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	for _, renderer := range []render.Renderer{html, jsonview.New(jsonview.WithIndent("  ")), tui.NewTextRenderer()} {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// renderOptions builds the theme and translation options shared by the
// render command.
func renderOptions(cfg config.Config) (render.RenderOptions, error) {
	opts := render.RenderOptions{
		Locale:     cfg.I18n.Locale,
		Translator: cfg.I18n.Translator(),
	}
	selector, err := cfg.Theme.Selector()
	if err != nil {
		return opts, err
	}
	if selector != nil {
		themed, err := render.ResolveTheme(selector, cfg.Theme.Name, cfg.Theme.Variant, render.DefaultPartials())
		if err != nil {
			return opts, err
		}
		opts.Theme = themed
	}
	return opts, nil
}

func stylesheetURL() string {
	return strings.TrimSuffix(assetPrefix, "/") + "/" + vanilla.StylesheetName
}

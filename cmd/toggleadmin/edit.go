package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/feature"
	"github.com/goliatone/go-toggleadmin/pkg/renderers/tui"
	"github.com/goliatone/go-toggleadmin/pkg/store"
	"github.com/goliatone/go-toggleadmin/pkg/strategy"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <feature> [index]",
		Short: "Edit the parameters of a toggle strategy in the terminal",
		Long: `Prompt for every parameter of one strategy attached to a feature toggle.
Each changed answer is written to the store as its own update and the data
file is saved when the session ends. Without an index the strategy is picked
from a list.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := -1
			if len(args) == 2 {
				parsed, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("toggleadmin: strategy index %q is not a number", args[1])
				}
				index = parsed
			}

			cfg, err := a.load(cmd, nil)
			if err != nil {
				return err
			}
			logger, err := a.newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			st, err := openStore(cfg.Data.Path, logger)
			if err != nil {
				return err
			}

			var storeErr error
			check := func(err error) {
				if err != nil && storeErr == nil {
					storeErr = err
				}
			}
			composer := view.NewComposer(view.Props{
				ActiveTab:  view.TabStrategies.Slug(),
				ToggleName: args[0],
				Features:   view.Loaded(st.Features()),
			}, view.Collaborators{
				FetchFeatureToggles: func() {},
				EditFeatureToggle: func(toggle feature.Toggle) {
					check(st.ReplaceFeature(toggle))
				},
				UpdateStrategy: func(name string, index int, instance strategy.Instance) {
					check(st.UpdateStrategy(name, index, instance))
				},
				RemoveStrategy: func(name string, index int) {
					check(st.RemoveStrategy(name, index))
				},
				OnError:     check,
				Permissions: feature.NewPermissionSet(feature.Permissions()...),
				Definitions: st,
			})

			page := composer.Compose()
			if page.Status == view.StatusNotFound {
				return fmt.Errorf("toggleadmin: %w: %s", view.ErrToggleNotFound, args[0])
			}

			prompts := a.prompts
			if prompts == nil {
				prompts = tui.NewSurveyDriver(cmd.OutOrStdout())
			}
			editor := tui.New(tui.WithPromptDriver(prompts), tui.WithLogger(logger.Named("tui")))
			result, err := editor.EditPage(cmd.Context(), page, index)
			if err != nil {
				return err
			}
			if storeErr != nil {
				return storeErr
			}

			out := cmd.OutOrStdout()
			if !result.Removed && len(result.Changed) == 0 {
				fmt.Fprintln(out, "No changes.")
				return nil
			}
			if err := store.SaveFile(cfg.Data.Path, st.Snapshot()); err != nil {
				return err
			}
			logger.Info("strategy edited",
				zap.String("feature", args[0]),
				zap.Strings("changed", result.Changed),
				zap.Bool("removed", result.Removed),
			)
			if result.Removed {
				fmt.Fprintf(out, "Removed strategy %s from %s.\n", result.Instance.Name, args[0])
				return nil
			}
			fmt.Fprintf(out, "Updated %s on %s: %v\n", result.Instance.Name, args[0], result.Changed)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-toggleadmin/pkg/view"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		format  string
		output  string
		role    string
		archive bool
	)
	cmd := &cobra.Command{
		Use:   "render <feature> [tab]",
		Short: "Render a toggle page to stdout or a file",
		Long: `Compose the page of one feature toggle and render it with the chosen
renderer: vanilla (HTML), json or text. The tab defaults to strategies;
unknown tabs fall back to it as well.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			registry, err := newRegistry(logger, "", cfg.Theme.TemplatesDir)
			if err != nil {
				return err
			}
			renderer, err := registry.Get(format)
			if err != nil {
				return err
			}
			opts, err := renderOptions(cfg)
			if err != nil {
				return err
			}

			if role == "" {
				role = cfg.Auth.DefaultRole
			}
			collab := view.Collaborators{
				History:     st.History,
				Permissions: cfg.Auth.Permissions(role),
				Definitions: st,
			}
			items := st.Features()
			if archive {
				items = st.Archived()
				collab.FetchArchive = func() {}
			} else {
				collab.FetchFeatureToggles = func() {}
			}
			tab := ""
			if len(args) == 2 {
				tab = args[1]
			}
			composer := view.NewComposer(view.Props{
				ActiveTab:  tab,
				ToggleName: args[0],
				Features:   view.Loaded(items),
			}, collab)
			page := composer.Compose()
			if page.Status == view.StatusNotFound {
				return fmt.Errorf("toggleadmin: %w: %s", view.ErrToggleNotFound, args[0])
			}

			body, err := renderer.Render(cmd.Context(), page, opts)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return fmt.Errorf("toggleadmin: write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Page written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "vanilla", "renderer: vanilla, json or text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&role, "role", "", "role whose permissions shape the page (default from config)")
	cmd.Flags().BoolVar(&archive, "archive", false, "render an archived toggle")
	return cmd
}

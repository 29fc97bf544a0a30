package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-toggleadmin/pkg/openapi"
	"github.com/goliatone/go-toggleadmin/pkg/store"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		write    bool
		validate bool
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import-openapi <file|url>",
		Short: "Import strategy definitions from an OpenAPI document",
		Long: `Read components.schemas entries marked with x-strategy: true and turn
them into strategy definitions. The result is printed as YAML, or merged into
the data file with --write (same-named definitions are replaced).`,
		Args: cobra.ExactArgs(1),
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

			src, err := openapi.ParseSource(args[0])
			if err != nil {
				return err
			}
			loader := openapi.NewLoader(openapi.WithHTTPFallback(timeout))
			var opts []openapi.ImportOption
			if validate {
				opts = append(opts, openapi.WithValidation())
			}
			defs, err := openapi.Import(cmd.Context(), loader, src, opts...)
			if err != nil {
				return err
			}
			logger.Info("strategy definitions imported",
				zap.String("source", src.Location),
				zap.Int("definitions", len(defs)),
			)

			if !write {
				data, err := store.Encode(store.Document{Definitions: defs}, false)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			doc, err := loadDocument(cfg.Data.Path)
			if err != nil {
				return err
			}
			doc.MergeDefinitions(defs)
			if err := store.SaveFile(cfg.Data.Path, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d definitions into %s\n", len(defs), cfg.Data.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "merge the definitions into the data file")
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the OpenAPI document before importing")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for documents fetched over HTTP")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-voiceform/internal/logging"
	"github.com/goliatone/go-voiceform/pkg/schema"
)

func newSchemaCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the questionnaire",
	}

	var (
		format string
		output string
	)
	export := &cobra.Command{
		Use:   "export",
		Short: "Print the questionnaire as YAML or as an OpenAPI answer schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags, logging.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "yaml":
				data, err = schema.Marshal(a.engine.Schema())
			case "openapi":
				data, err = schema.ExportJSON(a.engine.Schema())
			default:
				return fmt.Errorf("unknown format %q (want yaml or openapi)", format)
			}
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", output)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	export.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or openapi")
	export.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	cmd.AddCommand(export)
	return cmd
}

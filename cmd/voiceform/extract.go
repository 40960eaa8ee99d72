package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-voiceform/internal/logging"
	"github.com/goliatone/go-voiceform/pkg/canonical"
	"github.com/goliatone/go-voiceform/pkg/extract"
	"github.com/goliatone/go-voiceform/pkg/resolve"
)

func newExtractCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <utterance>",
		Short: "Show the answers an utterance would produce without storing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(flags, logging.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			s := a.engine.Schema()
			resolver := resolve.New(s)
			candidates := extract.New().Utterance(strings.Join(args, " "))
			if len(candidates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No answers recognized")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RULE\tFIELD\tSTRATEGY\tVALUE")
			for _, c := range candidates {
				res, err := resolver.Resolve(c.TargetFieldID)
				if err != nil {
					fmt.Fprintf(w, "%s\t%s\t-\t%s\n", c.Rule, c.TargetFieldID, err)
					continue
				}
				field, _ := s.Lookup(res.FieldID)
				value, _ := canonical.Canonicalize(field, c.RawValue)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Rule, res.FieldID, res.Strategy, canonical.Redact(field, value))
			}
			return w.Flush()
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-voiceform/internal/logging"
	"github.com/goliatone/go-voiceform/pkg/resolve"
)

func newResolveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <hint>",
		Short: "Show which field a spoken field reference resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(flags, logging.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			hint := strings.Join(args, " ")
			resolver := resolve.New(a.engine.Schema())
			out := cmd.OutOrStdout()

			res, err := resolver.Resolve(hint)
			if errors.Is(err, resolve.ErrUnresolvedField) {
				fmt.Fprintf(out, "%q does not match any field\n", hint)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%s)\n", res.FieldID, res.Strategy)

			if res.Strategy != resolve.StrategyContainment {
				return nil
			}
			var others []string
			for _, id := range resolver.Candidates(hint) {
				if id != res.FieldID {
					others = append(others, id)
				}
			}
			if len(others) > 0 {
				fmt.Fprintf(out, "also matches: %s\n", strings.Join(others, ", "))
			}
			return nil
		},
	}
}

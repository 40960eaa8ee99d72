package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-voiceform/internal/logging"
	"github.com/goliatone/go-voiceform/pkg/tui"
)

func newInterviewCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "interview",
		Short: "Run the questionnaire in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags, logging.WithOutput(io.Discard))
			if err != nil {
				return err
			}

			sess, err := a.engine.NewSession()
			if err != nil {
				return err
			}
			runner, err := tui.New(sess,
				tui.WithLogger(a.logger),
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
			)
			if err != nil {
				return err
			}

			receipt, err := runner.Run(cmd.Context())
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Interview aborted; answers were not submitted.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Receipt %s\n", receipt.ID)
			return nil
		},
	}
}

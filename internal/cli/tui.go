package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/waggle/internal/reconcile"
	"github.com/roach88/waggle/internal/tui"
)

// NewTUICommand opens the interactive table editor.
func NewTUICommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit goals and datapoints interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}

			app := &tui.App{
				Store:      opts.Client,
				Differ:     reconcile.NewDiffer(),
				Logger:     opts.Logger,
				Now:        time.Now,
				FetchLimit: opts.Config.FetchLimit,
			}
			if err := app.Run(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "interactive editor", err)
			}
			return nil
		},
	}
}

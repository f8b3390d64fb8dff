package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/waggle/internal/backup"
	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/bulk"
	"github.com/roach88/waggle/internal/reconcile"
	"github.com/roach88/waggle/internal/tsv"
)

// NewEditCommand runs the external-editor bulk edit flow for one goal.
func NewEditCommand(opts *RootOptions) *cobra.Command {
	var (
		refresh    bool
		noSnapshot bool
	)

	cmd := &cobra.Command{
		Use:   "edit GOAL",
		Short: "Edit a goal's datapoints in your text editor",
		Long: "Fetches the goal's datapoints into a tab-separated file, opens your\n" +
			"editor on it, and reconciles the result: changed lines update, new\n" +
			"lines create, removed lines delete.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			goal := args[0]
			out := cmd.OutOrStdout()

			session := &bulk.Session{
				Store:      opts.Client,
				Differ:     reconcile.NewDiffer(),
				Editor:     bulk.ExecEditor{Command: opts.Config.EditorCommand()},
				Logger:     opts.Logger,
				FetchLimit: opts.Config.FetchLimit,
			}
			if !noSnapshot {
				store, err := backup.Open(opts.Config.BackupPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "open backup store", err)
				}
				defer store.Close()
				session.Snapshots = store
			}

			result, err := session.Run(cmd.Context(), goal)
			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			if err != nil {
				if tsv.IsFormatError(err) {
					return WrapExitError(ExitFailure, "edited file rejected, nothing was sent", err)
				}
				if reconcile.IsApplyError(err) {
					var apiErr *beeminder.APIError
					if errors.As(err, &apiErr) {
						fmt.Fprintln(cmd.ErrOrStderr(), beeminder.FormatAPIError(apiErr))
					}
					return WrapExitError(ExitFailure, fmt.Sprintf("apply stopped partway (%s)", result.Progress), err)
				}
				return WrapExitError(ExitFailure, "edit "+goal, err)
			}

			if result.Plan.Empty() {
				fmt.Fprintln(out, "no changes")
				return nil
			}
			fmt.Fprintf(out, "%s: %s\n", goal, result.Progress)
			if result.Snapshot != nil {
				fmt.Fprintf(out, "safety snapshot %s (%s)\n", result.Snapshot.ID, fmtCount(result.Snapshot.Count, "datapoint"))
			}

			if refresh {
				if _, err := opts.Client.RefreshGraph(cmd.Context(), goal); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: graph refresh failed: %v\n", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "request a graph refresh after applying")
	cmd.Flags().BoolVar(&noSnapshot, "no-snapshot", false, "skip the pre-apply safety snapshot")
	return cmd
}

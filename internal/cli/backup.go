package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/waggle/internal/backup"
	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/record"
	"github.com/roach88/waggle/internal/tsv"
)

// NewBackupCommand groups the local snapshot operations.
func NewBackupCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up goals locally and inspect snapshots",
	}
	cmd.AddCommand(newBackupRunCommand(opts))
	cmd.AddCommand(newBackupListCommand(opts))
	cmd.AddCommand(newBackupShowCommand(opts))
	return cmd
}

func newBackupRunCommand(opts *RootOptions) *cobra.Command {
	var jsonPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Snapshot every goal's datapoints into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := backup.Open(opts.Config.BackupPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "open backup store", err)
			}
			defer store.Close()

			goals, err := opts.Client.Goals(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "fetch goals", err)
			}

			var archive []backup.GoalBackup
			for _, goal := range goals {
				points, err := opts.Client.Datapoints(ctx, goal.Slug, beeminder.DatapointsOptions{Sort: "timestamp"})
				if err != nil {
					return WrapExitError(ExitFailure, "fetch datapoints for "+goal.Slug, err)
				}
				snap, err := store.WriteSnapshot(ctx, goal.Slug, backup.ReasonBackup, points)
				if err != nil {
					return WrapExitError(ExitFailure, "snapshot "+goal.Slug, err)
				}
				if err := store.WriteGoalSummary(ctx, snap.ID, goal); err != nil {
					return WrapExitError(ExitFailure, "snapshot "+goal.Slug, err)
				}
				fmt.Fprintf(out, "%-20s %s\n", goal.Slug, fmtCount(snap.Count, "datapoint"))
				archive = append(archive, backup.GoalBackup{Summary: goal, Datapoints: points})
			}

			if jsonPath != "" {
				f, err := os.Create(jsonPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "create archive file", err)
				}
				defer f.Close()
				a := backup.NewArchive(opts.Config.Username, time.Now(), archive)
				if err := backup.WriteArchive(f, a); err != nil {
					return WrapExitError(ExitFailure, "write archive", err)
				}
				fmt.Fprintf(out, "archive written to %s\n", jsonPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "also write a portable JSON archive to this path")
	return cmd
}

func newBackupListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [GOAL]",
		Short: "List stored snapshots, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := backup.Open(opts.Config.BackupPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "open backup store", err)
			}
			defer store.Close()

			goal := ""
			if len(args) == 1 {
				goal = args[0]
			}
			snaps, err := store.ListSnapshots(cmd.Context(), goal)
			if err != nil {
				return WrapExitError(ExitFailure, "list snapshots", err)
			}

			out := cmd.OutOrStdout()
			if len(snaps) == 0 {
				fmt.Fprintln(out, "no snapshots")
				return nil
			}
			for _, snap := range snaps {
				fmt.Fprintf(out, "%s  %s  %-20s %-10s %s\n",
					snap.ID,
					snap.CreatedAt.Format(tsv.TimestampLayout),
					snap.Goal, snap.Reason,
					fmtCount(snap.Count, "datapoint"))
			}
			return nil
		},
	}
}

func newBackupShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show SNAPSHOT_ID",
		Short: "Print a snapshot's datapoints as tab-separated text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := backup.Open(opts.Config.BackupPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "open backup store", err)
			}
			defer store.Close()

			points, err := store.SnapshotDatapoints(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "read snapshot", err)
			}
			if len(points) == 0 {
				return NewExitError(ExitFailure, "snapshot is empty or unknown: "+args[0])
			}

			rows := make([]record.Row, len(points))
			for i, dp := range points {
				rows[i] = record.FromDatapoint(dp)
			}
			return tsv.Encode(cmd.OutOrStdout(), rows, tsv.DefaultLocation())
		},
	}
}

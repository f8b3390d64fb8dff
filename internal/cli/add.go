package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/tsv"
)

// NewAddCommand adds a single datapoint to a goal.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	var timestamp string

	cmd := &cobra.Command{
		Use:   "add GOAL VALUE [COMMENT...]",
		Short: "Add one datapoint",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}

			goal := args[0]
			create, err := buildCreate(args[1], strings.Join(args[2:], " "), timestamp, tsv.DefaultLocation())
			if err != nil {
				return WrapExitError(ExitCommandError, "bad datapoint", err)
			}

			dp, err := opts.Client.CreateDatapoint(cmd.Context(), goal, create)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("add datapoint to %s", goal), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s (id %s)\n",
				strconv.FormatFloat(dp.Value, 'g', -1, 64), goal, dp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&timestamp, "timestamp", "",
		fmt.Sprintf("datapoint time as %q, default now", tsv.TimestampLayout))
	return cmd
}

// buildCreate assembles the create request. An empty timestamp lets the
// server stamp the datapoint with its own now.
func buildCreate(valueArg, comment, timestamp string, loc *time.Location) (beeminder.CreateDatapoint, error) {
	value, err := strconv.ParseFloat(valueArg, 64)
	if err != nil {
		return beeminder.CreateDatapoint{}, fmt.Errorf("value %q is not a number", valueArg)
	}

	create := beeminder.CreateDatapoint{
		Value:     value,
		Comment:   comment,
		RequestID: uuid.NewString(),
	}
	if timestamp != "" {
		ts, err := time.ParseInLocation(tsv.TimestampLayout, timestamp, loc)
		if err != nil {
			return beeminder.CreateDatapoint{}, fmt.Errorf("timestamp must match %q", tsv.TimestampLayout)
		}
		create.Timestamp = &ts
	}
	return create, nil
}

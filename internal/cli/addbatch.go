package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/tsv"
)

// NewAddBatchCommand submits many datapoints in a single API call. Input is
// the same tab-separated format the edit command uses; the ID column must
// stay empty since everything here is new.
func NewAddBatchCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add-batch GOAL",
		Short: "Add datapoints in bulk from a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			goal := args[0]

			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return WrapExitError(ExitCommandError, "open input file", err)
				}
				defer f.Close()
				in = f
			}

			points, err := readBatch(in)
			if err != nil {
				return WrapExitError(ExitFailure, "parse input", err)
			}
			if len(points) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to add")
				return nil
			}

			result, err := opts.Client.CreateAllDatapoints(cmd.Context(), goal, points)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("batch add to %s", goal), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", fmtCount(len(result.Successes), "datapoint"), goal)
			if len(result.Errors) > 0 {
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  rejected: %s\n", e)
				}
				return NewExitError(ExitFailure, fmtCount(len(result.Errors), "datapoint")+" rejected")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input file (default stdin)")
	return cmd
}

// readBatch decodes the input and converts every row into a create request.
// Rows carrying an id are refused: batch add never updates.
func readBatch(r io.Reader) ([]beeminder.CreateDatapoint, error) {
	rows, err := tsv.Decode(r, tsv.DefaultLocation())
	if err != nil {
		return nil, err
	}

	points := make([]beeminder.CreateDatapoint, 0, len(rows))
	for _, row := range rows {
		if row.ID != "" {
			return nil, fmt.Errorf("row with id %s: batch add only takes new datapoints", row.ID)
		}
		ts := row.Timestamp
		points = append(points, beeminder.CreateDatapoint{
			Value:     row.Value,
			Timestamp: &ts,
			Comment:   row.Comment,
			RequestID: uuid.NewString(),
		})
	}
	return points, nil
}

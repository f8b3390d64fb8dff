package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/tsv"
)

// NewListCommand lists goals, most urgent first.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var archived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals sorted by urgency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}

			ctx := cmd.Context()
			goals, err := opts.Client.Goals(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "fetch goals", err)
			}
			if archived {
				more, err := opts.Client.ArchivedGoals(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "fetch archived goals", err)
				}
				goals = append(goals, more...)
			}

			sortGoals(goals)
			writeGoalTable(cmd.OutOrStdout(), goals, time.Now(), tsv.DefaultLocation())
			return nil
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "include archived goals")
	return cmd
}

// sortGoals orders by safety buffer ascending, slug as tiebreak.
func sortGoals(goals []beeminder.GoalSummary) {
	sort.SliceStable(goals, func(i, j int) bool {
		if goals[i].Safebuf != goals[j].Safebuf {
			return goals[i].Safebuf < goals[j].Safebuf
		}
		return goals[i].Slug < goals[j].Slug
	})
}

func writeGoalTable(w io.Writer, goals []beeminder.GoalSummary, now time.Time, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  GOAL\tBUFFER\tPLEDGE\tLIMSUM\tTITLE")
	for _, g := range goals {
		fmt.Fprintf(tw, "%s %s\t%dd\t$%g\t%s\t%s\n",
			todayMarker(g, now, loc), g.Slug, g.Safebuf, g.Pledge, g.Limsum, g.Title)
	}
	tw.Flush()
}

// todayMarker is "✓" when the goal already got data today, "•" when a
// datapoint is still queued server-side, and a space otherwise.
func todayMarker(g beeminder.GoalSummary, now time.Time, loc *time.Location) string {
	if g.Queued {
		return "•"
	}
	if sameDay(g.Lastday, now, loc) {
		return "✓"
	}
	return " "
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/waggle/internal/reconcile"
	"github.com/roach88/waggle/internal/testutil"
	"github.com/roach88/waggle/internal/tsv"
	"github.com/roach88/waggle/internal/tui"
)

// Outcome is everything a scenario run produced, for the caller to assert
// on and pin with a golden file.
type Outcome struct {
	Plan     reconcile.Plan
	Warnings []reconcile.Warning
	Ops      []string
	Progress reconcile.Progress
	Err      error
}

// scenarioClock stamps inserted rows in tombstone mode.
var scenarioClock = func() time.Time {
	return time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)
}

// Run executes a scenario against a fake store and returns the outcome.
func Run(ctx context.Context, s *Scenario) (Outcome, error) {
	fetched, err := s.FetchedDatapoints()
	if err != nil {
		return Outcome{}, err
	}

	store := testutil.NewFakeStore(fetched...)
	if s.FailOn != nil {
		store.FailNth(s.FailOn.Op, s.FailOn.Nth, errors.New(s.FailOn.Message))
	}
	ids := testutil.NewRequestIDs()
	differ := &reconcile.Differ{NewRequestID: ids.Next}

	var outcome Outcome
	switch s.Mode {
	case ModeBulk:
		rows, err := tsv.Decode(strings.NewReader(s.File), time.UTC)
		if err != nil {
			return Outcome{}, fmt.Errorf("decode scenario file: %w", err)
		}
		outcome.Plan, outcome.Warnings = differ.DiffAgainstFetched(fetched, rows)
	case ModeTombstone:
		session := tui.NewSession(s.Goal, "", fetched, scenarioClock, time.UTC)
		session.NewRequestID = ids.Next
		if err := applyEdits(session, s.Edits); err != nil {
			return Outcome{}, err
		}
		outcome.Plan = session.Plan(differ)
	}

	outcome.Progress, outcome.Err = reconcile.Apply(ctx, store, s.Goal, outcome.Plan)
	outcome.Ops = store.Ops()
	return outcome, nil
}

func applyEdits(session *tui.Session, edits []Edit) error {
	for i, edit := range edits {
		switch {
		case edit.Set != nil:
			col, err := columnByName(edit.Set.Col)
			if err != nil {
				return fmt.Errorf("edits[%d]: %w", i, err)
			}
			if err := session.CommitEdit(edit.Set.Row, col, edit.Set.Input); err != nil {
				return fmt.Errorf("edits[%d]: %w", i, err)
			}
		case edit.Delete != nil:
			session.ToggleDelete(*edit.Delete)
		case edit.Insert:
			session.InsertRow()
		default:
			return fmt.Errorf("edits[%d]: empty edit step", i)
		}
	}
	return nil
}

func columnByName(name string) (tui.Column, error) {
	switch name {
	case "timestamp":
		return tui.ColTimestamp, nil
	case "value":
		return tui.ColValue, nil
	case "comment":
		return tui.ColComment, nil
	default:
		return 0, fmt.Errorf("unknown column %q", name)
	}
}

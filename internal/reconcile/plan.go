package reconcile

import (
	"fmt"

	"github.com/roach88/waggle/internal/beeminder"
)

// Plan is the full set of remote mutations a round of editing produced.
// Order within each slice is the order rows appeared; Apply preserves it.
type Plan struct {
	Creates []beeminder.CreateDatapoint
	Updates []beeminder.UpdateDatapoint
	Deletes []string
}

// Empty reports whether the plan would perform no remote calls at all.
// Re-diffing an unedited set must land here.
func (p Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Summary renders a one-line count of the plan, e.g. "2 new, 1 updated, 0 deleted".
func (p Plan) Summary() string {
	return fmt.Sprintf("%d new, %d updated, %d deleted",
		len(p.Creates), len(p.Updates), len(p.Deletes))
}

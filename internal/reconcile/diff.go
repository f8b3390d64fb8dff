package reconcile

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/record"
)

// Differ builds plans from edited rows. The only knob is the request-id
// source for creates, injectable so tests can pin deterministic tokens.
type Differ struct {
	// NewRequestID mints the dedup token for creates whose row does not
	// already carry one, so that a retried plan cannot double-insert the
	// same datapoint.
	NewRequestID func() string
}

// NewDiffer returns a Differ minting UUID request ids.
func NewDiffer() *Differ {
	return &Differ{NewRequestID: uuid.NewString}
}

// Warning flags a row the differ could not act on. The row is skipped, not
// treated as an error; the caller decides whether to surface it.
type Warning struct {
	ID      string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.ID, w.Message)
}

// Diff classifies rows that already carry their own snapshots and tombstone
// flags, as the interactive table produces them. Deletes must be explicit:
// a row missing from the slice is simply not part of the plan.
func (d *Differ) Diff(rows []record.Row) Plan {
	var plan Plan
	for _, row := range rows {
		switch record.Classify(row) {
		case record.Create:
			plan.Creates = append(plan.Creates, d.createFor(row))
		case record.Update:
			plan.Updates = append(plan.Updates, updateFor(row))
		case record.Delete:
			plan.Deletes = append(plan.Deletes, row.ID)
		}
	}
	return plan
}

// DiffAgainstFetched reconciles rows decoded from an edited file, which
// carry ids but no snapshots, against the set that was fetched before
// editing. Snapshots are attached by id; a fetched datapoint whose id no
// longer appears in rows is deleted; an id in rows that matches nothing
// fetched yields a Warning and the row is ignored.
func (d *Differ) DiffAgainstFetched(fetched []beeminder.Datapoint, rows []record.Row) (Plan, []Warning) {
	byID := make(map[string]beeminder.Datapoint, len(fetched))
	for _, dp := range fetched {
		byID[dp.ID] = dp
	}

	seen := make(map[string]bool, len(rows))
	var (
		joined   []record.Row
		warnings []Warning
	)
	for _, row := range rows {
		if row.ID == "" {
			joined = append(joined, row)
			continue
		}
		dp, ok := byID[row.ID]
		if !ok {
			warnings = append(warnings, Warning{
				ID:      row.ID,
				Message: "id not found in the fetched datapoints, row ignored",
			})
			continue
		}
		snap := record.Snapshot{
			Timestamp: dp.Timestamp,
			Value:     dp.Value,
			Comment:   dp.Comment,
		}
		row.Original = &snap
		joined = append(joined, row)
		seen[row.ID] = true
	}

	plan := d.Diff(joined)
	for _, dp := range fetched {
		if !seen[dp.ID] {
			plan.Deletes = append(plan.Deletes, dp.ID)
		}
	}
	return plan, warnings
}

// createFor keeps a request id the row already carries; only rows that were
// never stamped (the bulk path decodes them fresh each run) get a new one.
func (d *Differ) createFor(row record.Row) beeminder.CreateDatapoint {
	ts := row.Timestamp
	reqID := row.RequestID
	if reqID == "" {
		reqID = d.NewRequestID()
	}
	return beeminder.CreateDatapoint{
		Value:     row.Value,
		Timestamp: &ts,
		Comment:   row.Comment,
		RequestID: reqID,
	}
}

// updateFor sends only the fields that actually changed. A row that somehow
// carries an id but no snapshot sends everything.
func updateFor(row record.Row) beeminder.UpdateDatapoint {
	up := beeminder.UpdateDatapoint{ID: row.ID}
	orig := row.Original
	if orig == nil || !row.Timestamp.Equal(orig.Timestamp) {
		ts := row.Timestamp
		up.Timestamp = &ts
	}
	if orig == nil || math.Abs(row.Value-orig.Value) > record.ValueEpsilon {
		v := row.Value
		up.Value = &v
	}
	if orig == nil || record.NormalizeComment(row.Comment) != record.NormalizeComment(orig.Comment) {
		c := row.Comment
		up.Comment = &c
	}
	return up
}

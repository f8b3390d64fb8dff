package record

import (
	"math"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/waggle/internal/beeminder"
)

// ValueEpsilon is the tolerance used when comparing datapoint values.
// Values round-trip through text (the TSV file, the cell editor), so exact
// bit equality would flag rows the user never touched.
const ValueEpsilon = 1e-9

// Snapshot is the fetched state of a datapoint, kept for change detection.
type Snapshot struct {
	Timestamp time.Time
	Value     float64
	Comment   string
}

// Row is one locally editable datapoint.
//
// ID is empty for rows that do not exist on the server yet. Original is
// non-nil exactly when ID is non-empty. Deleted is the explicit tombstone
// set by the interactive surface; the bulk surface never sets it and infers
// deletions by omission instead.
type Row struct {
	ID        string
	Timestamp time.Time
	Value     float64
	Comment   string
	Original  *Snapshot
	Deleted   bool

	// RequestID is the dedup token a create will carry. Stamped once when
	// the row enters an editing session, so a plan rebuilt after a partial
	// failure re-sends the same token and the server drops the duplicate.
	RequestID string
}

// FromDatapoint builds a Row from a fetched datapoint, capturing the
// snapshot used for change detection.
func FromDatapoint(dp beeminder.Datapoint) Row {
	return Row{
		ID:        dp.ID,
		Timestamp: dp.Timestamp,
		Value:     dp.Value,
		Comment:   dp.Comment,
		Original: &Snapshot{
			Timestamp: dp.Timestamp,
			Value:     dp.Value,
			Comment:   dp.Comment,
		},
	}
}

// NewRow builds a blank local row: no id, zero value, empty comment.
func NewRow(ts time.Time) Row {
	return Row{Timestamp: ts}
}

// Modified reports whether the row differs from its fetched snapshot.
// Rows without a snapshot are always modified in the sense of needing
// creation. Timestamps compare exactly, values within ValueEpsilon, and
// comments as normalized strings.
func (r Row) Modified() bool {
	if r.Original == nil {
		return true
	}
	if !r.Timestamp.Equal(r.Original.Timestamp) {
		return true
	}
	if math.Abs(r.Value-r.Original.Value) > ValueEpsilon {
		return true
	}
	return NormalizeComment(r.Comment) != NormalizeComment(r.Original.Comment)
}

// NormalizeComment maps a comment to its canonical form for comparison:
// NFC-normalized, with the absent comment and the empty comment collapsing
// to "". External editors and terminals disagree about Unicode normal forms,
// and a re-encoded e-acute is not an edit.
func NormalizeComment(s string) string {
	if s == "" {
		return ""
	}
	return norm.NFC.String(s)
}

// Disposition classifies what a row needs from the remote store.
type Disposition int

const (
	// Unchanged means no remote operation. This also covers a tombstoned
	// row that never existed remotely: discarding it is purely local.
	Unchanged Disposition = iota
	// Create means the row must be created remotely.
	Create
	// Update means the remote datapoint must be updated to the row's fields.
	Update
	// Delete means the remote datapoint must be deleted.
	Delete
)

func (d Disposition) String() string {
	switch d {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unchanged"
	}
}

// Classify maps a row to exactly one disposition. A tombstone wins over any
// field edits, so a row is never both updated and deleted.
func Classify(r Row) Disposition {
	if r.Deleted {
		if r.ID == "" {
			return Unchanged
		}
		return Delete
	}
	if r.ID == "" {
		return Create
	}
	if r.Modified() {
		return Update
	}
	return Unchanged
}

// Marker is the one-character change indicator shown next to a row:
// "+" new, "-" tombstoned, "*" modified, " " untouched.
func (r Row) Marker() string {
	switch {
	case r.Deleted:
		return "-"
	case r.ID == "":
		return "+"
	case r.Modified():
		return "*"
	default:
		return " "
	}
}

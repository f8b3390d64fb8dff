package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/record"
	"github.com/roach88/waggle/internal/reconcile"
	"github.com/roach88/waggle/internal/tsv"
)

// Column identifies an editable cell within a row.
type Column int

const (
	ColTimestamp Column = iota
	ColValue
	ColComment
)

// Columns in display order.
var Columns = [...]Column{ColTimestamp, ColValue, ColComment}

func (c Column) Label() string {
	switch c {
	case ColTimestamp:
		return "TIMESTAMP"
	case ColValue:
		return "VALUE"
	case ColComment:
		return "COMMENT"
	default:
		return "?"
	}
}

// ValidationError is a rejected cell edit. The UI keeps the input buffer
// open so the user can fix it in place.
type ValidationError struct {
	Column Column
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", strings.ToLower(e.Column.Label()), e.Input, e.Reason)
}

// Session is the editing state for one goal's datapoints. It holds rows,
// tombstones and the dirty flag; which cell the cursor sits on is the UI
// layer's business entirely.
type Session struct {
	Goal  string
	Title string

	// NewRequestID stamps a dedup token on each inserted row. The token
	// survives into every plan built from the session, so saving again after
	// a partial failure cannot double-create the row.
	NewRequestID func() string

	rows           []record.Row
	dirty          bool
	confirmDiscard bool

	now func() time.Time
	loc *time.Location
}

// NewSession builds a session over the fetched datapoints. The clock feeds
// timestamps for inserted rows; loc governs how timestamps render and parse.
func NewSession(goal, title string, fetched []beeminder.Datapoint, now func() time.Time, loc *time.Location) *Session {
	rows := make([]record.Row, len(fetched))
	for i, dp := range fetched {
		rows[i] = record.FromDatapoint(dp)
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = tsv.DefaultLocation()
	}
	return &Session{Goal: goal, Title: title, rows: rows, now: now, loc: loc, NewRequestID: uuid.NewString}
}

// Rows exposes the rows for rendering and diffing. Callers must not mutate.
func (s *Session) Rows() []record.Row { return s.rows }

func (s *Session) Len() int { return len(s.rows) }

// Dirty reports whether any edit has landed since the session started.
func (s *Session) Dirty() bool { return s.dirty }

// CellText renders the current content of a cell, the same text BeginEdit
// would seed the input buffer with.
func (s *Session) CellText(row int, col Column) string {
	if row < 0 || row >= len(s.rows) {
		return ""
	}
	r := s.rows[row]
	switch col {
	case ColTimestamp:
		return r.Timestamp.In(s.loc).Format(tsv.TimestampLayout)
	case ColValue:
		return strconv.FormatFloat(r.Value, 'g', -1, 64)
	case ColComment:
		return r.Comment
	default:
		return ""
	}
}

// BeginEdit returns the initial input buffer for a cell, and whether the
// cell exists.
func (s *Session) BeginEdit(row int, col Column) (string, bool) {
	if row < 0 || row >= len(s.rows) {
		return "", false
	}
	return s.CellText(row, col), true
}

// CommitEdit parses the input and writes it into the cell. A parse failure
// returns a *ValidationError and leaves the row untouched. An edit that
// lands a row back on its snapshot does not dirty the session.
func (s *Session) CommitEdit(row int, col Column, input string) error {
	if row < 0 || row >= len(s.rows) {
		return nil
	}
	trimmed := strings.TrimSpace(input)
	r := &s.rows[row]

	switch col {
	case ColTimestamp:
		ts, err := time.ParseInLocation(tsv.TimestampLayout, trimmed, s.loc)
		if err != nil {
			return &ValidationError{Column: col, Input: trimmed, Reason: fmt.Sprintf("must match %q", tsv.TimestampLayout)}
		}
		r.Timestamp = ts
	case ColValue:
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return &ValidationError{Column: col, Input: trimmed, Reason: "not a number"}
		}
		r.Value = v
	case ColComment:
		r.Comment = trimmed
	}

	if r.Modified() {
		s.markDirty()
	}
	return nil
}

// ToggleDelete flips the tombstone on a row. A tombstoned row stays visible
// until the plan is saved.
func (s *Session) ToggleDelete(row int) {
	if row < 0 || row >= len(s.rows) {
		return
	}
	s.rows[row].Deleted = !s.rows[row].Deleted
	s.markDirty()
}

// InsertRow prepends a fresh id-less row stamped with the current time and
// a request id, and returns its index.
func (s *Session) InsertRow() int {
	fresh := record.NewRow(s.now())
	fresh.RequestID = s.NewRequestID()
	s.rows = append([]record.Row{fresh}, s.rows...)
	s.markDirty()
	return 0
}

// Plan builds the mutation plan for the current rows.
func (s *Session) Plan(differ *reconcile.Differ) reconcile.Plan {
	return differ.Diff(s.rows)
}

// RequestDiscard implements the double-Esc guard: with unsaved changes the
// first call arms the confirmation and returns false, the second returns
// true. Clean sessions can always leave.
func (s *Session) RequestDiscard() bool {
	if !s.dirty {
		return true
	}
	if s.confirmDiscard {
		return true
	}
	s.confirmDiscard = true
	return false
}

// DiscardArmed reports whether the next RequestDiscard would succeed, for
// the UI to phrase its warning.
func (s *Session) DiscardArmed() bool { return s.confirmDiscard }

func (s *Session) markDirty() {
	s.dirty = true
	s.confirmDiscard = false
}

// Marker renders the row's state for the leftmost table column.
func (s *Session) Marker(row int) string {
	if row < 0 || row >= len(s.rows) {
		return " "
	}
	return s.rows[row].Marker()
}

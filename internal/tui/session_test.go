package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/reconcile"
	"github.com/roach88/waggle/internal/testutil"
)

var tuiBase = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestSession(fetched ...beeminder.Datapoint) *Session {
	clock := func() time.Time { return tuiBase.Add(24 * time.Hour) }
	return NewSession("running", "Run regularly", fetched, clock, time.UTC)
}

func fetchedPair() []beeminder.Datapoint {
	return []beeminder.Datapoint{
		{ID: "dp_a", Timestamp: tuiBase, Value: 1, Comment: "one"},
		{ID: "dp_b", Timestamp: tuiBase.Add(time.Hour), Value: 2, Comment: "two"},
	}
}

func TestSession_StartsClean(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	assert.False(t, s.Dirty())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.RequestDiscard(), "clean session leaves without confirmation")
}

func TestCellText_RendersInLocation(t *testing.T) {
	s := NewSession("running", "", fetchedPair(), nil, time.FixedZone("UTC+2", 2*3600))
	assert.Equal(t, "2024-03-10 10:00:00", s.CellText(0, ColTimestamp))
	assert.Equal(t, "1", s.CellText(0, ColValue))
	assert.Equal(t, "one", s.CellText(0, ColComment))
}

func TestCommitEdit_ValueChangeMarksDirty(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	require.NoError(t, s.CommitEdit(0, ColValue, "3.5"))
	assert.True(t, s.Dirty())
	assert.Equal(t, 3.5, s.Rows()[0].Value)
	assert.Equal(t, "*", s.Marker(0))
}

func TestCommitEdit_RevertingEditKeepsSessionClean(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	require.NoError(t, s.CommitEdit(0, ColValue, "1"))
	assert.False(t, s.Dirty(), "writing the original value back is not an edit")
}

func TestCommitEdit_BadValueIsValidationError(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	err := s.CommitEdit(0, ColValue, "banana")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ColValue, ve.Column)
	assert.Equal(t, 1.0, s.Rows()[0].Value, "row untouched after rejection")
	assert.False(t, s.Dirty())
}

func TestCommitEdit_BadTimestampIsValidationError(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	err := s.CommitEdit(0, ColTimestamp, "next tuesday")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ColTimestamp, ve.Column)
}

func TestCommitEdit_TimestampParsedInSessionLocation(t *testing.T) {
	s := NewSession("running", "", fetchedPair(), nil, time.FixedZone("UTC+2", 2*3600))
	require.NoError(t, s.CommitEdit(0, ColTimestamp, "2024-03-10 11:00:00"))
	assert.True(t, s.Rows()[0].Timestamp.Equal(tuiBase.Add(time.Hour)))
}

func TestInsertRow_PrependsFreshRowStampedWithClock(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	idx := s.InsertRow()

	assert.Equal(t, 0, idx)
	assert.Equal(t, 3, s.Len())
	fresh := s.Rows()[0]
	assert.Empty(t, fresh.ID)
	assert.True(t, fresh.Timestamp.Equal(tuiBase.Add(24*time.Hour)))
	assert.Equal(t, "+", s.Marker(0))
	assert.True(t, s.Dirty())
}

func TestToggleDelete_TombstonesAndRestores(t *testing.T) {
	s := newTestSession(fetchedPair()...)

	s.ToggleDelete(1)
	assert.Equal(t, "-", s.Marker(1))
	assert.True(t, s.Dirty())

	s.ToggleDelete(1)
	assert.Equal(t, " ", s.Marker(1))
}

func TestPlan_CollectsAllDispositions(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	require.NoError(t, s.CommitEdit(0, ColValue, "9"))
	s.ToggleDelete(1)
	idx := s.InsertRow()
	require.NoError(t, s.CommitEdit(idx, ColValue, "4"))

	differ := &reconcile.Differ{NewRequestID: testutil.NewRequestIDs().Next}
	plan := s.Plan(differ)
	assert.Len(t, plan.Creates, 1)
	assert.Len(t, plan.Updates, 1)
	assert.Equal(t, []string{"dp_b"}, plan.Deletes)
	assert.Equal(t, "1 new, 1 updated, 1 deleted", plan.Summary())
}

func TestPlan_RequestIDSurvivesRebuild(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	s.NewRequestID = testutil.NewRequestIDs().Next
	idx := s.InsertRow()
	require.NoError(t, s.CommitEdit(idx, ColValue, "4"))

	differ := &reconcile.Differ{NewRequestID: testutil.NewRequestIDs().Next}
	first := s.Plan(differ)
	require.Len(t, first.Creates, 1)
	assert.Equal(t, "req-1", first.Creates[0].RequestID)

	// Saving again after a partial failure rebuilds the plan from the same
	// rows; the create must carry the same token so the server dedups it.
	require.NoError(t, s.CommitEdit(idx, ColComment, "second try"))
	second := s.Plan(differ)
	require.Len(t, second.Creates, 1)
	assert.Equal(t, first.Creates[0].RequestID, second.Creates[0].RequestID)
}

func TestPlan_TombstonedFreshRowDisappears(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	idx := s.InsertRow()
	s.ToggleDelete(idx)

	differ := &reconcile.Differ{NewRequestID: testutil.NewRequestIDs().Next}
	assert.True(t, s.Plan(differ).Empty())
}

func TestRequestDiscard_DoubleConfirmation(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	require.NoError(t, s.CommitEdit(0, ColValue, "9"))

	assert.False(t, s.RequestDiscard(), "first request arms the guard")
	assert.True(t, s.DiscardArmed())
	assert.True(t, s.RequestDiscard(), "second request goes through")
}

func TestRequestDiscard_EditDisarmsGuard(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	require.NoError(t, s.CommitEdit(0, ColValue, "9"))
	require.False(t, s.RequestDiscard())

	require.NoError(t, s.CommitEdit(0, ColValue, "10"))
	assert.False(t, s.DiscardArmed())
	assert.False(t, s.RequestDiscard(), "new edit re-arms the confirmation")
}

func TestBeginEdit_OutOfRange(t *testing.T) {
	s := newTestSession(fetchedPair()...)
	_, ok := s.BeginEdit(99, ColValue)
	assert.False(t, ok)
}

package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/testutil"
)

func TestApply_EmptyPlanMakesNoCalls(t *testing.T) {
	store := testutil.NewFakeStore()

	progress, err := Apply(context.Background(), store, "running", Plan{})
	require.NoError(t, err)
	assert.Equal(t, Progress{}, progress)
	assert.Empty(t, store.Calls())
}

func TestApply_OrderIsCreatesThenUpdatesThenDeletes(t *testing.T) {
	store := testutil.NewFakeStore()
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	v := 2.0
	plan := Plan{
		Creates: []beeminder.CreateDatapoint{{Value: 1, Timestamp: &ts, RequestID: "req-1"}},
		Updates: []beeminder.UpdateDatapoint{{ID: "u1", Value: &v}},
		Deletes: []string{"d1", "d2"},
	}

	progress, err := Apply(context.Background(), store, "running", plan)
	require.NoError(t, err)
	assert.Equal(t, Progress{Creates: 1, Updates: 1, Deletes: 2}, progress)
	assert.Equal(t, []string{"create", "update", "delete", "delete"}, store.Ops())
}

func TestApply_StopsAtFirstFailureWithPartialProgress(t *testing.T) {
	store := testutil.NewFakeStore()
	boom := errors.New("422 from server")
	store.FailNth("create", 2, boom)

	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	plan := Plan{
		Creates: []beeminder.CreateDatapoint{
			{Value: 1, Timestamp: &ts, RequestID: "req-1"},
			{Value: 2, Timestamp: &ts, RequestID: "req-2"},
		},
		Deletes: []string{"d1"},
	}

	progress, err := Apply(context.Background(), store, "running", plan)
	require.Error(t, err)
	assert.Equal(t, Progress{Creates: 1}, progress)

	var ae *ApplyError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, Progress{Creates: 1}, ae.Progress)
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsApplyError(err))

	// Nothing after the failing call ran, so the delete never happened.
	assert.Equal(t, []string{"create"}, store.Ops())
}

func TestApply_DeleteFailureReportsEarlierWork(t *testing.T) {
	store := testutil.NewFakeStore()
	boom := errors.New("not found")
	store.FailID("delete", "gone", boom)

	v := 3.0
	plan := Plan{
		Updates: []beeminder.UpdateDatapoint{{ID: "u1", Value: &v}},
		Deletes: []string{"gone"},
	}

	progress, err := Apply(context.Background(), store, "running", plan)
	require.Error(t, err)
	assert.Equal(t, Progress{Updates: 1}, progress)

	var ae *ApplyError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Op, "gone")
}

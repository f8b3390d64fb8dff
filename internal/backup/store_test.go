package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waggle/internal/beeminder"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "backup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// Pin clock and id source so assertions are exact.
	seq := 0
	store.newID = func() string {
		seq++
		return fmt.Sprintf("snap-%d", seq)
	}
	store.now = func() time.Time {
		return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return store
}

func sampleDatapoints() []beeminder.Datapoint {
	return []beeminder.Datapoint{
		{
			ID:        "dp_a",
			Timestamp: time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
			Value:     1.5,
			Comment:   "morning",
			Daystamp:  "20240309",
			UpdatedAt: time.Date(2024, 3, 9, 8, 1, 0, 0, time.UTC),
		},
		{
			ID:        "dp_b",
			Timestamp: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
			Value:     2,
			Daystamp:  "20240310",
			UpdatedAt: time.Date(2024, 3, 10, 8, 1, 0, 0, time.UTC),
		},
	}
}

func TestWriteSnapshot_RoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	snap, err := store.WriteSnapshot(ctx, "running", ReasonPreApply, sampleDatapoints())
	require.NoError(t, err)
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, 2, snap.Count)

	points, err := store.SnapshotDatapoints(ctx, snap.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "dp_a", points[0].ID)
	assert.Equal(t, 1.5, points[0].Value)
	assert.Equal(t, "morning", points[0].Comment)
	assert.True(t, points[0].Timestamp.Equal(time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)))
}

func TestWriteSnapshot_EmptyGoalStillRecorded(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	snap, err := store.WriteSnapshot(ctx, "empty", ReasonBackup, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Count)

	snaps, err := store.ListSnapshots(ctx, "empty")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 0, snaps[0].Count)
}

func TestListSnapshots_NewestFirstAndFiltered(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	i := 0
	store.now = func() time.Time { t := times[i]; i++; return t }

	_, err := store.WriteSnapshot(ctx, "running", ReasonBackup, nil)
	require.NoError(t, err)
	_, err = store.WriteSnapshot(ctx, "reading", ReasonBackup, nil)
	require.NoError(t, err)
	_, err = store.WriteSnapshot(ctx, "running", ReasonPreApply, nil)
	require.NoError(t, err)

	all, err := store.ListSnapshots(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "snap-3", all[0].ID, "newest first")

	running, err := store.ListSnapshots(ctx, "running")
	require.NoError(t, err)
	require.Len(t, running, 2)
	for _, snap := range running {
		assert.Equal(t, "running", snap.Goal)
	}
}

func TestWriteGoalSummary(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	snap, err := store.WriteSnapshot(ctx, "running", ReasonBackup, nil)
	require.NoError(t, err)

	err = store.WriteGoalSummary(ctx, snap.ID, beeminder.GoalSummary{
		Slug:      "running",
		Title:     "Run regularly",
		GoalType:  "hustler",
		Limsum:    "+2 in 3 days",
		Safebuf:   3,
		Pledge:    5,
		UpdatedAt: time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestWriteArchive_Shape(t *testing.T) {
	archive := NewArchive("alice", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), []GoalBackup{
		{
			Summary:    beeminder.GoalSummary{Slug: "running"},
			Datapoints: sampleDatapoints(),
		},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, archive))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "alice", decoded["username"])
	goals, ok := decoded["goals"].([]any)
	require.True(t, ok)
	assert.Len(t, goals, 1)
}

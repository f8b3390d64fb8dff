package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/waggle/internal/beeminder"
)

// Snapshot identifies one saved copy of a goal's datapoints.
type Snapshot struct {
	ID        string
	Goal      string
	Reason    string
	CreatedAt time.Time
	Count     int
}

// Reasons attached to snapshots; free-form strings, these are the two the
// tool itself writes.
const (
	ReasonPreApply = "pre-apply"
	ReasonBackup   = "backup"
)

// WriteSnapshot stores a full copy of a goal's datapoints in one
// transaction and returns the snapshot row.
func (s *Store) WriteSnapshot(ctx context.Context, goal, reason string, points []beeminder.Datapoint) (Snapshot, error) {
	snap := Snapshot{
		ID:        s.newID(),
		Goal:      goal,
		Reason:    reason,
		CreatedAt: s.now().UTC().Truncate(time.Second),
		Count:     len(points),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, goal_slug, reason, created_at)
		VALUES (?, ?, ?, ?)
	`, snap.ID, snap.Goal, snap.Reason, snap.CreatedAt.Unix())
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}

	for _, dp := range points {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_datapoints
			(snapshot_id, datapoint_id, timestamp, value, comment, daystamp, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, snap.ID, dp.ID, dp.Timestamp.Unix(), dp.Value, dp.Comment, dp.Daystamp, dp.UpdatedAt.Unix())
		if err != nil {
			return Snapshot{}, fmt.Errorf("write snapshot datapoint %s: %w", dp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}
	return snap, nil
}

// WriteGoalSummary attaches the goal's state at backup time to a snapshot.
func (s *Store) WriteGoalSummary(ctx context.Context, snapshotID string, g beeminder.GoalSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot_goals
		(snapshot_id, slug, title, goal_type, limsum, safebuf, pledge, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshotID, g.Slug, g.Title, g.GoalType, g.Limsum, g.Safebuf, g.Pledge, g.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("write goal summary %s: %w", g.Slug, err)
	}
	return nil
}

package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/waggle/internal/beeminder"
)

// ListSnapshots returns snapshots newest first. An empty goal lists all
// goals.
func (s *Store) ListSnapshots(ctx context.Context, goal string) ([]Snapshot, error) {
	query := `
		SELECT s.id, s.goal_slug, s.reason, s.created_at, COUNT(d.datapoint_id)
		FROM snapshots s
		LEFT JOIN snapshot_datapoints d ON d.snapshot_id = s.id
	`
	var args []any
	if goal != "" {
		query += " WHERE s.goal_slug = ?"
		args = append(args, goal)
	}
	query += " GROUP BY s.id ORDER BY s.created_at DESC, s.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var createdAt int64
		if err := rows.Scan(&snap.ID, &snap.Goal, &snap.Reason, &createdAt, &snap.Count); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		snap.CreatedAt = time.Unix(createdAt, 0).UTC()
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// SnapshotDatapoints returns the datapoints saved under a snapshot, oldest
// timestamp first.
func (s *Store) SnapshotDatapoints(ctx context.Context, snapshotID string) ([]beeminder.Datapoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT datapoint_id, timestamp, value, comment, daystamp, updated_at
		FROM snapshot_datapoints
		WHERE snapshot_id = ?
		ORDER BY timestamp, datapoint_id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", snapshotID, err)
	}
	defer rows.Close()

	var points []beeminder.Datapoint
	for rows.Next() {
		var dp beeminder.Datapoint
		var ts, updatedAt int64
		if err := rows.Scan(&dp.ID, &ts, &dp.Value, &dp.Comment, &dp.Daystamp, &updatedAt); err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", snapshotID, err)
		}
		dp.Timestamp = time.Unix(ts, 0).UTC()
		dp.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		points = append(points, dp)
	}
	return points, rows.Err()
}

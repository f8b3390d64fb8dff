package bulk

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/waggle/internal/backup"
	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/record"
	"github.com/roach88/waggle/internal/reconcile"
	"github.com/roach88/waggle/internal/tsv"
)

// RemoteStore is what a bulk session needs from the API: one fetch plus the
// three mutations the executor performs.
type RemoteStore interface {
	Datapoints(ctx context.Context, goal string, opts beeminder.DatapointsOptions) ([]beeminder.Datapoint, error)
	reconcile.RemoteStore
}

// SnapshotStore receives the pre-apply safety copy. Nil disables it.
type SnapshotStore interface {
	WriteSnapshot(ctx context.Context, goal, reason string, points []beeminder.Datapoint) (backup.Snapshot, error)
}

// Session holds the collaborators for one or more bulk edit runs.
type Session struct {
	Store      RemoteStore
	Differ     *reconcile.Differ
	Editor     Editor
	Location   *time.Location
	Logger     *zap.Logger
	Snapshots  SnapshotStore
	FetchLimit int
}

// Result reports what a run decided and did. Progress is meaningful even
// when Run returns an error: it counts the mutations the server
// acknowledged before the failure.
type Result struct {
	Fetched  int
	Plan     reconcile.Plan
	Warnings []reconcile.Warning
	Snapshot *backup.Snapshot
	Progress reconcile.Progress
}

// Run executes one bulk edit round for a goal: fetch, render, edit,
// reconcile, apply. A file that fails to parse aborts before any remote
// call. An empty plan ends the run without touching the server.
func (s *Session) Run(ctx context.Context, goal string) (Result, error) {
	var result Result

	fetched, err := s.Store.Datapoints(ctx, goal, beeminder.DatapointsOptions{
		Sort:  "timestamp",
		Count: s.FetchLimit,
	})
	if err != nil {
		return result, fmt.Errorf("fetch datapoints for %s: %w", goal, err)
	}
	result.Fetched = len(fetched)

	rows := make([]record.Row, len(fetched))
	for i, dp := range fetched {
		rows[i] = record.FromDatapoint(dp)
	}

	path, err := s.writeEditFile(goal, rows)
	if err != nil {
		return result, err
	}

	if err := s.Editor.Edit(ctx, path); err != nil {
		os.Remove(path)
		return result, fmt.Errorf("launch editor: %w", err)
	}

	edited, err := s.readEditFile(path)
	if err != nil {
		// Leave the file in place so the edits are not lost.
		s.Logger.Warn("edited file rejected, keeping it for recovery",
			zap.String("goal", goal),
			zap.String("path", path),
			zap.Error(err))
		return result, err
	}

	plan, warnings := s.Differ.DiffAgainstFetched(fetched, edited)
	result.Plan = plan
	result.Warnings = warnings
	for _, w := range warnings {
		s.Logger.Warn("row ignored", zap.String("goal", goal), zap.String("id", w.ID), zap.String("reason", w.Message))
	}

	if plan.Empty() {
		os.Remove(path)
		return result, nil
	}

	if s.Snapshots != nil {
		snap, err := s.Snapshots.WriteSnapshot(ctx, goal, backup.ReasonPreApply, fetched)
		if err != nil {
			os.Remove(path)
			return result, fmt.Errorf("write safety snapshot: %w", err)
		}
		result.Snapshot = &snap
		s.Logger.Debug("safety snapshot written",
			zap.String("goal", goal),
			zap.String("snapshot", snap.ID),
			zap.Int("datapoints", snap.Count))
	}

	progress, err := reconcile.Apply(ctx, s.Store, goal, plan)
	result.Progress = progress
	if err != nil {
		s.Logger.Warn("apply stopped partway, keeping edited file",
			zap.String("goal", goal),
			zap.String("path", path),
			zap.String("progress", progress.String()),
			zap.Error(err))
		return result, err
	}

	os.Remove(path)
	return result, nil
}

func (s *Session) writeEditFile(goal string, rows []record.Row) (string, error) {
	f, err := os.CreateTemp("", "waggle-"+goal+"-*.tsv")
	if err != nil {
		return "", fmt.Errorf("create edit file: %w", err)
	}
	if err := tsv.Encode(f, rows, s.location()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write edit file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write edit file: %w", err)
	}
	return f.Name(), nil
}

func (s *Session) readEditFile(path string) ([]record.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reopen edited file: %w", err)
	}
	defer f.Close()
	return tsv.Decode(f, s.location())
}

func (s *Session) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return tsv.DefaultLocation()
}

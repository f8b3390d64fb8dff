package reconcile

import (
	"context"
	"fmt"

	"github.com/roach88/waggle/internal/beeminder"
)

// RemoteStore is the slice of the API the executor needs. *beeminder.Client
// satisfies it; tests swap in a fake.
type RemoteStore interface {
	CreateDatapoint(ctx context.Context, goal string, dp beeminder.CreateDatapoint) (beeminder.Datapoint, error)
	UpdateDatapoint(ctx context.Context, goal string, up beeminder.UpdateDatapoint) (beeminder.Datapoint, error)
	DeleteDatapoint(ctx context.Context, goal, id string) (beeminder.Datapoint, error)
}

// Progress counts mutations that were acknowledged by the server. On a
// partial failure it tells the user exactly how far the plan got.
type Progress struct {
	Creates int
	Updates int
	Deletes int
}

func (p Progress) String() string {
	return fmt.Sprintf("%d created, %d updated, %d deleted", p.Creates, p.Updates, p.Deletes)
}

// Apply executes a plan sequentially: all creates, then all updates, then
// all deletes. The first failing call stops execution; the returned error is
// an *ApplyError carrying the progress made up to that point. Nothing is
// rolled back and nothing is retried.
func Apply(ctx context.Context, store RemoteStore, goal string, plan Plan) (Progress, error) {
	var progress Progress
	for _, dp := range plan.Creates {
		if _, err := store.CreateDatapoint(ctx, goal, dp); err != nil {
			return progress, &ApplyError{Progress: progress, Op: "create datapoint", Err: err}
		}
		progress.Creates++
	}
	for _, up := range plan.Updates {
		if _, err := store.UpdateDatapoint(ctx, goal, up); err != nil {
			return progress, &ApplyError{Progress: progress, Op: fmt.Sprintf("update datapoint %s", up.ID), Err: err}
		}
		progress.Updates++
	}
	for _, id := range plan.Deletes {
		if _, err := store.DeleteDatapoint(ctx, goal, id); err != nil {
			return progress, &ApplyError{Progress: progress, Op: fmt.Sprintf("delete datapoint %s", id), Err: err}
		}
		progress.Deletes++
	}
	return progress, nil
}

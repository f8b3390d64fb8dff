package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/waggle/internal/beeminder"
)

// Call records one remote mutation in arrival order.
type Call struct {
	Op     string // "create", "update" or "delete"
	Goal   string
	ID     string
	Create beeminder.CreateDatapoint
	Update beeminder.UpdateDatapoint
}

// FakeStore is an in-memory stand-in for the API client. It records every
// mutation, serves a seeded datapoint list, and can be told to fail a
// specific call so partial-progress paths get exercised.
type FakeStore struct {
	mu    sync.Mutex
	seed  []beeminder.Datapoint
	calls []Call
	seq   int

	failNth map[string]int // op -> 1-based call number that fails
	failErr map[string]error
	failID  map[string]error // "op:id" -> error
	counts  map[string]int
}

func NewFakeStore(seed ...beeminder.Datapoint) *FakeStore {
	return &FakeStore{
		seed:    seed,
		failNth: map[string]int{},
		failErr: map[string]error{},
		failID:  map[string]error{},
		counts:  map[string]int{},
	}
}

// FailNth makes the n-th call (1-based) of op fail with err.
func (s *FakeStore) FailNth(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNth[op] = n
	s.failErr[op] = err
}

// FailID makes any op call touching the given datapoint id fail with err.
func (s *FakeStore) FailID(op, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failID[op+":"+id] = err
}

// Calls returns a copy of the mutation log.
func (s *FakeStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Ops returns just the op names from the log, in order.
func (s *FakeStore) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, len(s.calls))
	for i, c := range s.calls {
		ops[i] = c.Op
	}
	return ops
}

func (s *FakeStore) Datapoints(ctx context.Context, goal string, opts beeminder.DatapointsOptions) ([]beeminder.Datapoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]beeminder.Datapoint, len(s.seed))
	copy(out, s.seed)
	return out, nil
}

func (s *FakeStore) CreateDatapoint(ctx context.Context, goal string, dp beeminder.CreateDatapoint) (beeminder.Datapoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("create", ""); err != nil {
		return beeminder.Datapoint{}, err
	}
	s.calls = append(s.calls, Call{Op: "create", Goal: goal, Create: dp})
	s.seq++
	created := beeminder.Datapoint{
		ID:        fmt.Sprintf("fake-%d", s.seq),
		Value:     dp.Value,
		Comment:   dp.Comment,
		RequestID: dp.RequestID,
	}
	if dp.Timestamp != nil {
		created.Timestamp = *dp.Timestamp
	}
	return created, nil
}

func (s *FakeStore) UpdateDatapoint(ctx context.Context, goal string, up beeminder.UpdateDatapoint) (beeminder.Datapoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("update", up.ID); err != nil {
		return beeminder.Datapoint{}, err
	}
	s.calls = append(s.calls, Call{Op: "update", Goal: goal, ID: up.ID, Update: up})
	return beeminder.Datapoint{ID: up.ID}, nil
}

func (s *FakeStore) DeleteDatapoint(ctx context.Context, goal, id string) (beeminder.Datapoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFail("delete", id); err != nil {
		return beeminder.Datapoint{}, err
	}
	s.calls = append(s.calls, Call{Op: "delete", Goal: goal, ID: id})
	return beeminder.Datapoint{ID: id}, nil
}

// checkFail must be called with the mutex held. A failing call is counted
// but not logged; it never reached the server.
func (s *FakeStore) checkFail(op, id string) error {
	if id != "" {
		if err, ok := s.failID[op+":"+id]; ok {
			return err
		}
	}
	s.counts[op]++
	if n, ok := s.failNth[op]; ok && s.counts[op] == n {
		return s.failErr[op]
	}
	return nil
}

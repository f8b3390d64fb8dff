package testutil

import (
	"fmt"
	"sync"
)

// RequestIDs mints deterministic request-id tokens ("req-1", "req-2", ...)
// so diff output can be asserted byte for byte. Production code mints UUIDs.
//
// Thread-safe and resettable, so one source can serve several subtests.
type RequestIDs struct {
	mu  sync.Mutex
	seq int
}

// NewRequestIDs returns a source whose first token is "req-1".
func NewRequestIDs() *RequestIDs {
	return &RequestIDs{}
}

// Next returns the next token in sequence.
func (r *RequestIDs) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("req-%d", r.seq)
}

// Reset starts the sequence over from "req-1".
func (r *RequestIDs) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = 0
}

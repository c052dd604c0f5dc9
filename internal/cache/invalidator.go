package cache

import (
	"context"
	"sync"
)

// Invalidator signals downstream caches that a set of tags is stale.
// Delivery is fire-and-forget: callers log failures and move on, no
// acknowledgement is expected.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// NoopInvalidator is used when no cache layer is configured.
type NoopInvalidator struct{}

func NewNoopInvalidator() *NoopInvalidator {
	return &NoopInvalidator{}
}

func (n *NoopInvalidator) Invalidate(ctx context.Context, tags ...string) error {
	return nil
}

// RecordingInvalidator collects tags in memory. Used by tests to assert
// which entities a workflow touched.
type RecordingInvalidator struct {
	mu   sync.Mutex
	tags []string
}

func NewRecordingInvalidator() *RecordingInvalidator {
	return &RecordingInvalidator{}
}

func (r *RecordingInvalidator) Invalidate(ctx context.Context, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tags...)
	return nil
}

// Tags returns a copy of everything invalidated so far.
func (r *RecordingInvalidator) Tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// Reset clears the recorded tags.
func (r *RecordingInvalidator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = nil
}

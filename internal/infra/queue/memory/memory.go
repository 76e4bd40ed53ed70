// Package memory provides an in-process queue implementation used by tests
// and local development runs without Redis. It mirrors the Redis queue's
// delivery semantics, including lease-based redelivery of abandoned claims.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openrpa/botkit/internal/infra/queue"
)

// Failure records a terminal MarkFailed call.
type Failure struct {
	ID      string
	Kind    queue.FailKind
	Code    string
	Message string
}

// Queue is a mutex-guarded in-memory queue.
type Queue struct {
	// Lease bounds how long a claim may stay unresolved before the item
	// becomes eligible for redelivery.
	Lease time.Duration

	// Now supplies the clock; tests override it to expire leases.
	Now func() time.Time

	mu          sync.Mutex
	maxAttempts int

	pending  []string
	claims   map[string]time.Time
	payloads map[string]map[string]any
	attempts map[string]int

	Done   []string
	Failed []Failure
}

// New creates an empty in-memory queue with the given retry cap.
func New(maxAttempts int) *Queue {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Queue{
		Lease:       5 * time.Minute,
		Now:         time.Now,
		maxAttempts: maxAttempts,
		claims:      make(map[string]time.Time),
		payloads:    make(map[string]map[string]any),
		attempts:    make(map[string]int),
	}
}

// Enqueue stores the payload and returns a fresh id.
func (q *Queue) Enqueue(_ context.Context, payload map[string]any) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := uuid.NewString()
	q.payloads[id] = payload
	q.pending = append(q.pending, id)
	return id, nil
}

// DequeueNext claims the oldest pending item, first reclaiming any item
// whose previous claim expired.
func (q *Queue) DequeueNext(_ context.Context) (*queue.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.reclaimExpired()

	if len(q.pending) == 0 {
		return nil, nil
	}

	id := q.pending[0]
	q.pending = q.pending[1:]
	q.claims[id] = q.Now().Add(q.Lease)
	q.attempts[id]++

	return &queue.Message{ID: id, Payload: q.payloads[id], Attempt: q.attempts[id]}, nil
}

func (q *Queue) reclaimExpired() {
	now := q.Now()
	for id, deadline := range q.claims {
		if deadline.Before(now) {
			delete(q.claims, id)
			q.pending = append(q.pending, id)
		}
	}
}

// MarkDone resolves a claimed item as processed.
func (q *Queue) MarkDone(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.claims, id)
	delete(q.payloads, id)
	q.Done = append(q.Done, id)
	return nil
}

// MarkFailed resolves a claimed item as failed, requeueing retryable kinds
// until the attempt cap is reached.
func (q *Queue) MarkFailed(
	_ context.Context,
	id string,
	kind queue.FailKind,
	code, message string,
) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.claims, id)

	if kind != queue.FailBusiness && q.attempts[id] < q.maxAttempts {
		q.pending = append(q.pending, id)
		return nil
	}

	delete(q.payloads, id)
	q.Failed = append(q.Failed, Failure{ID: id, Kind: kind, Code: code, Message: message})
	return nil
}

// PendingCount returns the number of items waiting in the queue.
func (q *Queue) PendingCount(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.pending)), nil
}

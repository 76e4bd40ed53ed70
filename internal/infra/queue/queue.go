// Package queue defines the work-item queue consumed by the bot roles.
//
// The queue is the single source of truth for work-item state: the bot never
// stores item state itself. Implementations must guarantee at most one
// active claim per item at a time; a claimed item that is neither marked
// done nor failed becomes eligible for redelivery after its lease expires.
package queue

import "context"

// Message is a claimed work item as delivered by the queue.
type Message struct {
	ID      string
	Payload map[string]any
	// Attempt counts deliveries of this item, starting at 1.
	Attempt int
}

// FailKind mirrors the failure taxonomy at the queue boundary.
type FailKind string

const (
	FailApplication FailKind = "application"
	FailBusiness    FailKind = "business"
	FailUnexpected  FailKind = "unexpected"
)

// Enqueuer creates new work items.
type Enqueuer interface {
	// Enqueue stores the payload as a new item and returns its id.
	Enqueue(ctx context.Context, payload map[string]any) (string, error)
}

// Queue is the full work-item queue contract.
type Queue interface {
	Enqueuer

	// DequeueNext claims the next pending item, or returns (nil, nil)
	// when the queue is drained.
	DequeueNext(ctx context.Context) (*Message, error)

	// MarkDone resolves a claimed item as successfully processed.
	MarkDone(ctx context.Context, id string) error

	// MarkFailed resolves a claimed item as failed. Application and
	// unexpected failures are eligible for redelivery per the queue's
	// retry policy; business failures are terminal.
	MarkFailed(ctx context.Context, id string, kind FailKind, code, message string) error
}

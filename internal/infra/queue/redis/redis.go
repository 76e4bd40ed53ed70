// Package redis implements the work-item queue on top of Redis.
//
// Each stream keeps a pending list and a processing sorted set scored by
// lease deadline. Claiming an item atomically pops it from pending and
// records its lease, so at most one consumer holds an item at a time; a
// claim that is neither marked done nor failed is reclaimed back to pending
// once its lease expires. Payloads live in per-item keys and are deleted
// when the item reaches a terminal state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openrpa/botkit/internal/infra/queue"
)

// Config holds Redis queue configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	// MaxAttempts bounds redelivery of retryable failures. 0 means the
	// default of 3.
	MaxAttempts int `yaml:"max_attempts"`
	// Lease bounds how long a claimed item may stay unresolved before it
	// becomes eligible for redelivery. 0 means the default of 5 minutes.
	Lease time.Duration `yaml:"lease"`
}

// Client wraps a Redis connection shared by all streams of one run.
type Client struct {
	rdb         *redis.Client
	maxAttempts int
	lease       time.Duration
}

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	lease := cfg.Lease
	if lease <= 0 {
		lease = 5 * time.Minute
	}

	return &Client{rdb: rdb, maxAttempts: maxAttempts, lease: lease}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Stream returns the queue for one named item stream.
func (c *Client) Stream(name string) *Stream {
	return &Stream{rdb: c.rdb, name: name, maxAttempts: c.maxAttempts, lease: c.lease}
}

// Stream implements queue.Queue for a single item stream.
type Stream struct {
	rdb         *redis.Client
	name        string
	maxAttempts int
	lease       time.Duration
}

// Key helpers
func (s *Stream) pendingKey() string {
	return fmt.Sprintf("botkit:%s:pending", s.name)
}

func (s *Stream) processingKey() string {
	return fmt.Sprintf("botkit:%s:processing", s.name)
}

func (s *Stream) itemKey(id string) string {
	return fmt.Sprintf("botkit:%s:item:%s", s.name, id)
}

func (s *Stream) attemptsKey(id string) string {
	return fmt.Sprintf("botkit:%s:attempts:%s", s.name, id)
}

func (s *Stream) failedKey() string {
	return fmt.Sprintf("botkit:%s:failed", s.name)
}

// claimScript pops the next pending id and records its lease deadline in
// one atomic step, so a crash can never lose an item between the two.
var claimScript = redis.NewScript(`
local id = redis.call('RPOP', KEYS[1])
if not id then
  return false
end
redis.call('ZADD', KEYS[2], ARGV[1], id)
return id
`)

// Enqueue stores the payload under a fresh id and pushes it onto the
// pending list.
func (s *Stream) Enqueue(ctx context.Context, payload map[string]any) (string, error) {
	id := uuid.NewString()

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	if err := s.rdb.Set(ctx, s.itemKey(id), data, 0).Err(); err != nil {
		return "", fmt.Errorf("failed to store item payload: %w", err)
	}
	if err := s.rdb.LPush(ctx, s.pendingKey(), id).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue item: %w", err)
	}
	return id, nil
}

// DequeueNext claims the oldest pending item under a fresh lease, first
// reclaiming any item whose previous claim expired.
func (s *Stream) DequeueNext(ctx context.Context) (*queue.Message, error) {
	if err := s.reclaimExpired(ctx); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(s.lease).UnixMilli()
	res, err := claimScript.Run(ctx, s.rdb,
		[]string{s.pendingKey(), s.processingKey()}, deadline).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim item: %w", err)
	}
	id, ok := res.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected claim result %T", res)
	}

	// Failures past this point leave the claim leased: the item comes
	// back via reclaimExpired once the lease runs out.
	data, err := s.rdb.Get(ctx, s.itemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load payload for item %s: %w", id, err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("invalid payload for item %s: %w", id, err)
	}

	attempt, err := s.rdb.Incr(ctx, s.attemptsKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count attempt for item %s: %w", id, err)
	}

	return &queue.Message{ID: id, Payload: payload, Attempt: int(attempt)}, nil
}

// reclaimExpired moves items whose lease deadline has passed back to the
// pending list. ZRem arbitrates between concurrent reclaimers: only the
// caller that removes the claim requeues the item.
func (s *Stream) reclaimExpired(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	ids, err := s.rdb.ZRangeByScore(ctx, s.processingKey(),
		&redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return fmt.Errorf("failed to scan expired claims: %w", err)
	}

	for _, id := range ids {
		removed, err := s.rdb.ZRem(ctx, s.processingKey(), id).Result()
		if err != nil {
			return fmt.Errorf("failed to release expired claim %s: %w", id, err)
		}
		if removed == 0 {
			continue
		}
		if err := s.rdb.LPush(ctx, s.pendingKey(), id).Err(); err != nil {
			return fmt.Errorf("failed to requeue expired item %s: %w", id, err)
		}
	}
	return nil
}

// MarkDone releases the item's claim and deletes its state.
func (s *Stream) MarkDone(ctx context.Context, id string) error {
	if err := s.rdb.ZRem(ctx, s.processingKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to release item %s: %w", id, err)
	}
	if err := s.rdb.Del(ctx, s.itemKey(id), s.attemptsKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

type failedRecord struct {
	Kind     string `json:"kind"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Attempts int    `json:"attempts"`
}

// MarkFailed resolves a claimed item as failed. Retryable kinds go back to
// the pending list until the attempt cap is reached; business failures and
// exhausted items land in the failed hash.
func (s *Stream) MarkFailed(
	ctx context.Context,
	id string,
	kind queue.FailKind,
	code, message string,
) error {
	if err := s.rdb.ZRem(ctx, s.processingKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to release item %s: %w", id, err)
	}

	attempts, err := s.rdb.Get(ctx, s.attemptsKey(id)).Int()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read attempts for item %s: %w", id, err)
	}

	if kind != queue.FailBusiness && attempts < s.maxAttempts {
		if err := s.rdb.LPush(ctx, s.pendingKey(), id).Err(); err != nil {
			return fmt.Errorf("failed to requeue item %s: %w", id, err)
		}
		return nil
	}

	rec, err := json.Marshal(failedRecord{
		Kind:     string(kind),
		Code:     code,
		Message:  message,
		Attempts: attempts,
	})
	if err != nil {
		return fmt.Errorf("failed to encode failure record: %w", err)
	}

	if err := s.rdb.HSet(ctx, s.failedKey(), id, rec).Err(); err != nil {
		return fmt.Errorf("failed to record failure for item %s: %w", id, err)
	}
	if err := s.rdb.Del(ctx, s.itemKey(id), s.attemptsKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

// PendingCount returns the number of items waiting in this stream.
func (s *Stream) PendingCount(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, s.pendingKey()).Result()
}

// FailedCount returns the number of terminally failed items.
func (s *Stream) FailedCount(ctx context.Context) (int64, error) {
	return s.rdb.HLen(ctx, s.failedKey()).Result()
}

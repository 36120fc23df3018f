// Package taskqueue is a Redis list backed work queue with a dead-letter list.
package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ducksnap/internal/model"

	"github.com/redis/go-redis/v9"
)

// Queue pushes with LPUSH and pops with BRPOP, so tasks are handled FIFO.
type Queue struct {
	rdb  redis.UniversalClient
	name string
}

// New returns a queue stored under the given list key.
func New(rdb redis.UniversalClient, name string) *Queue {
	return &Queue{rdb: rdb, name: name}
}

// Message is a raw queued payload.
type Message struct {
	Data []byte
}

func (q *Queue) Name() string { return q.name }

// DeadName is the list key holding exhausted tasks.
func (q *Queue) DeadName() string { return q.name + ":dead" }

// Send pushes a raw JSON payload.
func (q *Queue) Send(ctx context.Context, payload []byte) error {
	if err := q.rdb.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("queue send failed: %w", err)
	}
	return nil
}

// Enqueue stamps and pushes a task.
func (q *Queue) Enqueue(ctx context.Context, task model.Task) error {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return q.Send(ctx, payload)
}

// ReadWithPoll blocks up to timeout for the next message. It returns nil
// and no error when the timeout elapses with the queue empty.
func (q *Queue) ReadWithPoll(ctx context.Context, timeout time.Duration) (*Message, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue read failed: %w", err)
	}
	// BRPOP replies with [key, value].
	return &Message{Data: []byte(res[1])}, nil
}

// Len reports the number of pending messages.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.name).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// DeadLetter parks a task that exhausted its retries.
func (q *Queue) DeadLetter(ctx context.Context, task model.Task, cause error, attempts int) error {
	entry := model.DeadLetterTask{
		Task:     task,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.DeadName(), payload).Err(); err != nil {
		return fmt.Errorf("dead letter push failed: %w", err)
	}
	return nil
}

// DeadLetters returns up to limit parked tasks, newest first.
func (q *Queue) DeadLetters(ctx context.Context, limit int64) ([]model.DeadLetterTask, error) {
	raw, err := q.rdb.LRange(ctx, q.DeadName(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	out := make([]model.DeadLetterTask, 0, len(raw))
	for _, r := range raw {
		var dl model.DeadLetterTask
		if err := json.Unmarshal([]byte(r), &dl); err != nil {
			return nil, fmt.Errorf("decode dead letter: %w", err)
		}
		out = append(out, dl)
	}
	return out, nil
}

// Package worker consumes background tasks from the Redis queue and runs the
// periodic jobs that keep subscriptions and Snapchat metrics current.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ducksnap/internal/metrics"
	"ducksnap/internal/model"
	"ducksnap/internal/service"
	"ducksnap/internal/taskqueue"

	"github.com/rs/zerolog"
)

// Queue is the part of the task queue the processor reads from.
type Queue interface {
	ReadWithPoll(ctx context.Context, timeout time.Duration) (*taskqueue.Message, error)
	DeadLetter(ctx context.Context, task model.Task, cause error, attempts int) error
}

// Options tunes polling and retry behaviour.
type Options struct {
	PollTimeout    time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Processor handles one task at a time.
type Processor struct {
	queue    Queue
	sync     service.SyncService
	analysis service.AnalysisService
	opts     Options
	logger   zerolog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewProcessor(queue Queue, sync service.SyncService, analysis service.AnalysisService, opts Options, logger zerolog.Logger) *Processor {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	return &Processor{
		queue:    queue,
		sync:     sync,
		analysis: analysis,
		opts:     opts,
		logger:   logger.With().Str("worker", "tasks").Logger(),
		sleep:    sleepCtx,
	}
}

// Run polls the queue until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info().Dur("poll_timeout", p.opts.PollTimeout).Int("max_retries", p.opts.MaxRetries).Msg("Starting task worker")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Shutting down task worker")
			return nil
		default:
		}

		msg, err := p.queue.ReadWithPoll(ctx, p.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Error().Err(err).Msg("Error reading task queue")
			_ = p.sleep(ctx, time.Second)
			continue
		}
		if msg == nil {
			continue
		}
		p.Handle(ctx, msg.Data)
	}
}

// Handle decodes and executes one payload. Malformed payloads are dropped.
func (p *Processor) Handle(ctx context.Context, data []byte) {
	var task model.Task
	if err := json.Unmarshal(data, &task); err != nil {
		p.logger.Error().Err(err).Bytes("payload", data).Msg("Failed to unmarshal task; dropping")
		metrics.RecordTask("unknown", "dropped", 0)
		return
	}
	if task.UserID == 0 {
		p.logger.Warn().Str("type", task.Type).Msg("Task without userId; dropping")
		metrics.RecordTask(task.Type, "dropped", 0)
		return
	}
	log := p.logger.With().Str("type", task.Type).Int64("user_id", task.UserID).Logger()

	start := time.Now()
	backoff := p.opts.BackoffInitial
	var lastErr error
	for attempt := 1; attempt <= p.opts.MaxRetries; attempt++ {
		lastErr = p.execute(ctx, task)
		if lastErr == nil {
			log.Info().Int("attempt", attempt).Dur("duration", time.Since(start)).Msg("Task succeeded")
			metrics.RecordTask(task.Type, "success", time.Since(start))
			return
		}
		if errors.Is(lastErr, errPermanent) {
			log.Warn().Err(lastErr).Msg("Task cannot succeed; dropping")
			metrics.RecordTask(task.Type, "dropped", time.Since(start))
			return
		}
		if attempt == p.opts.MaxRetries {
			break
		}
		log.Error().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).Msg("Task failed, retrying")
		if err := p.sleep(ctx, backoff); err != nil {
			// Shutting down: park the task so it is not lost.
			break
		}
		backoff *= 2
		if p.opts.BackoffMax > 0 && backoff > p.opts.BackoffMax {
			backoff = p.opts.BackoffMax
		}
	}

	// Use a fresh context so the dead letter survives shutdown.
	dlCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.queue.DeadLetter(dlCtx, task, lastErr, p.opts.MaxRetries); err != nil {
		log.Error().Err(err).Msg("Failed to send task to dead-letter list")
	}
	log.Warn().Err(lastErr).Int("attempts", p.opts.MaxRetries).Msg("Exhausted all task retries; moved to dead-letter list")
	metrics.RecordTask(task.Type, "dead", time.Since(start))
}

var errPermanent = errors.New("permanent task failure")

func (p *Processor) execute(ctx context.Context, task model.Task) error {
	switch task.Type {
	case model.TaskSync:
		return p.sync.Sync(ctx, task.UserID)
	case model.TaskAnalysis:
		_, err := p.analysis.Generate(ctx, task.UserID)
		if errors.Is(err, service.ErrNoSnapshot) || errors.Is(err, service.ErrEmptyCohort) {
			return fmt.Errorf("%w: %w", errPermanent, err)
		}
		return err
	default:
		return fmt.Errorf("%w: unknown task type %q", errPermanent, task.Type)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

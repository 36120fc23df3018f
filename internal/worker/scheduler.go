package worker

import (
	"context"
	"fmt"
	"time"

	"ducksnap/internal/metrics"
	"ducksnap/internal/model"
	"ducksnap/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job schedules.
const (
	ExpirySchedule      = "@hourly"
	PremiumSyncSchedule = "@every 15m"
	FreeSyncSchedule    = "@daily"
)

// Expirer downgrades users whose premium period has ended.
type Expirer interface {
	ExpireLapsed(ctx context.Context) (int, error)
}

// Scheduler runs the periodic jobs on cron goroutines.
type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	sync    service.SyncService
	logger  zerolog.Logger
	timeout time.Duration
}

func NewScheduler(expirer Expirer, sync service.SyncService, logger zerolog.Logger) (*Scheduler, error) {
	log := logger.With().Str("worker", "scheduler").Logger()
	cl := cronLogger{log}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		expirer: expirer,
		sync:    sync,
		logger:  log,
		timeout: 10 * time.Minute,
	}

	jobs := []struct {
		spec string
		name string
		run  func(ctx context.Context) error
	}{
		{ExpirySchedule, "expire_subscriptions", s.expire},
		{PremiumSyncSchedule, "sync_premium", func(ctx context.Context) error { return s.fanOut(ctx, model.TierPremium) }},
		{FreeSyncSchedule, "sync_free", func(ctx context.Context) error { return s.fanOut(ctx, model.TierFree) }},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, s.wrap(j.name, j.run)); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}
	return s, nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Run starts the cron loop and blocks until ctx is cancelled and running jobs finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().Int("jobs", s.Entries()).Msg("Starting scheduler")
	s.cron.Start()
	<-ctx.Done()
	s.logger.Info().Msg("Shutting down scheduler")
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		if err := run(ctx); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
			metrics.RecordTask(name, "error", time.Since(start))
			return
		}
		metrics.RecordTask(name, "success", time.Since(start))
	}
}

func (s *Scheduler) expire(ctx context.Context) error {
	n, err := s.expirer.ExpireLapsed(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info().Int("users", n).Msg("Expired lapsed premium subscriptions")
	}
	return nil
}

func (s *Scheduler) fanOut(ctx context.Context, tier string) error {
	n, err := s.sync.FanOut(ctx, tier)
	if err != nil {
		return err
	}
	s.logger.Info().Str("tier", tier).Int("queued", n).Msg("Queued scheduled syncs")
	return nil
}

// cronLogger routes cron's own messages, including recovered job panics, to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

package bot

import (
	"sync"
	"time"

	"modbot/scanner"
	"modbot/tasks"
	"modbot/utils"

	"go.uber.org/zap"
)

const (
	defaultTickInterval = 30 * time.Second
	statsInterval       = 1 * time.Hour
)

// Scheduler drives the expiry scan on a fixed interval and provides the
// deferred-execution substrate the handlers schedule stale-alert cleanup
// onto.
type Scheduler struct {
	bot    *Bot
	expiry *scanner.ExpiryScanner
	logger *zap.Logger

	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler ticking at the configured interval.
func NewScheduler(b *Bot, expiry *scanner.ExpiryScanner, logger *zap.Logger) *Scheduler {
	interval := defaultTickInterval
	if b.Config.Scheduler.Interval != "" {
		if d, err := utils.ParseDuration(b.Config.Scheduler.Interval); err == nil && d > 0 {
			interval = d
		} else {
			logger.Warn("invalid scheduler interval, using default",
				zap.String("interval", b.Config.Scheduler.Interval))
		}
	}

	return &Scheduler{
		bot:      b,
		expiry:   expiry,
		logger:   logger.Named("scheduler"),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the tick loop and the hourly stats task.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop terminates the tick loop and waits for in-flight deferred work.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	close(s.done)
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expiry.Scan()
		case <-statsTicker.C:
			tasks.LogRuntimeStats(s.bot, s.logger)
		case <-s.done:
			return
		}
	}
}

// RunAfter executes fn after the delay on the scheduler's substrate.
// Fire-and-forget: the effect must be idempotent, no cancellation is offered
// beyond process shutdown.
func (s *Scheduler) RunAfter(delay time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-time.After(delay):
			fn()
		case <-s.done:
		}
	}()
}

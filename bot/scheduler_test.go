package bot

import (
	"testing"
	"time"

	"modbot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(interval string) *Scheduler {
	b := &Bot{
		Config: &model.Config{Scheduler: model.SchedulerConfig{Interval: interval}},
		Logger: zap.NewNop(),
	}
	return NewScheduler(b, nil, zap.NewNop())
}

func TestRunAfterFiresAfterTheDelayNotBefore(t *testing.T) {
	s := newTestScheduler("")

	fired := make(chan struct{})
	s.RunAfter(50*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
		t.Fatal("deferred work ran before the delay elapsed")
	default:
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred work never ran")
	}
}

func TestStopCancelsPendingDeferredWork(t *testing.T) {
	s := newTestScheduler("")

	fired := make(chan struct{})
	s.RunAfter(time.Hour, func() { close(fired) })

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not release pending deferred work")
	}

	select {
	case <-fired:
		t.Fatal("cancelled deferred work must not run")
	default:
	}
}

func TestSchedulerIntervalComesFromSettings(t *testing.T) {
	assert.Equal(t, 5*time.Second, newTestScheduler("5s").interval)
	assert.Equal(t, defaultTickInterval, newTestScheduler("").interval)
	assert.Equal(t, defaultTickInterval, newTestScheduler("bogus").interval)
	assert.Equal(t, defaultTickInterval, newTestScheduler("-10s").interval)
}

func TestRunAfterSurvivesConcurrentUse(t *testing.T) {
	s := newTestScheduler("")

	fired := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		s.RunAfter(10*time.Millisecond, func() { fired <- struct{}{} })
	}

	for i := 0; i < 10; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("deferred work missing")
		}
	}
	require.Empty(t, fired)
}

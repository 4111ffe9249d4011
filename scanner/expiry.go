// Package scanner walks the task store for expired infractions and performs
// their reversals.
package scanner

import (
	"sync"
	"time"

	"modbot/model"
	"modbot/moderation"
	"modbot/utils/database/tasks"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// expiryWorkers bounds how many reversals run concurrently within one tick.
const expiryWorkers = 5

// ExpiryScanner fires due reversal tasks. One scan runs per scheduler tick;
// the worst-case overstay of an expired mute or ban is bounded by the tick
// interval.
type ExpiryScanner struct {
	db        *sqlx.DB
	actions   moderation.Actions
	batchSize int
	logger    *zap.Logger

	now func() time.Time
}

// NewExpiryScanner creates a scanner processing at most batchSize tasks per
// scan.
func NewExpiryScanner(db *sqlx.DB, actions moderation.Actions, batchSize int, logger *zap.Logger) *ExpiryScanner {
	return &ExpiryScanner{
		db:        db,
		actions:   actions,
		batchSize: batchSize,
		logger:    logger.Named("expiry"),
		now:       time.Now,
	}
}

// Scan fetches due tasks and reverses each one. A failed reversal (target
// left, already unbanned, transient platform error) is logged and the task is
// deleted anyway: retrying an impossible action forever is worse than a
// one-time best-effort attempt. Errors never leave the scan; one failing task
// does not abort the batch.
func (e *ExpiryScanner) Scan() {
	due, err := tasks.Due(e.db, e.now(), e.batchSize)
	if err != nil {
		e.logger.Error("failed to fetch due tasks", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	// Due tasks act on disjoint (guild, user, kind) keys, so they can run
	// in parallel; the guard channel keeps the fan-out bounded.
	var wg sync.WaitGroup
	guard := make(chan struct{}, expiryWorkers)
	for _, task := range due {
		wg.Add(1)
		guard <- struct{}{}
		go func(task model.Task) {
			defer func() {
				<-guard
				wg.Done()
			}()
			e.fire(task)
		}(task)
	}
	wg.Wait()
}

func (e *ExpiryScanner) fire(task model.Task) {
	var actionErr error
	switch task.Kind {
	case model.TaskKindBan:
		actionErr = e.actions.RemoveBan(task.GuildID, task.UserID)
	default:
		actionErr = e.actions.RemoveMute(task.GuildID, task.UserID)
	}

	if actionErr != nil {
		e.logger.Warn("reversal action failed, dropping task",
			zap.String("guild_id", task.GuildID),
			zap.String("user_id", task.UserID),
			zap.String("kind", string(task.Kind)),
			zap.String("infraction_id", task.InfractionID),
			zap.Error(actionErr))
	} else {
		e.logger.Info("reversed expired infraction",
			zap.String("guild_id", task.GuildID),
			zap.String("user_id", task.UserID),
			zap.String("kind", string(task.Kind)),
			zap.String("infraction_id", task.InfractionID))
	}

	// Idempotent: if an event reactor already cancelled this task, the
	// delete is a no-op.
	if err := tasks.Delete(e.db, task.GuildID, task.UserID, task.Kind); err != nil {
		e.logger.Error("failed to delete fired task",
			zap.String("guild_id", task.GuildID),
			zap.String("user_id", task.UserID),
			zap.String("kind", string(task.Kind)),
			zap.Error(err))
	}
}

package scanner

import (
	"errors"
	"sync"
	"testing"
	"time"

	"modbot/model"
	"modbot/utils/database"
	"modbot/utils/database/tasks"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingActions struct {
	mu      sync.Mutex
	unmutes []string
	unbans  []string
	fail    bool
}

func (r *recordingActions) ApplyMute(_, _ string, _ time.Duration) error { return nil }
func (r *recordingActions) ApplyBan(_, _, _ string) error                { return nil }

func (r *recordingActions) RemoveMute(guildID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmutes = append(r.unmutes, guildID+"/"+userID)
	if r.fail {
		return errors.New("member not found")
	}
	return nil
}

func (r *recordingActions) RemoveBan(guildID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unbans = append(r.unbans, guildID+"/"+userID)
	if r.fail {
		return errors.New("unknown ban")
	}
	return nil
}

func newScannerTest(t *testing.T) (*sqlx.DB, *recordingActions, *ExpiryScanner) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db))

	actions := &recordingActions{}
	return db, actions, NewExpiryScanner(db, actions, 100, zap.NewNop())
}

func addTask(t *testing.T, db *sqlx.DB, userID string, kind model.TaskKind, expiresAt time.Time) {
	t.Helper()
	_, err := tasks.Upsert(db, model.Task{
		GuildID:      "g1",
		UserID:       userID,
		Kind:         kind,
		InfractionID: "inf-" + userID,
		ExpiresAt:    expiresAt,
	})
	require.NoError(t, err)
}

func TestScanReversesOnlyDueTasks(t *testing.T) {
	db, actions, scanner := newScannerTest(t)
	now := time.Now().UTC()
	addTask(t, db, "expired-mute", model.TaskKindMute, now.Add(-time.Minute))
	addTask(t, db, "expired-ban", model.TaskKindBan, now.Add(-time.Hour))
	addTask(t, db, "future", model.TaskKindMute, now.Add(time.Hour))

	scanner.Scan()

	assert.Equal(t, []string{"g1/expired-mute"}, actions.unmutes)
	assert.Equal(t, []string{"g1/expired-ban"}, actions.unbans)

	remaining, err := tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining, "the future task must survive the scan")

	task, err := tasks.Find(db, "g1", "future", model.TaskKindMute)
	require.NoError(t, err)
	assert.NotNil(t, task)
}

func TestScanDeletesTaskWhenReversalFails(t *testing.T) {
	db, actions, scanner := newScannerTest(t)
	actions.fail = true
	addTask(t, db, "gone", model.TaskKindMute, time.Now().UTC().Add(-time.Minute))

	scanner.Scan()

	remaining, err := tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "a failed reversal must still consume the task")
}

func TestSecondScanIsANoOp(t *testing.T) {
	db, actions, scanner := newScannerTest(t)
	addTask(t, db, "once", model.TaskKindMute, time.Now().UTC().Add(-time.Minute))

	scanner.Scan()
	scanner.Scan()

	assert.Len(t, actions.unmutes, 1, "a fired task must not fire again")
	remaining, err := tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestScanHonorsBatchLimit(t *testing.T) {
	db, actions, _ := newScannerTest(t)
	scanner := NewExpiryScanner(db, actions, 2, zap.NewNop())
	now := time.Now().UTC()
	addTask(t, db, "a", model.TaskKindMute, now.Add(-3*time.Minute))
	addTask(t, db, "b", model.TaskKindMute, now.Add(-2*time.Minute))
	addTask(t, db, "c", model.TaskKindMute, now.Add(-time.Minute))

	scanner.Scan()
	remaining, err := tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining, "one tick processes at most the batch size")

	scanner.Scan()
	remaining, err = tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "the next tick drains the remainder")
}

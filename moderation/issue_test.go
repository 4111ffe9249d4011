package moderation

import (
	"errors"
	"testing"
	"time"

	"modbot/model"
	"modbot/utils"
	"modbot/utils/database"
	"modbot/utils/database/infractions"
	"modbot/utils/database/tasks"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubActions struct {
	muteErr error
	banErr  error
	mutes   int
	bans    int
}

func (s *stubActions) ApplyMute(_, _ string, _ time.Duration) error {
	s.mutes++
	return s.muteErr
}
func (s *stubActions) RemoveMute(_, _ string) error { return nil }
func (s *stubActions) ApplyBan(_, _, _ string) error {
	s.bans++
	return s.banErr
}
func (s *stubActions) RemoveBan(_, _ string) error { return nil }

func newIssuerTest(t *testing.T) (*sqlx.DB, *stubActions, *Issuer) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db))

	idgen, err := utils.NewIDGenerator(1)
	require.NoError(t, err)
	actions := &stubActions{}
	return db, actions, NewIssuer(db, actions, idgen, zap.NewNop())
}

func TestIssueTimedMuteSchedulesReversal(t *testing.T) {
	db, actions, issuer := newIssuerTest(t)

	infraction, err := issuer.Issue("g1", "u1", "mod-1", model.InfractionMute, "spam", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, actions.mutes)

	task, err := tasks.Find(db, "g1", "u1", model.TaskKindMute)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, infraction.ID, task.InfractionID)
	assert.WithinDuration(t, infraction.CreatedAt.Add(time.Hour), task.ExpiresAt, time.Second)
}

func TestIssueLatestTimedActionWins(t *testing.T) {
	db, _, issuer := newIssuerTest(t)

	_, err := issuer.Issue("g1", "u1", "mod-1", model.InfractionMute, "first", time.Hour)
	require.NoError(t, err)
	second, err := issuer.Issue("g1", "u1", "mod-2", model.InfractionMute, "second", 2*time.Hour)
	require.NoError(t, err)

	count, err := tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-muting the same user must replace the task, not add one")

	task, err := tasks.Find(db, "g1", "u1", model.TaskKindMute)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, second.ID, task.InfractionID)

	stored, err := infractions.GetByUser(db, "g1", "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "every issued infraction stays on the record")
}

func TestIssuePermanentBanCancelsScheduledUnban(t *testing.T) {
	db, actions, issuer := newIssuerTest(t)

	_, err := issuer.Issue("g1", "u1", "mod-1", model.InfractionBan, "first", time.Hour)
	require.NoError(t, err)
	_, err = issuer.Issue("g1", "u1", "mod-2", model.InfractionBan, "for good", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, actions.bans)

	task, err := tasks.Find(db, "g1", "u1", model.TaskKindBan)
	require.NoError(t, err)
	assert.Nil(t, task, "a permanent ban supersedes the scheduled unban")
}

func TestIssueRecordsInfractionEvenWhenActionFails(t *testing.T) {
	db, actions, issuer := newIssuerTest(t)
	actions.muteErr = errors.New("missing permissions")

	infraction, err := issuer.Issue("g1", "u1", "mod-1", model.InfractionMute, "spam", time.Hour)
	require.NoError(t, err, "a platform failure must not lose the record")

	stored, err := infractions.GetByUser(db, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, infraction.ID, stored[0].ID)

	task, err := tasks.Find(db, "g1", "u1", model.TaskKindMute)
	require.NoError(t, err)
	assert.NotNil(t, task, "the reversal stays scheduled regardless")
}

package events

import (
	"testing"
	"time"

	"modbot/guildconfig"
	"modbot/model"
	"modbot/utils/database"
	"modbot/utils/database/reports"
	"modbot/utils/database/requests"
	"modbot/utils/database/tasks"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReactorTest(t *testing.T) (*sqlx.DB, *Reactor) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db))

	return db, NewReactor(db, guildconfig.New(db, zap.NewNop()), zap.NewNop())
}

func TestBanAddAutoResolvesOpenEntitiesAndDropsTasks(t *testing.T) {
	db, reactor := newReactorTest(t)
	now := time.Now().UTC()

	require.NoError(t, reports.Add(db, model.Report{
		ID: "rep-1", GuildID: "g1", Kind: model.ReportKindUser,
		ReporterID: "reporter", TargetID: "banned",
		Status: model.StatusPending, CreatedAt: now,
	}))
	require.NoError(t, requests.Add(db, model.Request{
		ID: "req-1", GuildID: "g1", RequesterID: "proposer", TargetID: "banned",
		Action: model.InfractionMute, Reason: "spam", DurationSecs: 3600,
		Status: model.StatusPending, CreatedAt: now,
	}))
	require.NoError(t, requests.Add(db, model.Request{
		ID: "req-2", GuildID: "g1", RequesterID: "proposer", TargetID: "someone-else",
		Action: model.InfractionBan, Reason: "spam",
		Status: model.StatusPending, CreatedAt: now,
	}))
	for _, kind := range []model.TaskKind{model.TaskKindMute, model.TaskKindBan} {
		_, err := tasks.Upsert(db, model.Task{
			GuildID: "g1", UserID: "banned", Kind: kind,
			InfractionID: "inf-1", ExpiresAt: now.Add(time.Hour),
		})
		require.NoError(t, err)
	}

	reactor.onGuildBanAdd(&discordgo.Session{}, &discordgo.GuildBanAdd{
		GuildID: "g1", User: &discordgo.User{ID: "banned"},
	})

	report, err := reports.GetByID(db, "g1", "rep-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAutoResolved, report.Status)

	request, err := requests.GetByID(db, "g1", "req-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAutoResolved, request.Status)

	untouched, err := requests.GetByID(db, "g1", "req-2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, untouched.Status, "entities naming other users stay open")

	remaining, err := tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "a manual ban supersedes all scheduled reversals")
}

func TestBanAddLeavesResolvedEntitiesAlone(t *testing.T) {
	db, reactor := newReactorTest(t)
	now := time.Now().UTC()

	require.NoError(t, reports.Add(db, model.Report{
		ID: "rep-1", GuildID: "g1", Kind: model.ReportKindUser,
		ReporterID: "reporter", TargetID: "banned",
		Status: model.StatusPending, CreatedAt: now,
	}))
	ok, err := reports.Resolve(db, "rep-1", model.StatusDenied, "staff-1", now)
	require.NoError(t, err)
	require.True(t, ok)

	reactor.onGuildBanAdd(&discordgo.Session{}, &discordgo.GuildBanAdd{
		GuildID: "g1", User: &discordgo.User{ID: "banned"},
	})

	report, err := reports.GetByID(db, "g1", "rep-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDenied, report.Status, "terminal states are never overwritten")
	assert.Equal(t, "staff-1", report.ResolverID)
}

func TestBanRemoveDropsOnlyTheBanTask(t *testing.T) {
	db, reactor := newReactorTest(t)
	now := time.Now().UTC()

	for _, kind := range []model.TaskKind{model.TaskKindMute, model.TaskKindBan} {
		_, err := tasks.Upsert(db, model.Task{
			GuildID: "g1", UserID: "u1", Kind: kind,
			InfractionID: "inf-1", ExpiresAt: now.Add(time.Hour),
		})
		require.NoError(t, err)
	}

	event := &discordgo.GuildBanRemove{GuildID: "g1", User: &discordgo.User{ID: "u1"}}
	reactor.onGuildBanRemove(&discordgo.Session{}, event)
	// A second delivery of the same event must be harmless.
	reactor.onGuildBanRemove(&discordgo.Session{}, event)

	banTask, err := tasks.Find(db, "g1", "u1", model.TaskKindBan)
	require.NoError(t, err)
	assert.Nil(t, banTask)

	muteTask, err := tasks.Find(db, "g1", "u1", model.TaskKindMute)
	require.NoError(t, err)
	assert.NotNil(t, muteTask, "the mute task is independent of the unban")
}

func TestMemberUpdateDropsMuteTaskWhenRestrictionLifted(t *testing.T) {
	db, reactor := newReactorTest(t)
	_, err := tasks.Upsert(db, model.Task{
		GuildID: "g1", UserID: "u1", Kind: model.TaskKindMute,
		InfractionID: "inf-1", ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	reactor.onGuildMemberUpdate(&discordgo.Session{}, &discordgo.GuildMemberUpdate{
		Member: &discordgo.Member{
			GuildID: "g1",
			User:    &discordgo.User{ID: "u1"},
		},
	})

	task, err := tasks.Find(db, "g1", "u1", model.TaskKindMute)
	require.NoError(t, err)
	assert.Nil(t, task, "a lifted restriction cancels the scheduled unmute")
}

func TestMemberUpdateKeepsTaskWhileStillMuted(t *testing.T) {
	db, reactor := newReactorTest(t)
	_, err := tasks.Upsert(db, model.Task{
		GuildID: "g1", UserID: "u1", Kind: model.TaskKindMute,
		InfractionID: "inf-1", ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	until := time.Now().Add(30 * time.Minute)
	reactor.onGuildMemberUpdate(&discordgo.Session{}, &discordgo.GuildMemberUpdate{
		Member: &discordgo.Member{
			GuildID:                    "g1",
			User:                       &discordgo.User{ID: "u1"},
			CommunicationDisabledUntil: &until,
		},
	})

	task, err := tasks.Find(db, "g1", "u1", model.TaskKindMute)
	require.NoError(t, err)
	assert.NotNil(t, task, "an active restriction keeps the reversal scheduled")
}

func TestMemberUpdateIgnoresUsersWithoutTasks(t *testing.T) {
	db, reactor := newReactorTest(t)

	reactor.onGuildMemberUpdate(&discordgo.Session{}, &discordgo.GuildMemberUpdate{
		Member: &discordgo.Member{
			GuildID: "g1",
			User:    &discordgo.User{ID: "stranger"},
		},
	})

	count, err := tasks.Count(db)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGuildCreateEnsuresConfigRow(t *testing.T) {
	db, reactor := newReactorTest(t)

	reactor.onGuildCreate(&discordgo.Session{}, &discordgo.GuildCreate{
		Guild: &discordgo.Guild{ID: "g-new"},
	})

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM guild_configs WHERE guild_id = ?", "g-new"))
	assert.Equal(t, 1, count)
}

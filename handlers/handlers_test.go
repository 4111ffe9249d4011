package handlers

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"modbot/bot"
	"modbot/guildconfig"
	"modbot/model"
	"modbot/resolution"
	"modbot/utils"
	"modbot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubTransport swallows every REST call the session makes so handler tests
// run without the platform.
type stubTransport struct{}

func (stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusNoContent,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestSession(t *testing.T) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	s.Client = &http.Client{Transport: stubTransport{}}
	return s
}

func newTestBot(t *testing.T) *bot.Bot {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db))

	idgen, err := utils.NewIDGenerator(1)
	require.NoError(t, err)

	return &bot.Bot{
		DB:     db,
		Cache:  guildconfig.New(db, zap.NewNop()),
		IDGen:  idgen,
		Logger: zap.NewNop(),
	}
}

// dmInteraction builds an interaction the way the gateway delivers it outside
// a guild: no member, the acting user on the interaction itself.
func dmInteraction(name string, commandType discordgo.ApplicationCommandType) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:    "int-1",
			Token: "tok",
			Type:  discordgo.InteractionApplicationCommand,
			User:  &discordgo.User{ID: "dm-user"},
			Data:  discordgo.ApplicationCommandInteractionData{Name: name, CommandType: commandType},
		},
	}
}

func TestReportIntakeOutsideGuildIsRejectedWithoutPanic(t *testing.T) {
	s := newTestSession(t)
	b := newTestBot(t)

	HandleUserReport(s, dmInteraction("Report User", discordgo.UserApplicationCommand), b)
	HandleMessageReport(s, dmInteraction("Report Message", discordgo.MessageApplicationCommand), b)

	var count int
	require.NoError(t, b.DB.Get(&count, "SELECT COUNT(*) FROM reports"))
	assert.Equal(t, 0, count, "nothing may be recorded for a non-guild interaction")
}

func TestRequestIntakeOutsideGuildIsRejectedWithoutPanic(t *testing.T) {
	s := newTestSession(t)
	b := newTestBot(t)

	HandleRequestCommand(s, dmInteraction("request-ban", discordgo.ChatApplicationCommand), b)

	var count int
	require.NoError(t, b.DB.Get(&count, "SELECT COUNT(*) FROM requests"))
	assert.Equal(t, 0, count)
}

func TestParseRequestDurationRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{"-1h", "-3d", "0s", "0d", "junk"} {
		_, err := parseRequestDuration(raw)
		assert.Error(t, err, "duration %q must be rejected", raw)
	}

	d, err := parseRequestDuration("12h")
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, d)

	d, err = parseRequestDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)
}

func TestGraceDelayPerKindOverrideBeatsGlobal(t *testing.T) {
	cfg := &model.Config{Resolution: model.ResolutionConfig{
		GraceDelay:        "10s",
		GraceDelayPerKind: map[string]string{"report": "2s"},
	}}

	assert.Equal(t, 2*time.Second, graceDelay(cfg, resolution.EntityReport))
	assert.Equal(t, 10*time.Second, graceDelay(cfg, resolution.EntityRequest))
}

func TestGraceDelayFallsBackToDefault(t *testing.T) {
	assert.Equal(t, 7*time.Second, graceDelay(&model.Config{}, resolution.EntityReport))

	invalid := &model.Config{Resolution: model.ResolutionConfig{
		GraceDelay:        "bogus",
		GraceDelayPerKind: map[string]string{"report": "-1s"},
	}}
	assert.Equal(t, 7*time.Second, graceDelay(invalid, resolution.EntityReport))
}

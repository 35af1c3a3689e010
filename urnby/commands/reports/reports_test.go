package reports

import (
	"strings"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/export"
	"github.com/urnby/campbot/urnby/shifts"
)

func TestLeaderboardPage(t *testing.T) {
	entries := []shifts.LeaderboardEntry{
		{UserID: "1", Seconds: 7200},
		{UserID: "2", Seconds: 3600},
		{UserID: "3", Seconds: 1800},
	}

	first := leaderboardPage(entries, 0, 2)
	assert.Equal(t, "`#1  ` <@1> has 2.00\n`#2  ` <@2> has 1.00\n", first)

	second := leaderboardPage(entries, 1, 2)
	assert.Equal(t, "`#3  ` <@3> has 0.50\n", second)
}

func TestCommandHistory(t *testing.T) {
	user := snowflake.ID(42)

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "<@42>'s last 0 commands", CommandHistory(user, nil, 0))
	})

	t.Run("rows", func(t *testing.T) {
		recs := []*models.CommandRecord{
			{ID: 9, Timestamp: 100, Name: "clockout", ChannelName: "camp", Level: models.CommandLevelError, Error: "user is not clocked in"},
			{ID: 8, Timestamp: 50, Name: "clockin", Options: "character=Bob", Level: models.CommandLevelInfo},
		}
		got := CommandHistory(user, recs, 3)
		assert.True(t, strings.HasPrefix(got, "<@42>'s last 2 commands, starting at user's 3'th most recent command```"))
		assert.Contains(t, got, "\n#9 <t:100:f> /clockout in #camp [error: user is not clocked in]")
		assert.Contains(t, got, "\n#8 <t:50:f> /clockin character=Bob")
		assert.True(t, strings.HasSuffix(got, "```"))
	})

	t.Run("clipped", func(t *testing.T) {
		var recs []*models.CommandRecord
		for i := 0; i < 200; i++ {
			recs = append(recs, &models.CommandRecord{ID: int64(i), Timestamp: 1700000000, Name: "getactive", Options: "public=true"})
		}
		got := CommandHistory(user, recs, 0)
		assert.LessOrEqual(t, len(got), config.MaxMessageLength)
		assert.True(t, strings.HasSuffix(got, "```"))
	})
}

func TestMatchSessions(t *testing.T) {
	names := []string{"tuesday night", "wednesday raid", "weekend camp", "thursday"}

	assert.Equal(t, names[:2], MatchSessions("", names, 2))
	assert.Equal(t, names, MatchSessions("  ", names, 25))

	got := MatchSessions("wed", names, 25)
	require.NotEmpty(t, got)
	assert.Equal(t, "wednesday raid", got[0])

	assert.Empty(t, MatchSessions("zzz", names, 25))
	assert.Len(t, MatchSessions("e", names, 1), 1)
}

func TestSessionReport(t *testing.T) {
	hist := &models.SessionHistory{
		Name:           "friday",
		CreatedBy:      "1",
		EndedBy:        "2",
		StartTimestamp: 0,
		EndTimestamp:   5400,
	}

	t.Run("participants", func(t *testing.T) {
		sum := &shifts.SessionSummary{
			History: hist,
			Records: make([]*models.HistoricalShift, 3),
			Seconds: map[string]int64{"10": 1800, "11": 3600},
		}
		got := SessionReport(sum)
		assert.Contains(t, got, "Session \"friday\" ran from <t:0:f> to <t:5400:f> and lasted 1.50 hours")
		assert.Contains(t, got, "2 members, 3 records:")
		assert.Less(t, strings.Index(got, "<@11> 1.00 hours"), strings.Index(got, "<@10> 0.50 hours"))
	})

	t.Run("empty", func(t *testing.T) {
		got := SessionReport(&shifts.SessionSummary{History: hist, Seconds: map[string]int64{}})
		assert.True(t, strings.HasSuffix(got, "Nobody clocked time in this session"))
	})
}

func TestExportSummary(t *testing.T) {
	res := &export.Result{Dataset: export.Actives, Rows: 2}
	assert.Equal(t, "Here's the data! 2 actives rows", exportSummary(res))

	res.Location = "s3://bucket/1/actives.json"
	assert.Contains(t, exportSummary(res), "\nA copy was stored at `s3://bucket/1/actives.json`")
}

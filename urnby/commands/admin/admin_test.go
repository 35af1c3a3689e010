package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/guildconfig"
	"github.com/urnby/campbot/urnby/shifts"
	"github.com/urnby/campbot/urnby/timeutil"
)

func TestDayClock(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)

	tests := []struct {
		name    string
		date    string
		clock   string
		days    int
		want    time.Time
		wantErr bool
	}{
		{"same day", "2024-03-01", "22:15", 0, time.Date(2024, 3, 1, 22, 15, 0, 0, loc), false},
		{"short clock", "2024-03-01", "7:05", 0, time.Date(2024, 3, 1, 7, 5, 0, 0, loc), false},
		{"day after", "2024-02-29", "01:00", 1, time.Date(2024, 3, 1, 1, 0, 0, 0, loc), false},
		{"bad date", "03/01/2024", "01:00", 0, time.Time{}, true},
		{"bad clock", "2024-03-01", "25:00", 0, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dayClock(tt.date, tt.clock, tt.days, loc)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, timeutil.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestChangeSummary(t *testing.T) {
	res := &shifts.ChangeResult{
		Previous: &models.HistoricalShift{ID: 7, UserID: "55", InTimestamp: 0, OutTimestamp: 3600},
		Current:  &models.HistoricalShift{ID: 12, UserID: "55", InTimestamp: 0, OutTimestamp: 7200},
	}
	got := ChangeSummary(7, shifts.FieldClockOut, res, time.UTC)
	assert.Equal(t, "Updated record #7, Clock out time from 1970-01-01T01:00:00Z to 1970-01-01T02:00:00Z for user <@55>, now record #12", got)
}

func TestKeyChoices(t *testing.T) {
	all := keyChoices()
	assert.Len(t, all, len(guildconfig.Keys))

	without := keyChoices(guildconfig.KeyBonusHours)
	assert.Len(t, without, len(guildconfig.Keys)-1)
	for _, c := range without {
		assert.NotEqual(t, guildconfig.KeyBonusHours, c.Value)
	}
}

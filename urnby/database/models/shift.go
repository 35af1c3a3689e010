package models

import (
	"strings"

	"github.com/uptrace/bun"
)

// Character label prefixes of synthetic historical rows.
const (
	UrnLabelPrefix = "URN_ZERO_OUT_EVENT"
	BonusLabelMark = "_PCT_BONUS_"
)

// ActiveShift is an open shift. At most one per guild and user.
type ActiveShift struct {
	bun.BaseModel `bun:"table:active,alias:a"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	GuildID     string `bun:"guild_id,notnull,unique:active_guild_user" json:"guild_id"`
	UserID      string `bun:"user_id,notnull,unique:active_guild_user" json:"user_id"`
	UserName    string `bun:"user_name,notnull" json:"user_name"`
	Character   string `bun:"character_label,notnull" json:"character_label"`
	Session     string `bun:"session,notnull" json:"session"`
	InTimestamp int64  `bun:"in_timestamp,notnull" json:"in_timestamp"`
}

// HistoricalShift is an append-only closed interval. Urn and bonus rows may
// have out < in.
type HistoricalShift struct {
	bun.BaseModel `bun:"table:historical,alias:h"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	GuildID      string `bun:"guild_id,notnull" json:"guild_id"`
	UserID       string `bun:"user_id,notnull" json:"user_id"`
	UserName     string `bun:"user_name,notnull" json:"user_name"`
	Character    string `bun:"character_label,notnull" json:"character_label"`
	Session      string `bun:"session,notnull" json:"session"`
	InTimestamp  int64  `bun:"in_timestamp,notnull" json:"in_timestamp"`
	OutTimestamp int64  `bun:"out_timestamp,notnull" json:"out_timestamp"`
}

func (h *HistoricalShift) Seconds() int64 {
	return h.OutTimestamp - h.InTimestamp
}

func (h *HistoricalShift) IsBonus() bool {
	return strings.Contains(h.Character, BonusLabelMark)
}

func (h *HistoricalShift) IsUrn() bool {
	return strings.HasPrefix(h.Character, UrnLabelPrefix)
}

// Close turns an active shift into its historical row.
func (a *ActiveShift) Close(out int64) *HistoricalShift {
	return &HistoricalShift{
		GuildID:      a.GuildID,
		UserID:       a.UserID,
		UserName:     a.UserName,
		Character:    a.Character,
		Session:      a.Session,
		InTimestamp:  a.InTimestamp,
		OutTimestamp: out,
	}
}

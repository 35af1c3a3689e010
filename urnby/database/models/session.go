package models

import "github.com/uptrace/bun"

// Session is the live activity window of a guild.
type Session struct {
	bun.BaseModel `bun:"table:session,alias:s"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	GuildID        string `bun:"guild_id,notnull,unique" json:"guild_id"`
	Name           string `bun:"name,notnull" json:"name"`
	CreatedBy      string `bun:"created_by,notnull" json:"created_by"`
	StartTimestamp int64  `bun:"start_timestamp,notnull" json:"start_timestamp"`
}

// SessionHistory rows are never mutated.
type SessionHistory struct {
	bun.BaseModel `bun:"table:session_history,alias:sh"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	GuildID        string `bun:"guild_id,notnull,unique:session_history_guild_name" json:"guild_id"`
	Name           string `bun:"name,notnull,unique:session_history_guild_name" json:"name"`
	CreatedBy      string `bun:"created_by,notnull" json:"created_by"`
	StartTimestamp int64  `bun:"start_timestamp,notnull" json:"start_timestamp"`
	EndedBy        string `bun:"ended_by,notnull" json:"ended_by"`
	EndTimestamp   int64  `bun:"end_timestamp,notnull" json:"end_timestamp"`
}

func (s *Session) End(endedBy string, end int64) *SessionHistory {
	return &SessionHistory{
		GuildID:        s.GuildID,
		Name:           s.Name,
		CreatedBy:      s.CreatedBy,
		StartTimestamp: s.StartTimestamp,
		EndedBy:        endedBy,
		EndTimestamp:   end,
	}
}

package models

import "github.com/uptrace/bun"

// Replacement is a queue entry. Ordered by InTimestamp then ID.
type Replacement struct {
	bun.BaseModel `bun:"table:reps,alias:r"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	GuildID     string `bun:"guild_id,notnull,unique:reps_guild_user" json:"guild_id"`
	UserID      string `bun:"user_id,notnull,unique:reps_guild_user" json:"user_id"`
	UserName    string `bun:"user_name,notnull" json:"user_name"`
	InTimestamp int64  `bun:"in_timestamp,notnull" json:"in_timestamp"`
}

package models

import "github.com/uptrace/bun"

type TimeOfDeath struct {
	bun.BaseModel `bun:"table:tod,alias:t"`

	ID                 int64  `bun:"id,pk,autoincrement" json:"id"`
	GuildID            string `bun:"guild_id,notnull" json:"guild_id"`
	Mob                string `bun:"mob,notnull" json:"mob"`
	TodTimestamp       int64  `bun:"tod_timestamp,notnull" json:"tod_timestamp"`
	SubmittedTimestamp int64  `bun:"submitted_timestamp,notnull" json:"submitted_timestamp"`
	SubmittedBy        string `bun:"submitted_by,notnull" json:"submitted_by"`
}

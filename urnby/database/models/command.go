package models

import "github.com/uptrace/bun"

type CommandLevel string

const (
	CommandLevelInfo  CommandLevel = "info"
	CommandLevelError CommandLevel = "error"
)

// CommandRecord is one audit row. Written before the command runs, and again
// with Level error when it fails.
type CommandRecord struct {
	bun.BaseModel `bun:"table:commands,alias:c"`

	ID          int64        `bun:"id,pk,autoincrement" json:"id"`
	GuildID     string       `bun:"guild_id,notnull" json:"guild_id"`
	Name        string       `bun:"name,notnull" json:"name"`
	Options     string       `bun:"options,notnull" json:"options"`
	Timestamp   int64        `bun:"invoked_at,notnull" json:"invoked_at"`
	UserID      string       `bun:"user_id,notnull" json:"user_id"`
	UserName    string       `bun:"user_name,notnull" json:"user_name"`
	ChannelName string       `bun:"channel_name,notnull" json:"channel_name"`
	Level       CommandLevel `bun:"level,notnull" json:"level"`
	Error       string       `bun:"error,notnull" json:"error"`
}

package config

import "time"

// Camp timing
const (
	// RespawnOffset is added to a time of death to predict the next spawn.
	RespawnOffset = 24 * time.Hour
	// CampOpenWindow is how long before the spawn the camp counts as open.
	CampOpenWindow = 18 * time.Hour
	// StaleAfter drops users from leaderboards when their latest activity is older.
	StaleAfter = 14 * 24 * time.Hour
	// DefaultMob is the tracked spawn.
	DefaultMob = "Drusella Sathir"
)

// Discord limits
const (
	MaxMessageLength = 2000
	// Session listings leave room for the header.
	SessionListChunk = 1850
	AutocompleteMax  = 25
	// Discord allows two channel renames per ten minutes per channel.
	ChannelRenameEvery = 5 * time.Minute
	ChannelRenameBurst = 2
)

// Timeouts
const (
	DefaultQueryTimeout     = 30 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	ConfirmTimeout          = 60 * time.Second
	DashboardTickTimeout    = 10 * time.Second
	NameLookupTimeout       = 3 * time.Second
	ExportTimeout           = 60 * time.Second
	ShutdownTimeout         = 10 * time.Second
)

// Cache settings
const (
	NameCacheSize   = 2048
	NameCacheExpiry = 10 * time.Minute
)

// Colors
const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00
)

// Pagination
const (
	LeaderboardPerPage = 15
	CommandsPerPage    = 10
)

// Placeholder shown when a display name cannot be resolved.
const UnknownMember = "placeholder"

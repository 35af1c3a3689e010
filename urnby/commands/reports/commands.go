package reports

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	List,
	GetUserSessions,
	GetUserSessionsUser,
	GetUserSeconds,
	GetUserTime,
	GetCommands,
	GetUserCommands,
	GetData,
	SessionHistory,
}

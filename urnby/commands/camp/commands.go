package camp

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	ClockIn,
	ClockOut,
	SessionStart,
	SessionEnd,
	GetSession,
	GetActive,
	Urn,
}

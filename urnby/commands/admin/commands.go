package admin

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	AdminDirectUrn,
	AdminChangeHistory,
	AdminDirectRecord,
	AdminRep,
	AdminUnrep,
	AdminClearReps,
	ConfigAdd,
	ConfigAddBonusHours,
	ConfigClearItem,
	GetConfig,
}

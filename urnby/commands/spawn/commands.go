package spawn

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Tod,
	GetTod,
	DashboardRefresh,
	DashboardTimeLeft,
	IPeeped,
	WhoPeeped,
}

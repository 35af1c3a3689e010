package commands

import (
	"github.com/disgoorg/disgo/discord"

	"github.com/urnby/campbot/urnby/commands/admin"
	"github.com/urnby/campbot/urnby/commands/camp"
	"github.com/urnby/campbot/urnby/commands/reports"
	"github.com/urnby/campbot/urnby/commands/reps"
	"github.com/urnby/campbot/urnby/commands/spawn"
	"github.com/urnby/campbot/urnby/commands/system"
)

var Commands = []discord.ApplicationCommandCreate{}

func init() {
	Commands = append(Commands, admin.Commands...)
	Commands = append(Commands, camp.Commands...)
	Commands = append(Commands, reports.Commands...)
	Commands = append(Commands, reps.Commands...)
	Commands = append(Commands, spawn.Commands...)
	Commands = append(Commands, system.Commands...)
}

package reps

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Rep,
	Unrep,
	GetReps,
}

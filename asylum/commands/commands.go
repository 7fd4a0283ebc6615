package commands

import (
	"github.com/disgoorg/disgo/discord"
)

const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00
)

var Commands = []discord.ApplicationCommandCreate{
	Daily,
	Birthday,
	Streaks,
}

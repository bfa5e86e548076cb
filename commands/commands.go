package commands

import (
	"github.com/VTGare/kekboard/bot"
)

// DefaultLeaderboardCommand is the text command that prints the leaderboard.
const DefaultLeaderboardCommand = "!getNums"

func RegisterCommands(b *bot.Bot) {
	b.AddCommand(ping)
	b.AddCommand(leaderboard)

	token := b.Config.String("leaderboard.command")
	if token == "" {
		token = DefaultLeaderboardCommand
	}

	b.AddTextCommand(token, leaderboardText)
}

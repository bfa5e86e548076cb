package bot

import (
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
)

const permalinkBase = "https://discord.com/channels"

// Permalink is the jump URL of a message. Messages outside of a guild use @me.
func Permalink(guildID discord.GuildID, channelID discord.ChannelID, messageID discord.MessageID) string {
	guild := "@me"
	if guildID.IsValid() {
		guild = guildID.String()
	}

	return fmt.Sprintf("%v/%v/%v/%v", permalinkBase, guild, channelID, messageID)
}

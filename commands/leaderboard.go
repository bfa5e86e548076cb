package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/VTGare/kekboard/arikawautils/embeds"
	"github.com/VTGare/kekboard/bot"
	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/tracker"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

// maxEmbeds is how many embeds Discord allows in a single message.
const maxEmbeds = 10

func leaderboard(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "leaderboard",
		Description: "Show the most kek'd messages",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		entries, err := b.Leaderboard.Top(ctx)
		if err != nil {
			ctxzap.Extract(ctx).With("error", err).Error("failed to get the leaderboard")
			return &api.InteractionResponseData{
				Embeds: &[]discord.Embed{errorEmbed()},
			}
		}

		if len(entries) == 0 {
			return &api.InteractionResponseData{Content: option.NewNullableString(emptyText)}
		}

		list := make([]discord.Embed, 0, len(entries))
		for _, entry := range entries {
			list = append(list, entryEmbed(entry))
		}

		if len(list) > maxEmbeds {
			list = list[:maxEmbeds]
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString(header(len(list))),
			Embeds:  &list,
		}
	}
}

func leaderboardText(b *bot.Bot) bot.TextCommandHandler {
	return func(ctx context.Context, msg *gateway.MessageCreateEvent) {
		log := ctxzap.Extract(ctx)

		entries, err := b.Leaderboard.Top(ctx)
		if err != nil {
			log.With("error", err).Error("failed to get the leaderboard")
		}

		for _, data := range leaderboardMessages(entries, err, msg.ID) {
			if _, err := b.State.SendMessageComplex(msg.ChannelID, data); err != nil {
				log.With("error", err).Warn("failed to send a leaderboard message")
			}
		}
	}
}

const emptyText = "Nobody has earned a kek yet. Be funnier."

// leaderboardMessages lays out the reply to the text command: a header
// followed by one reply per entry. It always produces at least one message.
func leaderboardMessages(entries []tracker.Entry, err error, replyTo discord.MessageID) []api.SendMessageData {
	ref := &discord.MessageReference{MessageID: replyTo}

	if err != nil {
		return []api.SendMessageData{{Embeds: []discord.Embed{errorEmbed()}, Reference: ref}}
	}

	if len(entries) == 0 {
		return []api.SendMessageData{{Content: emptyText, Reference: ref}}
	}

	msgs := make([]api.SendMessageData, 0, len(entries)+1)
	msgs = append(msgs, api.SendMessageData{Content: header(len(entries))})

	for _, entry := range entries {
		msgs = append(msgs, api.SendMessageData{
			Embeds:    []discord.Embed{entryEmbed(entry)},
			Reference: ref,
		})
	}

	return msgs
}

func header(n int) string {
	return fmt.Sprintf("Here are your top %v keks", n)
}

func entryEmbed(entry tracker.Entry) discord.Embed {
	eb := embeds.NewBuilder()
	score := strconv.Itoa(entry.Message.Score)

	if entry.Err != nil {
		eb.ErrorTemplate(fmt.Sprintf("Kek #%v is gone. The message or its author can't be found anymore.", entry.Rank)).
			URL(entry.Message.Permalink).
			AddField("keks", score, true)

		return eb.Build()
	}

	eb.Title(fmt.Sprintf("This gem got by %v", entry.AuthorName)).
		URL(entry.Message.Permalink).
		Color(embeds.ColorGreen).
		AddField("content", entry.Content).
		AddField("keks", score, true).
		Footer(fmt.Sprintf("#%v", entry.Rank), "")

	if !entry.PostedAt.IsZero() {
		eb.Timestamp(entry.PostedAt)
	}

	return eb.Build()
}

func errorEmbed() discord.Embed {
	return embeds.NewBuilder().
		ErrorTemplate("Couldn't read the leaderboard right now. Try again in a minute.").
		Build()
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/VTGare/kekboard/arikawautils/embeds"
	"github.com/VTGare/kekboard/bot"
	"github.com/VTGare/kekboard/tracker"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
)

func ping(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "ping",
		Description: "Get the bot's response time and the last rescan",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		latency := b.State.Gateway().Latency().Round(time.Millisecond).String()

		eb := embeds.NewBuilder()
		eb.Title("🏓 Pong!").
			AddField("Latency", latency, true).
			AddField("Last rescan", rescanSummary(b.Tracker.Last(), time.Now()), true)

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}

func rescanSummary(report *tracker.CycleReport, now time.Time) string {
	if report == nil {
		return "Not finished yet"
	}

	summary := fmt.Sprintf("%v messages from %v channels, %v ago",
		report.Messages, report.Channels, now.Sub(report.StartedAt).Round(time.Second))

	if report.Failed > 0 {
		summary += fmt.Sprintf(" (%v channels failed)", report.Failed)
	}

	return summary
}

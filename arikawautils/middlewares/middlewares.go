package middlewares

import (
	"context"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"go.uber.org/zap"
)

// CommandLog logs every slash command and hands the command's logger down
// through the context.
func CommandLog(logger *zap.SugaredLogger) cmdroute.Middleware {
	return func(next cmdroute.InteractionHandler) cmdroute.InteractionHandler {
		mw := func(ctx context.Context, ie *discord.InteractionEvent) *api.InteractionResponse {
			if ie.Data.InteractionType() != discord.CommandInteractionType {
				return next.HandleInteraction(ctx, ie)
			}

			cmd := ie.Data.(*discord.CommandInteraction)

			log := logger.With(
				"sender", ie.SenderID(),
				"guild_id", ie.GuildID,
				"channel_id", ie.ChannelID,
				"command", cmd.Name,
			)

			log.With("options", cmd.Options).Info("executing a command")

			start := time.Now()
			resp := next.HandleInteraction(ctxzap.ToContext(ctx, log), ie)

			log.With("took", time.Since(start)).Debug("executed a command")
			return resp
		}

		return cmdroute.InteractionHandlerFunc(mw)
	}
}

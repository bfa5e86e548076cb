package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/metrics"
	"github.com/VTGare/kekboard/slices"
	"github.com/VTGare/kekboard/store"
	"github.com/VTGare/kekboard/tracker"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// TextCommandHandler handles a plain message command such as !getNums.
type TextCommandHandler func(ctx context.Context, msg *gateway.MessageCreateEvent)

type textCommand struct {
	token   string
	handler TextCommandHandler
}

type Bot struct {
	Config  *koanf.Koanf
	State   *state.State
	Store   store.Store
	Log     *zap.SugaredLogger
	Metrics *metrics.Metrics

	Tracker     *tracker.Coordinator
	Leaderboard *tracker.Leaderboard

	router       *cmdroute.Router
	commands     []api.CreateCommandData
	textCommands []textCommand
	rescan       sync.Once
}

func New(log *zap.SugaredLogger, config *koanf.Koanf, st store.Store, m *metrics.Metrics) (*Bot, error) {
	var (
		r = cmdroute.NewRouter()
		s = state.New("Bot " + config.String("bot.token"))
	)

	s.AddIntents(gateway.IntentGuilds |
		gateway.IntentGuildMembers |
		gateway.IntentGuildMessages |
		gateway.IntentGuildMessageReactions |
		gateway.IntentMessageContent,
	)

	schedule, err := tracker.ParseSchedule(scheduleSpec(config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scan.schedule: %w", err)
	}

	provider := NewProvider(s, uint(config.Int("scan.limit")))

	return &Bot{
		Config:  config,
		State:   s,
		Store:   st,
		Log:     log,
		Metrics: m,

		Tracker: tracker.NewCoordinator(provider, st, m, tracker.Config{
			Window:      config.Duration("scan.window"),
			Timeout:     durationOr(config, "scan.timeout", tracker.DefaultTimeout),
			Concurrency: config.Int("scan.concurrency"),
			Schedule:    schedule,
		}),
		Leaderboard: tracker.NewLeaderboard(provider, st, m, config.Int("leaderboard.size")),

		router:       r,
		commands:     make([]api.CreateCommandData, 0),
		textCommands: make([]textCommand, 0),
	}, nil
}

func (b *Bot) AddCommand(f func(b *Bot) (command api.CreateCommandData, handler cmdroute.CommandHandlerFunc)) {
	cmd, handler := f(b)

	b.commands = append(b.commands, cmd)
	b.router.AddFunc(cmd.Name, handler)
}

// AddTextCommand runs handler for every message that starts with token.
// Commands are matched in the order they were added.
func (b *Bot) AddTextCommand(token string, f func(b *Bot) TextCommandHandler) {
	b.textCommands = append(b.textCommands, textCommand{token: token, handler: f(b)})
}

func (b *Bot) textCommand(content string) (textCommand, bool) {
	return slices.Find(b.textCommands, func(cmd textCommand) bool {
		return strings.HasPrefix(content, cmd.token)
	})
}

func (b *Bot) AddMiddleware(mw cmdroute.Middleware) {
	b.router.Use(mw)
}

// Start connects to the gateway and blocks until ctx is cancelled. The first
// Ready event starts the rescan loop.
func (b *Bot) Start(ctx context.Context) error {
	b.State.AddInteractionHandler(b.router)
	b.State.AddHandler(b.onReady(ctx))
	b.State.AddHandler(b.onMessage(ctx))

	if err := cmdroute.OverwriteCommands(b.State, b.commands); err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	if err := b.State.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	return nil
}

func (b *Bot) onReady(ctx context.Context) func(*gateway.ReadyEvent) {
	return func(e *gateway.ReadyEvent) {
		b.Log.With("user", e.User.Username, "guilds", len(e.Guilds)).
			Info("connected to Discord")

		b.rescan.Do(func() {
			go b.Tracker.Run(ctx)
		})
	}
}

func (b *Bot) onMessage(ctx context.Context) func(*gateway.MessageCreateEvent) {
	return func(e *gateway.MessageCreateEvent) {
		if e.Author.Bot {
			return
		}

		cmd, ok := b.textCommand(e.Content)
		if !ok {
			return
		}

		log := b.Log.With(
			"sender", e.Author.ID,
			"guild_id", e.GuildID,
			"channel_id", e.ChannelID,
			"command", cmd.token,
		)

		log.Info("executing a text command")
		cmd.handler(ctxzap.ToContext(ctx, log), e)
	}
}

func scheduleSpec(config *koanf.Koanf) string {
	if spec := config.String("scan.schedule"); spec != "" {
		return spec
	}

	return tracker.DefaultInterval.String()
}

func durationOr(config *koanf.Koanf, key string, def time.Duration) time.Duration {
	if !config.Exists(key) {
		return def
	}

	return config.Duration(key)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/kek"
	"github.com/VTGare/kekboard/slices"
	"github.com/VTGare/kekboard/tracker"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
)

// Provider implements tracker.Provider on top of an arikawa state.
type Provider struct {
	state *state.State
	// limit caps the messages fetched per channel scan, 0 means no cap.
	limit uint
}

var _ tracker.Provider = (*Provider)(nil)

func NewProvider(s *state.State, limit uint) *Provider {
	return &Provider{state: s, limit: limit}
}

func (p *Provider) Channels(ctx context.Context) ([]tracker.Channel, error) {
	log := ctxzap.Extract(ctx)
	s := p.state.WithContext(ctx)

	guilds, err := s.Client.Guilds(0)
	if err != nil {
		return nil, fmt.Errorf("failed to get guilds: %w", err)
	}

	channels := make([]tracker.Channel, 0)
	for _, guild := range guilds {
		chs, err := s.Channels(guild.ID)
		if err != nil {
			log.With("guild_id", guild.ID, "error", err).
				Warn("failed to get guild channels")
			continue
		}

		channels = append(channels, slices.Map(chs, channelFromDiscord)...)
	}

	return channels, nil
}

func (p *Provider) MessagesSince(ctx context.Context, channelID string, since time.Time) ([]tracker.Message, error) {
	s := p.state.WithContext(ctx)

	chID, err := parseChannelID(channelID)
	if err != nil {
		return nil, err
	}

	ch, err := s.Channel(chID)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	after := discord.MessageID(discord.NewSnowflake(since))
	msgs, err := s.Client.MessagesAfter(chID, after, p.limit)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	return slices.Map(msgs, func(m discord.Message) tracker.Message {
		return messageFromDiscord(ch.GuildID, m)
	}), nil
}

func (p *Provider) Message(ctx context.Context, channelID, messageID string) (*tracker.Message, error) {
	s := p.state.WithContext(ctx)

	chID, err := parseChannelID(channelID)
	if err != nil {
		return nil, err
	}

	id, err := discord.ParseSnowflake(messageID)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", messageID, err)
	}

	ch, err := s.Channel(chID)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	msg, err := s.Message(chID, discord.MessageID(id))
	if err != nil {
		return nil, wrapNotFound(err)
	}

	m := messageFromDiscord(ch.GuildID, *msg)
	return &m, nil
}

func (p *Provider) DisplayName(ctx context.Context, channelID, userID string) (string, error) {
	s := p.state.WithContext(ctx)

	chID, err := parseChannelID(channelID)
	if err != nil {
		return "", err
	}

	id, err := discord.ParseSnowflake(userID)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	ch, err := s.Channel(chID)
	if err != nil {
		return "", wrapNotFound(err)
	}

	member, err := s.Member(ch.GuildID, discord.UserID(id))
	if err != nil {
		return "", wrapNotFound(err)
	}

	if member.Nick != "" {
		return member.Nick, nil
	}

	return member.User.Username, nil
}

func channelFromDiscord(ch discord.Channel) tracker.Channel {
	return tracker.Channel{
		ID:      ch.ID.String(),
		GuildID: ch.GuildID.String(),
		Name:    ch.Name,
		Text:    ch.Type == discord.GuildText || ch.Type == discord.GuildAnnouncement,
	}
}

func messageFromDiscord(guildID discord.GuildID, m discord.Message) tracker.Message {
	if m.GuildID.IsValid() {
		guildID = m.GuildID
	}

	return tracker.Message{
		ID:        m.ID.String(),
		ChannelID: m.ChannelID.String(),
		GuildID:   guildID.String(),
		AuthorID:  m.Author.ID.String(),
		Author:    m.Author.Username,
		Content:   m.Content,
		Permalink: Permalink(guildID, m.ChannelID, m.ID),
		Timestamp: m.Timestamp.Time(),
		Reactions: slices.Map(m.Reactions, reactionFromDiscord),
	}
}

func reactionFromDiscord(r discord.Reaction) kek.Reaction {
	emoji := kek.Plain(r.Emoji.Name)
	if r.Emoji.ID.IsValid() {
		emoji = kek.Named(r.Emoji.Name)
	}

	return kek.Reaction{Emoji: emoji, Count: r.Count}
}

func parseChannelID(channelID string) (discord.ChannelID, error) {
	id, err := discord.ParseSnowflake(channelID)
	if err != nil {
		return 0, fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}

	return discord.ChannelID(id), nil
}

func wrapNotFound(err error) error {
	var httpErr *httputil.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %v", tracker.ErrNotFound, err)
	}

	return err
}

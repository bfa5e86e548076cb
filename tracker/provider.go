// Package tracker scans chat channels for kek reactions, keeps the store up
// to date and builds the leaderboard.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/VTGare/kekboard/kek"
)

// ErrNotFound is returned by a Provider when a message, channel or member no
// longer exists.
var ErrNotFound = errors.New("not found")

// Provider is the chat platform as seen by the tracker.
type Provider interface {
	// Channels lists every channel the bot can see.
	Channels(ctx context.Context) ([]Channel, error)
	// MessagesSince returns the messages of a text channel posted at or after since.
	MessagesSince(ctx context.Context, channelID string, since time.Time) ([]Message, error)
	// Message fetches a single message.
	Message(ctx context.Context, channelID, messageID string) (*Message, error)
	// DisplayName resolves the name a user goes by in the channel's guild.
	DisplayName(ctx context.Context, channelID, userID string) (string, error)
}

type Channel struct {
	ID      string
	GuildID string
	Name    string
	// Text is false for voice channels, categories and anything else without history.
	Text bool
}

type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	Author    string
	Content   string
	Permalink string
	Timestamp time.Time
	Reactions []kek.Reaction
}

package bot

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/VTGare/kekboard/kek"
	"github.com/VTGare/kekboard/tracker"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
)

func TestPermalink(t *testing.T) {
	tests := []struct {
		name  string
		guild discord.GuildID
		want  string
	}{
		{name: "guild", guild: 10, want: "https://discord.com/channels/10/20/30"},
		{name: "direct message", guild: 0, want: "https://discord.com/channels/@me/20/30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Permalink(tt.guild, 20, 30); got != tt.want {
				t.Errorf("Permalink() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageFromDiscord(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	m := discord.Message{
		ID:        30,
		ChannelID: 20,
		Author:    discord.User{ID: 40, Username: "alice"},
		Content:   "lmao",
		Timestamp: discord.NewTimestamp(ts),
		Reactions: []discord.Reaction{
			{Count: 3, Emoji: discord.Emoji{ID: 99, Name: "KEKW"}},
			{Count: 1, Emoji: discord.Emoji{Name: "😂"}},
		},
	}

	got := messageFromDiscord(10, m)

	if got.ID != "30" || got.ChannelID != "20" || got.GuildID != "10" || got.AuthorID != "40" {
		t.Errorf("ids = %+v", got)
	}

	if got.Permalink != "https://discord.com/channels/10/20/30" {
		t.Errorf("Permalink = %v", got.Permalink)
	}

	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}

	want := []kek.Reaction{
		{Emoji: kek.Named("KEKW"), Count: 3},
		{Emoji: kek.Plain("😂"), Count: 1},
	}

	if len(got.Reactions) != len(want) {
		t.Fatalf("len(Reactions) = %d, want %d", len(got.Reactions), len(want))
	}

	for i := range want {
		if got.Reactions[i] != want[i] {
			t.Errorf("Reactions[%d] = %+v, want %+v", i, got.Reactions[i], want[i])
		}
	}

	if score := kek.Score(got.Reactions); score != 3 {
		t.Errorf("Score() = %d, want 3", score)
	}
}

func TestChannelFromDiscord(t *testing.T) {
	tests := []struct {
		typ  discord.ChannelType
		text bool
	}{
		{typ: discord.GuildText, text: true},
		{typ: discord.GuildAnnouncement, text: true},
		{typ: discord.GuildVoice, text: false},
		{typ: discord.GuildCategory, text: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.typ), func(t *testing.T) {
			got := channelFromDiscord(discord.Channel{ID: 1, GuildID: 2, Name: "general", Type: tt.typ})
			if got.Text != tt.text {
				t.Errorf("Text = %v, want %v", got.Text, tt.text)
			}

			if got.ID != "1" || got.GuildID != "2" || got.Name != "general" {
				t.Errorf("channel = %+v", got)
			}
		})
	}
}

func TestWrapNotFound(t *testing.T) {
	notFound := &httputil.HTTPError{Status: 404, Message: "Unknown Message"}
	if err := wrapNotFound(notFound); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("wrapNotFound(404) = %v, want ErrNotFound", err)
	}

	forbidden := &httputil.HTTPError{Status: 403, Message: "Missing Access"}
	if err := wrapNotFound(forbidden); errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("wrapNotFound(403) should not be ErrNotFound")
	}
}

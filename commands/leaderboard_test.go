package commands

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/VTGare/kekboard/arikawautils/embeds"
	"github.com/VTGare/kekboard/kek"
	"github.com/VTGare/kekboard/metrics"
	"github.com/VTGare/kekboard/store"
	"github.com/VTGare/kekboard/store/sqlite"
	"github.com/VTGare/kekboard/tracker"
	"github.com/VTGare/kekboard/tracker/trackertest"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/prometheus/client_golang/prometheus"
)

func field(t *testing.T, embed discord.Embed, name string) string {
	t.Helper()

	for _, f := range embed.Fields {
		if f.Name == name {
			return f.Value
		}
	}

	t.Fatalf("embed %q has no %q field", embed.Title, name)
	return ""
}

func TestLeaderboardEndToEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	p := trackertest.NewProvider()
	p.AddChannel(tracker.Channel{ID: "100", GuildID: "1", Name: "channel1", Text: true}, tracker.Message{
		ID:        "500",
		AuthorID:  "42",
		Content:   "what did the kek say to the other kek",
		Timestamp: now.Add(-time.Hour),
		Reactions: []kek.Reaction{
			{Emoji: kek.Named("kekw"), Count: 3},
			{Emoji: kek.Named("sad"), Count: 1},
		},
	})
	p.AddChannel(tracker.Channel{ID: "200", GuildID: "1", Name: "channel2", Text: true}, tracker.Message{
		ID:        "600",
		AuthorID:  "43",
		Content:   "nobody laughed",
		Timestamp: now.Add(-time.Hour),
	})
	p.SetName("42", "Alice")

	st := sqlite.New(filepath.Join(t.TempDir(), "kekboard.db"))
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer st.Close(ctx)

	m := metrics.New(prometheus.NewRegistry())
	if _, err := tracker.NewCoordinator(p, st, m, tracker.Config{Clock: trackertest.NewClock(now)}).RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	entries, err := tracker.NewLeaderboard(p, st, m, 5).Top(ctx)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}

	msgs := leaderboardMessages(entries, nil, 777)
	if len(msgs) != 2 {
		t.Fatalf("len(leaderboardMessages()) = %d, want header and one entry", len(msgs))
	}

	if msgs[0].Content != "Here are your top 1 keks" {
		t.Errorf("header = %q", msgs[0].Content)
	}

	reply := msgs[1]
	if reply.Reference == nil || reply.Reference.MessageID != 777 {
		t.Errorf("entry is not a reply to the command: %+v", reply.Reference)
	}

	embed := reply.Embeds[0]
	if !strings.Contains(embed.Title, "Alice") {
		t.Errorf("title = %q, want the author's name", embed.Title)
	}

	if got := field(t, embed, "content"); got != "what did the kek say to the other kek" {
		t.Errorf("content = %q", got)
	}

	if got := field(t, embed, "keks"); got != "3" {
		t.Errorf("keks = %q, want 3", got)
	}

	if embed.URL != "https://discord.com/channels/1/100/500" {
		t.Errorf("URL = %q", embed.URL)
	}

	if posted := now.Add(-time.Hour); !embed.Timestamp.Time().Equal(posted) {
		t.Errorf("timestamp = %v, want %v", embed.Timestamp.Time(), posted)
	}
}

func TestLeaderboardMessagesStaleEntry(t *testing.T) {
	entries := []tracker.Entry{
		{
			Rank:    1,
			Message: &store.TrackedMessage{MessageID: "1", Score: 9, Permalink: "https://discord.com/channels/1/2/1"},
			Err:     tracker.ErrNotFound,
		},
		{
			Rank:       2,
			Message:    &store.TrackedMessage{MessageID: "2", Score: 4},
			AuthorName: "Bob",
			Content:    "",
		},
	}

	msgs := leaderboardMessages(entries, nil, 1)
	if len(msgs) != 3 {
		t.Fatalf("len(leaderboardMessages()) = %d, want 3", len(msgs))
	}

	stale := msgs[1].Embeds[0]
	if stale.Color != embeds.ColorRed {
		t.Errorf("stale entry color = %v, want red", stale.Color)
	}

	if got := field(t, stale, "keks"); got != "9" {
		t.Errorf("stale keks = %q, want 9", got)
	}

	healthy := msgs[2].Embeds[0]
	if got := field(t, healthy, "content"); got == "" {
		t.Error("empty content must be replaced with a placeholder")
	}
}

func TestLeaderboardMessagesEmpty(t *testing.T) {
	msgs := leaderboardMessages(nil, nil, 1)
	if len(msgs) != 1 || msgs[0].Content != emptyText {
		t.Errorf("leaderboardMessages() = %+v", msgs)
	}
}

func TestLeaderboardMessagesError(t *testing.T) {
	msgs := leaderboardMessages(nil, errors.New("database is locked"), 1)
	if len(msgs) != 1 || len(msgs[0].Embeds) != 1 {
		t.Fatalf("leaderboardMessages() = %+v", msgs)
	}

	if msgs[0].Embeds[0].Color != embeds.ColorRed {
		t.Errorf("error reply should use the error template")
	}
}

func TestRescanSummary(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		report *tracker.CycleReport
		want   string
	}{
		{name: "pending", report: nil, want: "Not finished yet"},
		{
			name:   "ok",
			report: &tracker.CycleReport{StartedAt: now.Add(-30 * time.Second), Channels: 4, Messages: 12},
			want:   "12 messages from 4 channels, 30s ago",
		},
		{
			name:   "partial",
			report: &tracker.CycleReport{StartedAt: now.Add(-time.Minute), Channels: 4, Failed: 1, Messages: 3},
			want:   "3 messages from 4 channels, 1m0s ago (1 channels failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rescanSummary(tt.report, now); got != tt.want {
				t.Errorf("rescanSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

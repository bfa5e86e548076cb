package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/metrics"
	"github.com/VTGare/kekboard/store"
	"golang.org/x/sync/errgroup"
)

const DefaultLeaderboardSize = 5

// Entry is one leaderboard row resolved against the chat platform. Err is
// set when the message or its author could not be resolved; the stored row
// is still available in Message.
type Entry struct {
	Rank       int
	Message    *store.TrackedMessage
	AuthorName string
	Content    string
	PostedAt   time.Time
	Err        error
}

// Leaderboard reads the best messages from the store and brings them back to life.
type Leaderboard struct {
	provider Provider
	store    store.MessageStore
	metrics  *metrics.Metrics
	size     int
}

func NewLeaderboard(provider Provider, st store.MessageStore, m *metrics.Metrics, size int) *Leaderboard {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}

	return &Leaderboard{provider: provider, store: st, metrics: m, size: size}
}

func (l *Leaderboard) Size() int {
	return l.size
}

// Top returns up to Size entries, best first. Rows that fail to resolve are
// returned with Err set instead of failing the whole leaderboard.
func (l *Leaderboard) Top(ctx context.Context) ([]Entry, error) {
	log := ctxzap.Extract(ctx)

	rows, err := l.store.TopMessages(ctx, l.size)
	if err != nil {
		l.metrics.LeaderboardRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("get top messages: %w", err)
	}

	var (
		entries = make([]Entry, len(rows))
		g       errgroup.Group
	)

	for i, row := range rows {
		g.Go(func() error {
			entries[i] = l.resolve(ctx, i+1, row)
			return nil
		})
	}

	g.Wait()

	outcome := metrics.OutcomeOK
	for _, entry := range entries {
		if entry.Err != nil {
			outcome = metrics.OutcomePartial

			log.With("message_id", entry.Message.MessageID, "channel_id", entry.Message.ChannelID, "error", entry.Err).
				Warn("failed to resolve a leaderboard entry")
		}
	}

	l.metrics.LeaderboardRequests.WithLabelValues(outcome).Inc()
	return entries, nil
}

func (l *Leaderboard) resolve(ctx context.Context, rank int, row *store.TrackedMessage) Entry {
	entry := Entry{Rank: rank, Message: row}

	msg, err := l.provider.Message(ctx, row.ChannelID, row.MessageID)
	if err != nil {
		entry.Err = fmt.Errorf("fetch message %v: %w", row.MessageID, err)
		return entry
	}

	entry.Content = msg.Content
	entry.PostedAt = msg.Timestamp

	name, err := l.provider.DisplayName(ctx, row.ChannelID, row.AuthorID)
	if err != nil {
		entry.Err = fmt.Errorf("resolve author %v: %w", row.AuthorID, err)
		return entry
	}

	entry.AuthorName = name
	return entry
}

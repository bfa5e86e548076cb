package tracker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/kek"
	"github.com/VTGare/kekboard/slices"
)

// DefaultWindow is how far back a scan looks.
const DefaultWindow = 5 * 24 * time.Hour

// Result is a message that earned at least one kek.
type Result struct {
	Message Message
	Score   int
}

// Scanner scores the recent history of a single channel.
type Scanner struct {
	provider Provider
	window   time.Duration
}

func NewScanner(provider Provider, window time.Duration) *Scanner {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Scanner{provider: provider, window: window}
}

// Scan returns the messages posted in ch within the window before now that
// have a positive score, oldest first. Channels without text history yield
// no results.
func (s *Scanner) Scan(ctx context.Context, ch Channel, now time.Time) ([]Result, error) {
	log := ctxzap.Extract(ctx)

	if !ch.Text {
		return nil, nil
	}

	msgs, err := s.provider.MessagesSince(ctx, ch.ID, now.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("fetch history of channel %v: %w", ch.ID, err)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	reacted := slices.Filter(msgs, func(msg Message) bool {
		return len(msg.Reactions) > 0
	})

	results := make([]Result, 0)
	for _, msg := range reacted {
		score := kek.Score(msg.Reactions)
		if score <= 0 {
			continue
		}

		log.With(
			"channel", ch.Name,
			"author", msg.Author,
			"content", msg.Content,
			"reactions", len(msg.Reactions),
			"score", score,
		).Debug("found a kek'd message")

		results = append(results, Result{Message: msg, Score: score})
	}

	return results, nil
}

package store

import (
	"context"
	"time"
)

type MessageStore interface {
	// UpsertMessages inserts or replaces every message keyed by MessageID in a single batch.
	UpsertMessages(ctx context.Context, msgs []*TrackedMessage) error
	// TopMessages returns up to limit messages, highest score first.
	TopMessages(ctx context.Context, limit int) ([]*TrackedMessage, error)
}

// TrackedMessage is a scored message persisted between rescans.
type TrackedMessage struct {
	MessageID string    `bson:"message_id" json:"message_id"`
	ChannelID string    `bson:"channel_id" json:"channel_id"`
	Permalink string    `bson:"permalink" json:"permalink"`
	AuthorID  string    `bson:"author_id" json:"author_id"`
	Score     int       `bson:"score" json:"score"`
	ScannedAt time.Time `bson:"scanned_at" json:"scanned_at"`
}

// Dedupe collapses messages sharing a MessageID, keeping the last one in
// its original position. Nil entries are dropped.
func Dedupe(msgs []*TrackedMessage) []*TrackedMessage {
	last := make(map[string]int, len(msgs))
	for i, msg := range msgs {
		if msg == nil {
			continue
		}

		last[msg.MessageID] = i
	}

	out := make([]*TrackedMessage, 0, len(last))
	for i, msg := range msgs {
		if msg == nil || last[msg.MessageID] != i {
			continue
		}

		out = append(out, msg)
	}

	return out
}

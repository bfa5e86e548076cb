package mongo

import (
	"context"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageStore struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func (ms *messageStore) UpsertMessages(ctx context.Context, msgs []*store.TrackedMessage) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	msgs = store.Dedupe(msgs)
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(msgs))
	for _, msg := range msgs {
		doc := *msg
		if doc.ScannedAt.IsZero() {
			doc.ScannedAt = now
		}

		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"message_id": doc.MessageID}).
			SetReplacement(doc).
			SetUpsert(true),
		)
	}

	_, err := ms.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		log.With("count", len(models), "error", err).
			Error("failed to upsert messages")
		return handleMessageError(err)
	}

	return nil
}

func (ms *messageStore) TopMessages(ctx context.Context, limit int) ([]*store.TrackedMessage, error) {
	log := ctxzap.Extract(ctx)

	if limit <= 0 {
		return []*store.TrackedMessage{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{
			{Key: "score", Value: -1},
			{Key: "scanned_at", Value: -1},
			{Key: "message_id", Value: -1},
		}).
		SetLimit(int64(limit))

	cur, err := ms.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.With("limit", limit, "error", err).
			Error("failed to find top messages")
		return nil, handleMessageError(err)
	}

	msgs := make([]*store.TrackedMessage, 0, limit)
	if err := cur.All(ctx, &msgs); err != nil {
		log.With("limit", limit, "error", err).
			Error("failed to decode top messages")
		return nil, handleMessageError(err)
	}

	return msgs, nil
}

func handleMessageError(err error) error {
	switch {
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return store.ErrUnavailable
	default:
		return store.ErrInternal
	}
}

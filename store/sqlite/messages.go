package sqlite

import (
	"context"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 200

type messageStore struct {
	db *gorm.DB
}

type messageModel struct {
	MessageID string `gorm:"column:message_id;primaryKey"`
	ChannelID string `gorm:"column:channel_id;not null"`
	Permalink string `gorm:"column:permalink"`
	AuthorID  string `gorm:"column:author_id"`
	Score     int    `gorm:"column:score;not null;index:idx_messages_rank,priority:1"`
	ScannedAt int64  `gorm:"column:scanned_at;not null;index:idx_messages_rank,priority:2"`
}

func (messageModel) TableName() string {
	return "messages"
}

var upsertClause = clause.OnConflict{
	Columns:   []clause.Column{{Name: "message_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"channel_id", "permalink", "author_id", "score", "scanned_at"}),
}

func (ms *messageStore) UpsertMessages(ctx context.Context, msgs []*store.TrackedMessage) error {
	log := ctxzap.Extract(ctx)

	msgs = store.Dedupe(msgs)
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	models := make([]messageModel, 0, len(msgs))
	for _, msg := range msgs {
		scannedAt := msg.ScannedAt
		if scannedAt.IsZero() {
			scannedAt = now
		}

		models = append(models, messageModel{
			MessageID: msg.MessageID,
			ChannelID: msg.ChannelID,
			Permalink: msg.Permalink,
			AuthorID:  msg.AuthorID,
			Score:     msg.Score,
			ScannedAt: scannedAt.UnixNano(),
		})
	}

	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(upsertClause).CreateInBatches(&models, batchSize).Error
	})
	if err != nil {
		log.With("count", len(models), "error", err).
			Error("failed to upsert messages")
		return store.ErrInternal
	}

	return nil
}

func (ms *messageStore) TopMessages(ctx context.Context, limit int) ([]*store.TrackedMessage, error) {
	log := ctxzap.Extract(ctx)

	if limit <= 0 {
		return []*store.TrackedMessage{}, nil
	}

	var models []messageModel
	err := ms.db.WithContext(ctx).
		Order("score DESC").
		Order("scanned_at DESC").
		Order("message_id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		log.With("limit", limit, "error", err).
			Error("failed to query top messages")
		return nil, store.ErrInternal
	}

	msgs := make([]*store.TrackedMessage, 0, len(models))
	for _, model := range models {
		msgs = append(msgs, &store.TrackedMessage{
			MessageID: model.MessageID,
			ChannelID: model.ChannelID,
			Permalink: model.Permalink,
			AuthorID:  model.AuthorID,
			Score:     model.Score,
			ScannedAt: time.Unix(0, model.ScannedAt),
		})
	}

	return msgs, nil
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/VTGare/kekboard/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const messagesCollection = "messages"

// Store is a MongoDB implementation of store.Store.
type Store struct {
	*messageStore

	uri      string
	database string
}

var _ store.Store = (*Store)(nil)

func New(uri, database string) *Store {
	return &Store{
		uri:          uri,
		database:     database,
		messageStore: &messageStore{},
	}
}

// Init connects to the deployment and ensures the collection's indexes.
func (s *Store) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return fmt.Errorf("%w: connect: %v", store.ErrUnavailable, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return fmt.Errorf("%w: ping: %v", store.ErrUnavailable, err)
	}

	db := client.Database(s.database)
	col := db.Collection(messagesCollection)

	_, err = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "score", Value: -1}, {Key: "scanned_at", Value: -1}},
		},
	})
	if err != nil {
		client.Disconnect(ctx)
		return fmt.Errorf("%w: create indexes: %v", store.ErrUnavailable, err)
	}

	s.client = client
	s.db = db
	s.col = col
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	return s.client.Disconnect(ctx)
}

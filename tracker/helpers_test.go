package tracker_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/kek"
	"github.com/VTGare/kekboard/metrics"
	"github.com/VTGare/kekboard/store"
	"github.com/VTGare/kekboard/store/sqlite"
	"github.com/VTGare/kekboard/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"
)

var epoch = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testContext(t *testing.T) context.Context {
	t.Helper()

	return ctxzap.ToContext(context.Background(), zaptest.NewLogger(t).Sugar())
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s := sqlite.New(filepath.Join(t.TempDir(), "kekboard.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func textChannel(id string) tracker.Channel {
	return tracker.Channel{ID: id, GuildID: "guild", Name: "chan-" + id, Text: true}
}

func msg(id, author string, age time.Duration, reactions ...kek.Reaction) tracker.Message {
	return tracker.Message{
		ID:        id,
		AuthorID:  author,
		Author:    "user-" + author,
		Content:   "content of " + id,
		Timestamp: epoch.Add(-age),
		Reactions: reactions,
	}
}

func named(name string, count int) kek.Reaction {
	return kek.Reaction{Emoji: kek.Named(name), Count: count}
}

func plain(char string, count int) kek.Reaction {
	return kek.Reaction{Emoji: kek.Plain(char), Count: count}
}

// failingStore rejects every write and records how many it saw.
type failingStore struct {
	mu     sync.Mutex
	writes int
}

func (fs *failingStore) UpsertMessages(ctx context.Context, msgs []*store.TrackedMessage) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.writes++
	return store.ErrInternal
}

func (fs *failingStore) TopMessages(ctx context.Context, limit int) ([]*store.TrackedMessage, error) {
	return nil, store.ErrInternal
}

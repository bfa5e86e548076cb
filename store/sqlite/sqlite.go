package sqlite

import (
	"context"
	"fmt"

	"github.com/VTGare/kekboard/store"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is a GORM-backed SQLite implementation of store.Store.
type Store struct {
	*messageStore

	path string
}

var _ store.Store = (*Store)(nil)

// New prepares a store for the database file at path. Nothing is opened until Init.
func New(path string) *Store {
	return &Store{path: path, messageStore: &messageStore{}}
}

// Init opens the database and migrates the messages table.
func (s *Store) Init(ctx context.Context) error {
	db, err := gorm.Open(sqlite.Open(s.path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("%w: open %v: %v", store.ErrUnavailable, s.path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	// A single connection serializes batch writes against leaderboard reads.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("%w: ping %v: %v", store.ErrUnavailable, s.path, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&messageModel{}); err != nil {
		sqlDB.Close()
		return fmt.Errorf("%w: migrate: %v", store.ErrUnavailable, err)
	}

	s.db = db
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

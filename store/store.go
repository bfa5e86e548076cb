package store

import (
	"context"
	"errors"
)

type Store interface {
	MessageStore
	Init(ctx context.Context) error
	Close(ctx context.Context) error
}

// Common errors
var (
	ErrInternal    = errors.New("internal error")
	ErrUnavailable = errors.New("storage unavailable")
)

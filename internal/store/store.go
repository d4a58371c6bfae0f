// internal/store/store.go
//
// Persistence layer for game snapshots and rate counters.
//
// Two layers:
//   - Backend: a string key-value contract (Get/Set with optional TTL, plus a
//     fixed-window Consume counter). Implemented in memory, on redis, and on
//     sqlite.
//   - Store: the game repository. Games serializes snapshots to JSON and keeps
//     them under "<prefix>game:<id>" with no expiry.
//
// Neither layer provides read-modify-write isolation; callers that mutate a
// game must serialize per id themselves.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/neologisms/internal/game"
)

// ErrNotFound is returned when a key (or game) is absent or expired.
var ErrNotFound = errors.New("store: not found")

// Backend is the key-value contract games and counters live in.
type Backend interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value at key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Consume counts one hit against key in a fixed window. It returns zero
	// while at most limit hits have landed in the window, and otherwise the
	// time left until the window resets.
	Consume(ctx context.Context, key string, limit int, window time.Duration) (time.Duration, error)

	// Close releases connections held by the backend.
	Close() error
}

// Store defines the persistence interface for games.
type Store interface {
	// Save persists or replaces a game snapshot.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID.
	// Returns ErrNotFound if no snapshot exists.
	Get(ctx context.Context, id string) (*game.Game, error)
}

package session

import (
	"context"
	"sync"

	"github.com/robalobadob/neologisms/internal/game"
)

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// serialized runs the mutating operations of next one at a time per game id.
// The broadcast happens inside the critical section, so each room sees
// updates in commit order. It only covers this process.
type serialized struct {
	next  Operations
	locks *keyedMutex
}

// Serialize wraps ops so DrawCard, GiveClue, Guess and Refresh never overlap
// for the same id.
func Serialize(ops Operations) Operations {
	return &serialized{next: ops, locks: newKeyedMutex()}
}

func (s *serialized) Create(ctx context.Context, id string) (*game.Game, error) {
	return s.next.Create(ctx, id)
}

func (s *serialized) Fetch(ctx context.Context, id string) (*game.Game, error) {
	return s.next.Fetch(ctx, id)
}

func (s *serialized) DrawCard(ctx context.Context, id, username string) (*game.Game, error) {
	defer s.locks.Lock(id)()
	return s.next.DrawCard(ctx, id, username)
}

func (s *serialized) GiveClue(ctx context.Context, id, username, clue string) (*game.Game, error) {
	defer s.locks.Lock(id)()
	return s.next.GiveClue(ctx, id, username, clue)
}

func (s *serialized) Guess(ctx context.Context, id, username string, row, col int) (*game.Game, bool, error) {
	defer s.locks.Lock(id)()
	return s.next.Guess(ctx, id, username, row, col)
}

func (s *serialized) Refresh(ctx context.Context, id string) (*game.Game, error) {
	defer s.locks.Lock(id)()
	return s.next.Refresh(ctx, id)
}

// internal/session/service.go
//
// Boundary operations over stored games.
// Each mutating operation loads the snapshot, applies one transition, saves
// it, and broadcasts the new snapshot to the game's room.
//
// Service on its own is a plain read-modify-write: two concurrent calls for
// the same id can both read the same snapshot and the later write wins.
// Wrap it with Serialize to run mutations for one id one at a time.

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalobadob/neologisms/internal/game"
	"github.com/robalobadob/neologisms/internal/store"
)

// ErrGameNotFound is returned for ids with no stored snapshot.
var ErrGameNotFound = errors.New("session: game not found")

// EventUpdate is the realtime event carrying a post-mutation snapshot.
const EventUpdate = "update"

// Update is the payload broadcast after a mutation and returned to the caller.
type Update struct {
	Game    *game.Game `json:"game"`
	Correct *bool      `json:"correct,omitempty"`
}

// Broadcaster fans a payload out to every subscriber of a room.
type Broadcaster interface {
	Broadcast(room, event string, data any)
}

// Operations is the set of game operations exposed to clients.
type Operations interface {
	Create(ctx context.Context, id string) (*game.Game, error)
	Fetch(ctx context.Context, id string) (*game.Game, error)
	DrawCard(ctx context.Context, id, username string) (*game.Game, error)
	GiveClue(ctx context.Context, id, username, clue string) (*game.Game, error)
	Guess(ctx context.Context, id, username string, row, col int) (*game.Game, bool, error)
	Refresh(ctx context.Context, id string) (*game.Game, error)
}

// Service implements Operations over a game store and a broadcaster.
type Service struct {
	games store.Store
	bc    Broadcaster
}

// New constructs a Service.
func New(games store.Store, bc Broadcaster) *Service {
	return &Service{games: games, bc: bc}
}

// Create stores a fresh game. An empty id gets a generated one; an existing
// game with the same id is replaced.
func (s *Service) Create(ctx context.Context, id string) (*game.Game, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	g, err := game.Fresh(id)
	if err != nil {
		return nil, err
	}
	if err := s.games.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Fetch returns the current snapshot for id.
func (s *Service) Fetch(ctx context.Context, id string) (*game.Game, error) {
	g, err := s.games.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return g, nil
}

func (s *Service) DrawCard(ctx context.Context, id, username string) (*game.Game, error) {
	return s.mutate(ctx, id, nil, func(g *game.Game) error {
		return g.DrawCard(username)
	})
}

func (s *Service) GiveClue(ctx context.Context, id, username, clue string) (*game.Game, error) {
	return s.mutate(ctx, id, nil, func(g *game.Game) error {
		return g.GiveClue(clue, username)
	})
}

// Guess resolves the active clue and reports whether the guess was correct.
func (s *Service) Guess(ctx context.Context, id, username string, row, col int) (*game.Game, bool, error) {
	var correct bool
	g, err := s.mutate(ctx, id, &correct, func(g *game.Game) error {
		var err error
		correct, err = g.Guess(row, col, username)
		return err
	})
	return g, correct, err
}

func (s *Service) Refresh(ctx context.Context, id string) (*game.Game, error) {
	return s.mutate(ctx, id, nil, func(g *game.Game) error {
		g.Refresh()
		return nil
	})
}

// mutate runs one load/apply/save/broadcast cycle. If correct is non-nil it
// is included in the broadcast once apply has set it.
func (s *Service) mutate(ctx context.Context, id string, correct *bool, apply func(*game.Game) error) (*game.Game, error) {
	g, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(g); err != nil {
		return nil, err
	}
	if err := s.games.Save(ctx, g); err != nil {
		return nil, err
	}
	s.bc.Broadcast(g.ID(), EventUpdate, Update{Game: g, Correct: correct})
	return g, nil
}

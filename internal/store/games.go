package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/robalobadob/neologisms/internal/game"
)

// Games stores snapshots in a Backend under "<prefix>game:<id>".
type Games struct {
	backend Backend
	prefix  string
}

// NewGames builds a game repository over b. prefix namespaces every key.
func NewGames(b Backend, prefix string) *Games {
	return &Games{backend: b, prefix: prefix}
}

func (s *Games) key(id string) string { return s.prefix + "game:" + id }

// Save encodes g and writes it without expiry.
func (s *Games) Save(ctx context.Context, g *game.Game) error {
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID(), err)
	}
	if err := s.backend.Set(ctx, s.key(g.ID()), string(b), 0); err != nil {
		return fmt.Errorf("write game %s: %w", g.ID(), err)
	}
	return nil
}

// Get loads and decodes the snapshot for id.
func (s *Games) Get(ctx context.Context, id string) (*game.Game, error) {
	raw, err := s.backend.Get(ctx, s.key(id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read game %s: %w", id, err)
	}
	var g game.Game
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

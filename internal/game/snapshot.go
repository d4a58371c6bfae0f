package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// snapshot is the wire and storage shape of a Game.
type snapshot struct {
	ID          string            `json:"id"`
	Words       Words             `json:"words"`
	Deck        Deck              `json:"deck"`
	Clue        *Clue             `json:"clue"`
	Correct     []Square          `json:"correct"`
	Outstanding []OutstandingCard `json:"outstanding"`
	FinalScore  *int              `json:"finalScore,omitempty"`
}

// MarshalJSON encodes the full snapshot. finalScore is only present once the
// game is complete.
func (g *Game) MarshalJSON() ([]byte, error) {
	s := snapshot{
		ID:          g.id,
		Words:       g.Words(),
		Deck:        g.Deck(),
		Clue:        g.Clue(),
		Correct:     g.Correct(),
		Outstanding: g.Outstanding(),
	}
	if g.Complete() {
		score := g.Score()
		s.FinalScore = &score
	}
	return json.Marshal(s)
}

// UnmarshalJSON restores a game from its snapshot, field by field.
// finalScore is derived and ignored on input.
func (g *Game) UnmarshalJSON(b []byte) error {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s.ID == "" {
		return errors.New("game: snapshot has no id")
	}

	seen := make(map[string]struct{}, len(s.Outstanding))
	for _, o := range s.Outstanding {
		if _, dup := seen[o.Username]; dup {
			return fmt.Errorf("game: duplicate hand for %q", o.Username)
		}
		seen[o.Username] = struct{}{}
		if !o.Square.InBounds() {
			return fmt.Errorf("game: hand square %v out of bounds", o.Square)
		}
	}
	for _, sq := range append(append([]Square{}, s.Deck.Squares...), s.Correct...) {
		if !sq.InBounds() {
			return fmt.Errorf("game: square %v out of bounds", sq)
		}
	}
	if s.Clue != nil && !s.Clue.Square.InBounds() {
		return fmt.Errorf("game: clue square %v out of bounds", s.Clue.Square)
	}

	*g = Game{
		id: s.ID,
		words: Words{
			Vertical:   nonNil(s.Words.Vertical),
			Horizontal: nonNil(s.Words.Horizontal),
		},
		deck:        Deck{Squares: nonNil(s.Deck.Squares)},
		clue:        s.Clue,
		correct:     nonNil(s.Correct),
		outstanding: nonNil(s.Outstanding),
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// internal/game/types.go
//
// Core type definitions for the board engine.
// Defines:
//   - Square: one cell of the 5x5 grid.
//   - Words: the ten axis labels rendered as grid headers.
//   - Deck: the shuffled, draw-once permutation of all grid squares.
//   - Clue / OutstandingCard: the active hint and the cards players still hold.
//   - Game: the aggregate that owns all of the above.

package game

// GridSize is the number of rows (and columns) of the board.
const GridSize = 5

// Square is an immutable grid coordinate. Equality is structural.
type Square struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Equals reports whether s and o name the same cell.
func (s Square) Equals(o Square) bool { return s.X == o.X && s.Y == o.Y }

// InBounds reports whether s lies on the board.
func (s Square) InBounds() bool {
	return s.X >= 0 && s.X < GridSize && s.Y >= 0 && s.Y < GridSize
}

// Words holds the five vertical and five horizontal header labels.
// They are decorative and never checked against gameplay.
type Words struct {
	Vertical   []string `json:"vertical"`
	Horizontal []string `json:"horizontal"`
}

// Deck is the ordered set of undrawn squares. Draws pop from the end.
type Deck struct {
	Squares []Square `json:"squares"`
}

// Clue is the single active hint on a game.
type Clue struct {
	Text     string `json:"text"`
	Square   Square `json:"square"`
	Username string `json:"username"`
}

// OutstandingCard is a square a player has drawn but not yet cleared.
type OutstandingCard struct {
	Username string `json:"username"`
	Square   Square `json:"square"`
}

// Game is the aggregate root. Its state only changes through its methods.
type Game struct {
	id          string
	words       Words
	deck        Deck
	clue        *Clue
	correct     []Square
	outstanding []OutstandingCard // at most one entry per username, in draw order
}

// internal/game/engine.go
//
// State transitions for a single board.
// Responsibilities:
//   - Create games with fresh words and a fully shuffled 25-card deck.
//   - Draw cards into a player's hand, accept clues, resolve guesses.
//   - Report completion (empty deck and no outstanding hands).
//
// Notes:
//   - Every operation checks all of its preconditions before mutating,
//     so a returned error always means the game is unchanged.
//   - Guess builds the cell as Square{X: col, Y: row}. Clients depend on
//     this mapping; keep it.
package game

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/neologisms/internal/words"
)

// Fresh constructs a new game with the given id.
func Fresh(id string) (*Game, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	g := &Game{id: id}
	g.Refresh()
	return g, nil
}

// Refresh resets words, deck, clue, score and hands in place, keeping the id.
func (g *Game) Refresh() {
	g.words = freshWords()
	g.deck = freshDeck()
	g.clue = nil
	g.correct = []Square{}
	g.outstanding = []OutstandingCard{}
}

// DrawCard pops a square from the deck into username's hand.
func (g *Game) DrawCard(username string) error {
	if len(g.deck.Squares) == 0 {
		return ErrDeckEmpty
	}
	if g.holding(username) > 0 {
		return ErrDuplicateHand
	}
	last := len(g.deck.Squares) - 1
	card := g.deck.Squares[last]
	g.deck.Squares = g.deck.Squares[:last]
	g.outstanding = append(g.outstanding, OutstandingCard{Username: username, Square: card})
	return nil
}

// GiveClue makes text the active clue pointing at username's held square.
// The hand stays outstanding until a guess resolves the clue.
func (g *Game) GiveClue(text, username string) error {
	if g.holding(username) != 1 {
		return ErrNoHand
	}
	if g.clue != nil {
		return ErrClueAlreadyGiven
	}
	sq, _ := g.hand(username)
	g.clue = &Clue{Text: text, Square: sq, Username: username}
	return nil
}

// Guess resolves the active clue against the cell at (row, col) and reports
// whether it was the clued square. Whatever the outcome, the clue author's
// hand is cleared, a replacement card is drawn for them if possible, and the
// clue is removed.
func (g *Game) Guess(row, col int, username string) (bool, error) {
	square := Square{X: col, Y: row}
	if !square.InBounds() {
		return false, ErrOutOfBounds
	}
	if g.clue == nil {
		return false, ErrNoActiveClue
	}
	if g.isCorrect(square) {
		return false, ErrAlreadyGuessed
	}
	if username == g.clue.Username {
		return false, ErrSelfGuess
	}

	correct := square.Equals(g.clue.Square)
	if correct {
		g.correct = append(g.correct, square)
	}

	author := g.clue.Username
	kept := g.outstanding[:0]
	for _, o := range g.outstanding {
		if o.Username != author {
			kept = append(kept, o)
		}
	}
	g.outstanding = kept

	// Redraw is best effort; an empty deck just leaves the author empty-handed.
	if err := g.DrawCard(author); err != nil {
		log.Debug().Err(err).Str("game", g.id).Str("username", author).Msg("redraw skipped")
	}
	g.clue = nil
	return correct, nil
}

// ID returns the game's immutable identifier.
func (g *Game) ID() string { return g.id }

// Words returns a copy of the header labels.
func (g *Game) Words() Words {
	return Words{
		Vertical:   append([]string{}, g.words.Vertical...),
		Horizontal: append([]string{}, g.words.Horizontal...),
	}
}

// Deck returns a copy of the undrawn cards.
func (g *Game) Deck() Deck {
	return Deck{Squares: append([]Square{}, g.deck.Squares...)}
}

// Clue returns a copy of the active clue, or nil.
func (g *Game) Clue() *Clue {
	if g.clue == nil {
		return nil
	}
	c := *g.clue
	return &c
}

// Correct returns the correctly identified squares in the order found.
func (g *Game) Correct() []Square { return append([]Square{}, g.correct...) }

// Outstanding returns the held cards in draw order.
func (g *Game) Outstanding() []OutstandingCard {
	return append([]OutstandingCard{}, g.outstanding...)
}

// Hand returns the square username holds, if any.
func (g *Game) Hand(username string) (Square, bool) { return g.hand(username) }

// Score is the number of correctly identified squares.
func (g *Game) Score() int { return len(g.correct) }

// Complete reports whether the deck is exhausted and nobody holds a card.
func (g *Game) Complete() bool {
	return len(g.deck.Squares) == 0 && len(g.outstanding) == 0
}

func (g *Game) holding(username string) int {
	n := 0
	for _, o := range g.outstanding {
		if o.Username == username {
			n++
		}
	}
	return n
}

func (g *Game) hand(username string) (Square, bool) {
	for _, o := range g.outstanding {
		if o.Username == username {
			return o.Square, true
		}
	}
	return Square{}, false
}

func (g *Game) isCorrect(s Square) bool {
	for _, c := range g.correct {
		if c.Equals(s) {
			return true
		}
	}
	return false
}

// freshWords picks ten distinct words: five per axis.
func freshWords() Words {
	w := words.Random(2 * GridSize)
	return Words{
		Vertical:   append([]string{}, w[:GridSize]...),
		Horizontal: append([]string{}, w[GridSize:]...),
	}
}

// freshDeck returns every grid square exactly once in uniformly random order.
func freshDeck() Deck {
	squares := make([]Square, 0, GridSize*GridSize)
	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			squares = append(squares, Square{X: x, Y: y})
		}
	}
	// Fisher-Yates with crypto/rand.
	for i := len(squares) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		squares[i], squares[j] = squares[j], squares[i]
	}
	return Deck{Squares: squares}
}

func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

package game

// RuleError is a validation failure detected before any state changes.
// Its message is safe to show to players.
type RuleError struct {
	msg string
}

func (e *RuleError) Error() string { return e.msg }

// NewRuleError builds a rule violation with a player-facing message.
func NewRuleError(msg string) *RuleError { return &RuleError{msg: msg} }

var (
	ErrInvalidID        = NewRuleError("Invalid id")
	ErrDeckEmpty        = NewRuleError("No cards left")
	ErrDuplicateHand    = NewRuleError("You already have a card")
	ErrNoHand           = NewRuleError("You don't have a card")
	ErrClueAlreadyGiven = NewRuleError("Clue already given")
	ErrOutOfBounds      = NewRuleError("Invalid square")
	ErrNoActiveClue     = NewRuleError("No clue given")
	ErrAlreadyGuessed   = NewRuleError("Square already guessed")
	ErrSelfGuess        = NewRuleError("You can't guess your own clue")
)

package session

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/robalobadob/neologisms/internal/game"
	"github.com/robalobadob/neologisms/internal/words"
)

// MaxIDLength bounds client-supplied game ids.
const MaxIDLength = 64

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewID returns a readable id: two dictionary words and two hex characters,
// e.g. "ocean-lantern-3f". Uniqueness is probabilistic.
func NewID() string {
	var b [1]byte
	_, _ = rand.Read(b[:])
	return strings.Join(words.Random(2), "-") + "-" + hex.EncodeToString(b[:])
}

// normalizeID trims id, generates one when empty, and rejects ids that would
// not be safe as a storage key or room name.
func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewID(), nil
	}
	if len(id) > MaxIDLength || !idPattern.MatchString(id) {
		return "", game.ErrInvalidID
	}
	return id, nil
}

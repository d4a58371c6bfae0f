// internal/words/words.go
//
// Dictionary used for grid header labels and generated game ids.
//
// Initialization behavior (Init):
//   1. If a path is given, load that file (one word per line).
//   2. Otherwise use the embedded default from assets/words.txt.
//
// Constraints:
//   • Words are lowercase a–z; duplicates are dropped.
//   • The dictionary must hold at least MinWords entries so a board can
//     always be labelled with distinct words.
//   • Initialization is run once (sync.Once). Random falls back to the
//     embedded list if Init was never called.

package words

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"sync"

	"github.com/robalobadob/neologisms/assets"
)

// MinWords is the smallest usable dictionary: one word per grid header.
const MinWords = 10

var (
	initOnce   sync.Once
	mu         sync.RWMutex
	dictionary []string
	initialErr error
)

// Init loads the dictionary exactly once.
// Returns an error if the resulting list is too small.
func Init(path string) error {
	initOnce.Do(func() {
		var list []string
		var err error
		if path != "" {
			list, err = readWordFile(path)
		} else {
			list, err = assets.Dictionary()
		}
		if err != nil {
			initialErr = err
			return
		}
		if len(list) < MinWords {
			initialErr = fmt.Errorf("words: dictionary has %d words, need at least %d", len(list), MinWords)
			return
		}
		set(list)
	})
	return initialErr
}

// readWordFile loads a dictionary override from disk.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ParseWords(f)
}

func set(list []string) {
	mu.Lock()
	dictionary = list
	mu.Unlock()
}

func current() []string {
	mu.RLock()
	list := dictionary
	mu.RUnlock()
	if list != nil {
		return list
	}
	// Init was never called; the embedded list is always valid.
	list, _ = assets.Dictionary()
	set(list)
	return list
}

// Random returns n words chosen uniformly at random. Words are distinct
// whenever the dictionary holds at least n entries.
func Random(n int) []string {
	list := current()
	out := make([]string, 0, n)
	if len(list) == 0 {
		return out
	}
	if n > len(list) {
		for i := 0; i < n; i++ {
			out = append(out, list[randIntn(len(list))])
		}
		return out
	}
	// Partial Fisher-Yates over a copy.
	pool := append([]string{}, list...)
	for i := 0; i < n; i++ {
		j := i + randIntn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out = append(out, pool[i])
	}
	return out
}

// Stats returns the number of loaded words.
func Stats() int { return len(current()) }

func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

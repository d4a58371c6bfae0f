// Package assets embeds the static data the server ships with.
package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed words.txt
var FS embed.FS

// DictionaryName is the embedded default dictionary file.
const DictionaryName = "words.txt"

// ParseWords reads one word per line, skipping blanks and # comments.
// Words are lowercased; anything that is not plain a-z is dropped, as are
// repeats.
func ParseWords(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.ToLower(strings.TrimSpace(sc.Text()))
		if s == "" || strings.HasPrefix(s, "#") || !isAlpha(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Dictionary returns the embedded default word list.
func Dictionary() ([]string, error) {
	f, err := FS.Open(DictionaryName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseWords(f)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

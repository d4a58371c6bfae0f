package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/robalobadob/neologisms/internal/config"
	"github.com/robalobadob/neologisms/internal/game"
	"github.com/robalobadob/neologisms/internal/realtime"
	"github.com/robalobadob/neologisms/internal/session"
	"github.com/robalobadob/neologisms/internal/store"
)

type body struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Correct *bool           `json:"correct"`
	Game    json.RawMessage `json:"game"`
}

type fixture struct {
	t   *testing.T
	h   http.Handler
	hub *realtime.Hub
}

func testConfig() *config.Config {
	return &config.Config{
		KeyPrefix:        "test:",
		ClientOrigin:     "*",
		CreateRateLimit:  100,
		CreateRateWindow: time.Minute,
		RequestTimeout:   5 * time.Second,
	}
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	backend := store.NewMemory()
	hub := realtime.NewHub()
	ops := session.Serialize(session.New(store.NewGames(backend, cfg.KeyPrefix), hub))
	return &fixture{t: t, h: New(cfg, ops, backend, hub).Router(), hub: hub}
}

func (f *fixture) do(method, path string, payload any) (int, body) {
	f.t.Helper()
	var rdr *bytes.Reader
	if s, ok := payload.(string); ok {
		rdr = bytes.NewReader([]byte(s))
	} else {
		b, _ := json.Marshal(payload)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)

	var out body
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		f.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func (f *fixture) post(path string, payload any) body {
	f.t.Helper()
	code, out := f.do(http.MethodPost, path, payload)
	if code != http.StatusOK {
		f.t.Fatalf("POST %s: status %d (%+v)", path, code, out)
	}
	return out
}

func snapshot(t *testing.T, raw json.RawMessage) *game.Game {
	t.Helper()
	var g game.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		t.Fatalf("decode game %s: %v", raw, err)
	}
	return &g
}

func TestHealth(t *testing.T) {
	f := newFixture(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"ok":true}` {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestFullRound(t *testing.T) {
	f := newFixture(t, testConfig())
	sub := f.hub.Subscribe()
	f.hub.Join(sub, "room-1")

	out := f.post("/new_game", map[string]string{"id": "room-1"})
	if !out.Success {
		t.Fatalf("new_game: %+v", out)
	}

	out = f.post("/draw_card", map[string]string{"id": "room-1", "username": "alice"})
	if !out.Success {
		t.Fatalf("draw_card: %+v", out)
	}
	sq, ok := snapshot(t, out.Game).Hand("alice")
	if !ok {
		t.Fatal("alice has no card")
	}

	out = f.post("/give_clue", map[string]string{"id": "room-1", "username": "alice", "clue": "ocean"})
	if !out.Success {
		t.Fatalf("give_clue: %+v", out)
	}

	out = f.post("/guess", map[string]any{"id": "room-1", "username": "bob", "row": sq.Y, "col": sq.X})
	if !out.Success || out.Correct == nil || !*out.Correct {
		t.Fatalf("guess: %+v", out)
	}
	if g := snapshot(t, out.Game); g.Score() != 1 || g.Clue() != nil {
		t.Errorf("after guess: score %d clue %v", g.Score(), g.Clue())
	}

	code, fetched := f.do(http.MethodGet, "/game?id="+url.QueryEscape("room-1"), nil)
	if code != http.StatusOK || !fetched.Success {
		t.Fatalf("game: %d %+v", code, fetched)
	}

	// draw, clue, guess each broadcast; new_game does not.
	var events []string
	for len(events) < 3 {
		select {
		case frame := <-sub.Messages():
			var m struct {
				Event string `json:"event"`
				Data  body   `json:"data"`
			}
			if err := json.Unmarshal(frame, &m); err != nil {
				t.Fatal(err)
			}
			events = append(events, m.Event)
			if len(events) == 3 && (m.Data.Correct == nil || !*m.Data.Correct) {
				t.Errorf("guess broadcast correct = %v", m.Data.Correct)
			}
		case <-time.After(time.Second):
			t.Fatalf("got %d broadcasts, want 3", len(events))
		}
	}
	select {
	case frame := <-sub.Messages():
		t.Errorf("unexpected extra broadcast %s", frame)
	default:
	}
}

func TestRefreshBroadcasts(t *testing.T) {
	f := newFixture(t, testConfig())
	f.post("/new_game", map[string]string{"id": "r"})
	sub := f.hub.Subscribe()
	f.hub.Join(sub, "r")

	out := f.post("/refresh", map[string]string{"id": "r"})
	if !out.Success {
		t.Fatalf("refresh: %+v", out)
	}
	select {
	case <-sub.Messages():
	case <-time.After(time.Second):
		t.Fatal("refresh did not broadcast")
	}
}

func TestValidationFailures(t *testing.T) {
	f := newFixture(t, testConfig())
	f.post("/new_game", map[string]string{"id": "v"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   string
	}{
		{"clue missing id", http.MethodPost, "/give_clue", map[string]string{"clue": "x"}, "Missing id"},
		{"clue missing text", http.MethodPost, "/give_clue", map[string]string{"id": "v", "username": "a"}, "Missing required fields"},
		{"clue without card", http.MethodPost, "/give_clue", map[string]string{"id": "v", "username": "a", "clue": "x"}, "You don't have a card"},
		{"guess missing username", http.MethodPost, "/guess", map[string]any{"id": "v", "row": 0, "col": 0}, "Missing username"},
		{"guess missing square", http.MethodPost, "/guess", map[string]any{"id": "v", "username": "b", "row": 0}, "Missing square"},
		{"guess out of bounds", http.MethodPost, "/guess", map[string]any{"id": "v", "username": "b", "row": 0, "col": 5}, "Invalid square"},
		{"guess without clue", http.MethodPost, "/guess", map[string]any{"id": "v", "username": "b", "row": 0, "col": 0}, "No clue given"},
		{"draw missing username", http.MethodPost, "/draw_card", map[string]string{"id": "v"}, "Missing username"},
		{"unknown game", http.MethodPost, "/draw_card", map[string]string{"id": "ghost", "username": "a"}, "Game not found"},
		{"fetch missing id", http.MethodGet, "/game", nil, "Missing id"},
		{"fetch unknown", http.MethodGet, "/game?id=ghost", nil, "Game not found"},
		{"refresh missing id", http.MethodPost, "/refresh", map[string]string{}, "Missing id"},
		{"bad id", http.MethodPost, "/new_game", map[string]string{"id": "no spaces please"}, "Invalid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := f.do(tt.method, tt.path, tt.body)
			if code != http.StatusOK {
				t.Errorf("status = %d, want 200", code)
			}
			if out.Success || out.Error != tt.want {
				t.Errorf("got %+v, want error %q", out, tt.want)
			}
		})
	}
}

func TestDuplicateDrawLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, testConfig())
	f.post("/new_game", map[string]string{"id": "dup"})
	first := f.post("/draw_card", map[string]string{"id": "dup", "username": "a"})

	out := f.post("/draw_card", map[string]string{"id": "dup", "username": "a"})
	if out.Success || out.Error != "You already have a card" {
		t.Fatalf("second draw: %+v", out)
	}
	_, fetched := f.do(http.MethodGet, "/game?id=dup", nil)
	if !bytes.Equal(first.Game, fetched.Game) {
		t.Errorf("state changed:\n%s\n%s", first.Game, fetched.Game)
	}
}

func TestNewGameWithoutBody(t *testing.T) {
	f := newFixture(t, testConfig())
	code, out := f.do(http.MethodPost, "/new_game", "")
	if code != http.StatusOK || !out.Success {
		t.Fatalf("new_game: %d %+v", code, out)
	}
	if snapshot(t, out.Game).ID() == "" {
		t.Error("no id generated")
	}
}

func TestInvalidJSON(t *testing.T) {
	f := newFixture(t, testConfig())
	code, out := f.do(http.MethodPost, "/draw_card", "{nope")
	if code != http.StatusBadRequest || out.Success {
		t.Errorf("got %d %+v", code, out)
	}
}

func TestRateLimitNewGame(t *testing.T) {
	cfg := testConfig()
	cfg.CreateRateLimit = 2
	f := newFixture(t, cfg)
	for i := 0; i < 2; i++ {
		if code, out := f.do(http.MethodPost, "/new_game", map[string]string{}); code != http.StatusOK || !out.Success {
			t.Fatalf("create %d: %d %+v", i, code, out)
		}
	}
	code, out := f.do(http.MethodPost, "/new_game", map[string]string{})
	if code != http.StatusTooManyRequests || out.Success || out.Error == "" {
		t.Errorf("third create: %d %+v", code, out)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, testConfig())
	req := httptest.NewRequest(http.MethodOptions, "/guess", nil)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q", got)
	}
}

// brokenStore fails every read and write.
type brokenStore struct{}

func (brokenStore) Save(context.Context, *game.Game) error { return errors.New("disk on fire") }
func (brokenStore) Get(context.Context, string) (*game.Game, error) { return nil, errors.New("disk on fire") }

func TestInfrastructureErrorsAreDistinct(t *testing.T) {
	cfg := testConfig()
	h := New(cfg, session.New(brokenStore{}, realtime.NewHub()), nil, nil).Router()

	for _, path := range []string{"/new_game", "/draw_card"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(`{"id":"x","username":"a"}`)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var out body
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
		if rec.Code != http.StatusInternalServerError || out.Success || out.Error != "Unexpected error" {
			t.Errorf("%s: %d %+v", path, rec.Code, out)
		}
	}
}

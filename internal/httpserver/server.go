// internal/httpserver/server.go
//
// HTTP server wiring for the board backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: POST /new_game, /give_clue, /guess, /draw_card, /refresh
//     and GET /game.
//   - Realtime endpoint: GET /ws (room join/leave, update frames).
//
// Notes:
//   - Rule violations and unknown ids answer 200 with {success:false, error}.
//     Anything else is logged and answers 500 {success:false, error:"Unexpected error"}
//     so clients can tell a bad move from a broken server.
//   - new_game is rate limited per client IP through the store backend.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/neologisms/internal/config"
	"github.com/robalobadob/neologisms/internal/game"
	"github.com/robalobadob/neologisms/internal/session"
)

// Limiter counts hits in a fixed window; see store.Backend.Consume.
type Limiter interface {
	Consume(ctx context.Context, key string, limit int, window time.Duration) (time.Duration, error)
}

// Server bundles the router and the game operations it exposes.
type Server struct {
	r       *chi.Mux
	cfg     *config.Config
	games   session.Operations
	limiter Limiter
}

// New constructs a Server, installs middleware, and registers routes.
// realtime serves GET /ws and may be nil.
func New(cfg *config.Config, games session.Operations, limiter Limiter, realtime http.Handler) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, games: games, limiter: limiter}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // also answers preflight

	if realtime != nil {
		s.r.Get("/ws", realtime.ServeHTTP)
	}

	s.r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
		}
		r.Use(jsonContentType) // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"neologisms","endpoints":["/health","POST /new_game","POST /give_clue","POST /guess","POST /draw_card","GET /game","POST /refresh","GET /ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.With(s.rateLimit("new_game")).Post("/new_game", s.handleNewGame)
		r.Post("/give_clue", s.handleGiveClue)
		r.Post("/guess", s.handleGuess)
		r.Post("/draw_card", s.handleDrawCard)
		r.Get("/game", s.handleGame)
		r.Post("/refresh", s.handleRefresh)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, response{Error: "Not found"})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured origin. Credentials are only advertised for a
// concrete origin, never for "*".
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit caps requests per client IP for one route. A failing limiter
// lets the request through.
func (s *Server) rateLimit(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.limiter == nil || s.cfg.CreateRateLimit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			key := s.cfg.KeyPrefix + "ratelimit:" + route + ":" + clientIP(r)
			left, err := s.limiter.Consume(r.Context(), key, s.cfg.CreateRateLimit, s.cfg.CreateRateWindow)
			if err != nil {
				log.Warn().Err(err).Str("route", route).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if left > 0 {
				secs := int(left.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeJSON(w, http.StatusTooManyRequests, response{
					Error: "Too many requests, try again in " + strconv.Itoa(secs) + "s",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr (already rewritten by RealIP).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ------------------------------ GAME ---------------------------------------

// gameReq is the body shared by every POST endpoint; each uses a subset.
type gameReq struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Clue     string `json:"clue"`
	Row      *int   `json:"row"`
	Col      *int   `json:"col"`
}

// response is the envelope of every game endpoint.
type response struct {
	Success bool       `json:"success"`
	Game    *game.Game `json:"game,omitempty"`
	Correct *bool      `json:"correct,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// handleNewGame creates (or replaces) a game. The id is optional.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	g, err := s.games.Create(r.Context(), req.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Game: g})
}

func (s *Server) handleGiveClue(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	if req.ID == "" {
		failure(w, "Missing id")
		return
	}
	if req.Clue == "" {
		failure(w, "Missing required fields")
		return
	}
	g, err := s.games.GiveClue(r.Context(), req.ID, req.Username, req.Clue)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Game: g})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	switch {
	case req.ID == "":
		failure(w, "Missing id")
		return
	case req.Username == "":
		failure(w, "Missing username")
		return
	case req.Row == nil || req.Col == nil:
		failure(w, "Missing square")
		return
	}
	g, correct, err := s.games.Guess(r.Context(), req.ID, req.Username, *req.Row, *req.Col)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Game: g, Correct: &correct})
}

func (s *Server) handleDrawCard(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	if req.ID == "" {
		failure(w, "Missing id")
		return
	}
	if req.Username == "" {
		failure(w, "Missing username")
		return
	}
	g, err := s.games.DrawCard(r.Context(), req.ID, req.Username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Game: g})
}

// handleGame reads a game by ?id= without changing it.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		failure(w, "Missing id")
		return
	}
	g, err := s.games.Fetch(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Game: g})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	if req.ID == "" {
		failure(w, "Missing id")
		return
	}
	g, err := s.games.Refresh(r.Context(), req.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Game: g})
}

// ------------------------------- helpers -----------------------------------

// decode reads the JSON body. An empty body is an empty request.
func decode(w http.ResponseWriter, r *http.Request) (gameReq, bool) {
	var req gameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, response{Error: "Invalid JSON"})
		return req, false
	}
	return req, true
}

// fail maps an operation error onto the response envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var rule *game.RuleError
	switch {
	case errors.As(err, &rule):
		failure(w, rule.Error())
	case errors.Is(err, session.ErrGameNotFound):
		failure(w, "Game not found")
	default:
		log.Error().Err(err).
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("unexpected error")
		writeJSON(w, http.StatusInternalServerError, response{Error: "Unexpected error"})
	}
}

// failure answers a request the client can retry differently.
func failure(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusOK, response{Error: reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package service implements an HTTP service that plays Nim against the AI.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/twipi/twinim/game"
)

const gameExpiry = 24 * time.Hour

const sweepInterval = 4 * time.Hour

type runningGame struct {
	mu sync.Mutex

	*game.Game
	AI        *game.AIPlayer
	StartedAt time.Time
}

// Config configures a Service.
type Config struct {
	// MaxObjects is the largest number of objects allowed on a starting
	// board. Zero means no limit.
	MaxObjects int
}

// Service is the main running Nim service. Each session plays one game at a
// time.
type Service struct {
	games  *xsync.MapOf[string, *runningGame]
	memo   *game.SharedMemo
	cfg    Config
	logger *slog.Logger
}

// NewService creates a new Service. All AI decisions share one memo.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{
		games:  xsync.NewMapOf[string, *runningGame](),
		memo:   game.NewSharedMemo(),
		cfg:    cfg,
		logger: logger,
	}
}

// Handler returns the HTTP handler of the service.
func (s *Service) Handler() http.Handler {
	r := http.NewServeMux()
	r.HandleFunc("POST /games/{id}", s.startGame)
	r.HandleFunc("GET /games/{id}", s.getGame)
	r.HandleFunc("DELETE /games/{id}", s.deleteGame)
	r.HandleFunc("POST /games/{id}/moves", s.makeMove)
	return r
}

type startRequest struct {
	Piles []int `json:"piles"`
	// First is "human" or "ai". Defaults to "human".
	First string `json:"first"`
}

type moveRequest struct {
	// Pile is 1-based.
	Pile   int `json:"pile"`
	Amount int `json:"amount"`
}

type moveResponse struct {
	Player string `json:"player"`
	Pile   int    `json:"pile"`
	Amount int    `json:"amount"`
}

type gameResponse struct {
	Piles      []int          `json:"piles"`
	Turn       string         `json:"turn,omitempty"`
	Moves      []moveResponse `json:"moves,omitempty"`
	Ended      bool           `json:"ended"`
	Winner     string         `json:"winner,omitempty"`
	Overridden bool           `json:"overridden,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var playerNames = map[game.Player]string{
	game.Human: "human",
	game.AI:    "ai",
}

func parsePlayer(name string) (game.Player, bool) {
	switch name {
	case "", "human":
		return game.Human, true
	case "ai":
		return game.AI, true
	default:
		return game.NoPlayer, false
	}
}

func (s *Service) startGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	first, ok := parsePlayer(req.First)
	if !ok {
		writeError(w, http.StatusBadRequest, `first must be "human" or "ai"`)
		return
	}

	gm, err := game.NewGame(req.Piles, first)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if gm.Piles.IsTerminal() {
		writeError(w, http.StatusBadRequest, "at least one pile must hold an object")
		return
	}
	if s.cfg.MaxObjects > 0 && gm.Piles.Exceeds(s.cfg.MaxObjects) {
		writeError(w, http.StatusUnprocessableEntity, "too many objects on the board")
		return
	}

	s.logger.Debug(
		"starting new game",
		"session", id,
		"piles", req.Piles,
		"first", first)

	rg := &runningGame{
		Game:      gm,
		AI:        game.NewAI(gm, game.WithMemo(s.memo)),
		StartedAt: time.Now(),
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()

	_, overridden := s.games.LoadAndStore(id, rg)

	resp := gameResponse{Overridden: overridden}
	if gm.Turn == game.AI {
		m, err := s.aiMove(id, rg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Moves = append(resp.Moves, m)
	}

	rg.fill(&resp)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) getGame(w http.ResponseWriter, r *http.Request) {
	rg, ok := s.games.Load(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no game found, please start a new game")
		return
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()

	var resp gameResponse
	rg.fill(&resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) deleteGame(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.games.LoadAndDelete(r.PathValue("id")); !ok {
		writeError(w, http.StatusNotFound, "no game found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) makeMove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rg, ok := s.games.Load(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no game found, please start a new game")
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()

	m := game.Move{Pile: req.Pile - 1, Amount: req.Amount}
	s.logger.Debug(
		"removing objects",
		"session", id,
		"pile", req.Pile,
		"amount", req.Amount)

	if err := rg.MakeMoveAs(game.Human, m); err != nil {
		switch {
		case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrNotYourTurn):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	resp := gameResponse{
		Moves: []moveResponse{{
			Player: playerNames[game.Human],
			Pile:   req.Pile,
			Amount: req.Amount,
		}},
	}

	if !rg.HasEnded() {
		am, err := s.aiMove(id, rg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Moves = append(resp.Moves, am)
	}

	rg.fill(&resp)
	writeJSON(w, http.StatusOK, resp)
}

// aiMove makes the AI's move. rg.mu must be held.
func (s *Service) aiMove(id string, rg *runningGame) (moveResponse, error) {
	m, err := rg.AI.MakeMove()
	if err != nil {
		s.logger.Error(
			"AI failed to move",
			"session", id,
			"err", err)
		return moveResponse{}, err
	}

	s.logger.Debug(
		"AI moved",
		"session", id,
		"pile", m.Pile+1,
		"amount", m.Amount,
		"memo_size", s.memo.Len())

	return moveResponse{
		Player: playerNames[game.AI],
		Pile:   m.Pile + 1,
		Amount: m.Amount,
	}, nil
}

// fill fills in the board and status of the game. rg.mu must be held.
func (rg *runningGame) fill(resp *gameResponse) {
	resp.Piles = rg.Piles.Clone()
	if winner, ended := rg.GameState(); ended {
		resp.Ended = true
		resp.Winner = playerNames[winner]
	} else {
		resp.Turn = playerNames[rg.Turn]
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Start runs the background upkeep of the service until ctx is canceled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep deletes games that started more than gameExpiry before now.
func (s *Service) sweep(now time.Time) {
	s.games.Range(func(key string, value *runningGame) bool {
		if value.StartedAt.Add(gameExpiry).Before(now) {
			s.logger.Debug(
				"game expired, deleting",
				"session", key,
				"started_at", value.StartedAt)
			s.games.Delete(key)
		}
		return true
	})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
	"github.com/wricardo/mcp-training/connectfour/game/render"
	"github.com/wricardo/mcp-training/connectfour/game/service"
	"github.com/wricardo/mcp-training/connectfour/game/session"
	"github.com/wricardo/mcp-training/connectfour/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub and logger may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger.Named("api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := s.router.PathPrefix("/api").Subrouter()
	// mismatches inside a subrouter only reach its own handler
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Game lifecycle
	api.HandleFunc("/games", s.handleNewGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{key}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{key}", s.handleAbandonGame).Methods("DELETE")
	api.HandleFunc("/games/{key}/join", s.handleJoinGame).Methods("POST")

	// Game operations
	api.HandleFunc("/games/{key}/moves", s.handleMove).Methods("POST")
	api.HandleFunc("/games/{key}/board", s.handleBoard).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionAlreadyExists),
		errors.Is(err, service.ErrSessionAlreadyBound),
		errors.Is(err, service.ErrSelfJoin),
		errors.Is(err, service.ErrGameNotStarted):
		return http.StatusConflict
	case errors.Is(err, engine.ErrEmptyPlayer),
		errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, session.ErrInvalidKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
}

func (s *Server) broadcast(snap *service.Snapshot) {
	if s.hub != nil {
		s.hub.BroadcastSnapshot(snap)
	}
}

// Game lifecycle handlers

type playerRequest struct {
	Key    string          `json:"key,omitempty"`
	Player engine.PlayerID `json:"player"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Player == "" {
		respondError(w, http.StatusBadRequest, "player is required")
		return
	}

	snap, err := s.service.RequestNewGame(r.Context(), req.Key, req.Player)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		filtered := make([]*service.Snapshot, 0, len(games))
		for _, g := range games {
			if string(g.Status) == status {
				filtered = append(filtered, g)
			}
		}
		games = filtered
	}

	total := len(games)
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(games) {
			games = games[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"total": total,
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	snap, err := s.service.GetSnapshot(r.Context(), key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAbandonGame(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	if err := s.service.AbandonGame(r.Context(), key); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.CloseGame(key)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Game %s abandoned", key),
	})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Player == "" {
		respondError(w, http.StatusBadRequest, "player is required")
		return
	}

	snap, err := s.service.JoinGame(r.Context(), key, req.Player)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(snap)
	respondJSON(w, http.StatusOK, snap)
}

// Game operation handlers

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req struct {
		Player engine.PlayerID `json:"player"`
		Column int             `json:"column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Player == "" {
		respondError(w, http.StatusBadRequest, "player is required")
		return
	}

	result, err := s.service.SubmitMove(r.Context(), key, req.Player, req.Column)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// rejected moves change nothing
	if !result.Outcome.IsRejection() {
		s.broadcast(result.Snapshot)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	snap, err := s.service.GetSnapshot(r.Context(), key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, render.Message(snap))
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}

	key := r.URL.Query().Get("game")
	if key == "" {
		http.Error(w, "game parameter required", http.StatusBadRequest)
		return
	}

	// Verify game exists
	if _, err := s.service.GetSnapshot(r.Context(), key); err != nil {
		http.Error(w, "Unknown game", statusFor(err))
		return
	}

	s.hub.ServeWS(w, r, key)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"games":  len(games),
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs every API request at debug level
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the websocket upgrade needs the original writer's Hijacker
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

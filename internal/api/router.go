package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/qninhdt/generals-draft/server/internal/cards"
	"github.com/qninhdt/generals-draft/server/internal/db"
	"github.com/qninhdt/generals-draft/server/internal/game"
	mw "github.com/qninhdt/generals-draft/server/internal/middleware"
	"github.com/qninhdt/generals-draft/server/internal/rules"
	"github.com/qninhdt/generals-draft/server/internal/validation"
)

// Store is the persistence the server relies on
type Store interface {
	SaveSession(sessionID, playerID string, capacity int) error
	IsSessionOwner(sessionID, playerID string) (bool, error)
	GetPlayerSessions(playerID string) ([]string, error)
	LoadSession(sessionID string) (*db.SessionRecord, error)
	SaveMutation(sessionID string, names []string, action, card string, result rules.Result) error
	GetHistory(sessionID string, limit int) ([]db.HistoryEntry, error)
	DeleteSession(sessionID string) error
}

// session pairs an engine with the lock that keeps each mutation and its
// persistence in one step
type session struct {
	engine *game.Engine
	mu     sync.Mutex
}

// Options wires the scoring core and request limits into a server
type Options struct {
	Catalog        *cards.Catalog
	Evaluator      *rules.Evaluator
	Auth           *mw.Authenticator
	Capacity       int
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
	Logger         *log.Logger
}

// Server handles HTTP requests
type Server struct {
	router      chi.Router
	db          Store
	catalog     *cards.Catalog
	evaluator   *rules.Evaluator
	auth        *mw.Authenticator
	capacity    int
	maxBody     int64
	logger      *log.Logger
	sessions    map[string]*session
	sessionsMu  sync.RWMutex
	rateLimiter *mw.RateLimiter
}

// NewServer creates a new API server
func NewServer(database Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Capacity <= 0 {
		opts.Capacity = cards.DefaultCapacity
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1024 * 1024
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 100
	}
	if opts.Evaluator == nil {
		opts.Evaluator = rules.NewEvaluator(nil, logger)
	}

	s := &Server{
		router:      chi.NewRouter(),
		db:          database,
		catalog:     opts.Catalog,
		evaluator:   opts.Evaluator,
		auth:        opts.Auth,
		capacity:    opts.Capacity,
		maxBody:     opts.MaxBodyBytes,
		logger:      logger,
		sessions:    make(map[string]*session),
		rateLimiter: mw.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))
	s.router.Use(s.rateLimiter.Middleware)
	s.router.Use(mw.SecurityHeadersMiddleware)
	s.router.Use(mw.MaxBodySizeMiddleware(s.maxBody))

	// Public endpoints (no auth required)
	s.router.Post("/api/players", s.createPlayer)
	s.router.Get("/api/catalog", s.getCatalog)
	s.router.Get("/api/rules", s.getRules)

	// Protected endpoints (auth required)
	s.router.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Post("/api/sessions", s.createSession)
		r.Get("/api/sessions", s.listSessions)
		r.Get("/api/sessions/{id}", s.getSession)
		r.Delete("/api/sessions/{id}", s.deleteSession)
		r.Post("/api/sessions/{id}/cards", s.addCard)
		r.Delete("/api/sessions/{id}/cards", s.removeAllWithName)
		r.Delete("/api/sessions/{id}/cards/{name}", s.removeCard)
		r.Post("/api/sessions/{id}/reset", s.resetSession)
		r.Get("/api/sessions/{id}/deselections", s.drainDeselections)
		r.Get("/api/sessions/{id}/history", s.getHistory)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response wraps API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// sessionView is the client-facing snapshot of one engine
type sessionView struct {
	ID      string       `json:"id"`
	Status  game.Status  `json:"status"`
	Summary string       `json:"summary"`
	Cards   []cards.Card `json:"cards"`
	Result  rules.Result `json:"result"`
}

func viewOf(snap game.Snapshot) sessionView {
	return sessionView{
		ID:      snap.ID,
		Status:  snap.Status,
		Summary: snap.Status.String(),
		Cards:   snap.Cards,
		Result:  snap.Result.Display(),
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response (sanitized)
func writeError(w http.ResponseWriter, status int, message string) {
	if status >= 500 {
		message = "Internal server error"
	}
	writeJSON(w, status, Response{
		Success: false,
		Error:   message,
	})
}

// newEngine creates an engine that logs every deselection it emits
func (s *Server) newEngine(sessionID string, capacity int) *game.Engine {
	engine := game.NewEngine(sessionID, s.catalog, s.evaluator, game.Options{
		Capacity: capacity,
		Logger:   s.logger,
	})
	engine.Subscribe(func(d game.Deselection) {
		s.logger.Printf("session %s: deselected %s", sessionID, d)
	})
	return engine
}

// sessionFor returns the live session, rebuilding its engine from the
// stored selection when the process has restarted since it was created
func (s *Server) sessionFor(sessionID string) (*session, error) {
	s.sessionsMu.RLock()
	sess, ok := s.sessions[sessionID]
	s.sessionsMu.RUnlock()
	if ok {
		return sess, nil
	}

	rec, err := s.db.LoadSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}

	sess = &session{engine: s.newEngine(sessionID, rec.Capacity)}
	sess.engine.Restore(rec.Cards)
	s.sessions[sessionID] = sess
	return sess, nil
}

// sessionFromRequest validates the session ID, checks ownership and
// resolves the session. It writes the error response itself.
func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sessionID := chi.URLParam(r, "id")
	if err := validation.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	playerID := mw.PlayerID(r.Context())
	if playerID == "" {
		writeError(w, http.StatusUnauthorized, "Missing player ID")
		return nil, false
	}

	isOwner, err := s.db.IsSessionOwner(sessionID, playerID)
	if errors.Is(err, db.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	if err != nil || !isOwner {
		writeError(w, http.StatusForbidden, "Access denied")
		return nil, false
	}

	sess, err := s.sessionFor(sessionID)
	if err != nil {
		s.logger.Printf("session %s: load: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	return sess, true
}

// mutate applies op and stores its snapshot while holding the session lock.
// If storing fails the engine is rolled back to its previous snapshot, so
// the request either completes or leaves the session as it was.
func (s *Server) mutate(w http.ResponseWriter, sess *session, action, card string, op func(*game.Engine) (game.Snapshot, error)) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	prev := sess.engine.Snapshot()

	snap, err := op(sess.engine)
	if errors.Is(err, game.ErrUnknownCard) {
		writeError(w, http.StatusNotFound, "Unknown card")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update session")
		return
	}

	if err := s.db.SaveMutation(snap.ID, snap.Status.Names, action, card, snap.Result); err != nil {
		s.logger.Printf("session %s: persist %s: %v; rolling back", snap.ID, action, err)
		sess.engine.Rollback(prev)
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    viewOf(snap),
	})
}

// createPlayer issues a new player identity and its token
func (s *Server) createPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := uuid.New().String()

	token, err := s.auth.IssueToken(playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Data: map[string]string{
			"player_id": playerID,
			"token":     token,
		},
	})
}

// getCatalog lists every selectable card
func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    s.catalog.All(),
	})
}

// getRules returns the loaded rule table
func (s *Server) getRules(w http.ResponseWriter, r *http.Request) {
	table := s.evaluator.Table()
	if table == nil {
		writeError(w, http.StatusNotFound, "No rules loaded")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    table,
	})
}

// createSession starts an empty selection owned by the caller
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	playerID := mw.PlayerID(r.Context())
	if playerID == "" {
		writeError(w, http.StatusUnauthorized, "Missing player ID")
		return
	}

	// Generate server-side session ID (don't trust client)
	sessionID := uuid.New().String()

	if err := s.db.SaveSession(sessionID, playerID, s.capacity); err != nil {
		s.logger.Printf("session %s: save: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	sess := &session{engine: s.newEngine(sessionID, s.capacity)}
	s.sessionsMu.Lock()
	s.sessions[sessionID] = sess
	s.sessionsMu.Unlock()

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    viewOf(sess.engine.Snapshot()),
	})
}

// listSessions lists all sessions owned by the caller
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	playerID := mw.PlayerID(r.Context())
	if playerID == "" {
		writeError(w, http.StatusUnauthorized, "Missing player ID")
		return
	}

	sessionIDs, err := s.db.GetPlayerSessions(playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessionIDs == nil {
		sessionIDs = []string{}
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    sessionIDs,
	})
}

// getSession returns the current selection and score
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    viewOf(sess.engine.Snapshot()),
	})
}

// deleteSession drops a session from memory and storage
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.db.DeleteSession(sess.engine.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	s.sessionsMu.Lock()
	delete(s.sessions, sess.engine.ID)
	s.sessionsMu.Unlock()

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    "Session deleted",
	})
}

// addCard selects a card, evicting the oldest one at capacity
func (s *Server) addCard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.ValidateCardName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid card name")
		return
	}

	s.mutate(w, sess, "add", req.Name, func(e *game.Engine) (game.Snapshot, error) {
		return e.Add(req.Name)
	})
}

// removeCard deselects one card
func (s *Server) removeCard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if err := validation.ValidateCardName(name); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid card name")
		return
	}

	s.mutate(w, sess, "remove", name, func(e *game.Engine) (game.Snapshot, error) {
		return e.Remove(name), nil
	})
}

// removeAllWithName deletes every entry carrying the name in the query
func (s *Server) removeAllWithName(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if err := validation.ValidateCardName(name); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid card name")
		return
	}

	s.mutate(w, sess, "remove_all", name, func(e *game.Engine) (game.Snapshot, error) {
		return e.RemoveAllWithName(name), nil
	})
}

// resetSession clears the selection
func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	s.mutate(w, sess, "reset", "", func(e *game.Engine) (game.Snapshot, error) {
		return e.Reset(), nil
	})
}

// drainDeselections returns and clears pending deselection notifications
func (s *Server) drainDeselections(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    sess.engine.DrainDeselections(),
	})
}

// getHistory returns published results, newest first
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || validation.ValidateHistoryLimit(n) != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	history, err := s.db.GetHistory(sess.engine.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    history,
	})
}

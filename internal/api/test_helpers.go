package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/qninhdt/generals-draft/server/internal/db"
	"github.com/qninhdt/generals-draft/server/internal/loader"
	mw "github.com/qninhdt/generals-draft/server/internal/middleware"
	"github.com/qninhdt/generals-draft/server/internal/rules"
)

// createTestServer creates a server over the embedded defaults and a temp database
func createTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()
	return createTestServerWithStore(t, func(database *db.DB) Store { return database })
}

// createTestServerWithStore lets a test wrap the database the server writes to
func createTestServerWithStore(t *testing.T, wrap func(*db.DB) Store) (*Server, *db.DB) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	database, err := db.NewDB(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	bundle := loader.Load("", "", logger)
	server := NewServer(wrap(database), Options{
		Catalog:        bundle.Catalog,
		Evaluator:      rules.NewEvaluator(bundle.Table, logger),
		Auth:           mw.NewAuthenticator("test-secret", time.Hour),
		Capacity:       5,
		RateLimitRPS:   10000,
		RateLimitBurst: 10000,
		Logger:         logger,
	})
	return server, database
}

// do sends a request with an optional bearer token and decodes the envelope
func do(t *testing.T, server http.Handler, method, path, token string, body interface{}) (int, Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp Response
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, resp
}

// decodeData re-decodes the envelope payload into out
func decodeData(t *testing.T, resp Response, out interface{}) {
	t.Helper()
	b, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("Failed to marshal data: %v", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
}

// newPlayer registers a player and returns its token
func newPlayer(t *testing.T, server http.Handler) string {
	t.Helper()
	code, resp := do(t, server, http.MethodPost, "/api/players", "", nil)
	if code != http.StatusCreated {
		t.Fatalf("Expected 201 creating player, got %d", code)
	}
	var player struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &player)
	return player.Token
}

// newSession creates a session for token and returns its ID
func newSession(t *testing.T, server http.Handler, token string) string {
	t.Helper()
	code, resp := do(t, server, http.MethodPost, "/api/sessions", token, nil)
	if code != http.StatusCreated {
		t.Fatalf("Expected 201 creating session, got %d", code)
	}
	var view sessionView
	decodeData(t, resp, &view)
	return view.ID
}

// send issues a request without a *testing.T so it can run in goroutines
func send(server http.Handler, method, path, token string, body interface{}) (int, Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, Response{}, err
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp Response
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp, err
}

// failingStore rejects every mutation write
type failingStore struct {
	*db.DB
}

func (f failingStore) SaveMutation(string, []string, string, string, rules.Result) error {
	return errors.New("disk full")
}

package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/qninhdt/generals-draft/server/internal/rules"
)

var ErrSessionNotFound = errors.New("session not found")

// DB wraps database operations
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// SessionRecord is a stored session and its selection, oldest card first
type SessionRecord struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Capacity  int       `json:"capacity"`
	Cards     []string  `json:"cards"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is one published result and the action that produced it
type HistoryEntry struct {
	Action    string       `json:"action"`
	Card      string       `json:"card,omitempty"`
	Result    rules.Result `json:"result"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewDB creates a new database connection
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}

	// Run migrations
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs database migrations
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS session_cards (
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		card_name TEXT NOT NULL,
		PRIMARY KEY (session_id, position),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS score_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		card_name TEXT,
		base_score REAL NOT NULL,
		multiplier REAL NOT NULL,
		final_score REAL NOT NULL,
		description TEXT NOT NULL,
		matched_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_player_id ON sessions(player_id);
	CREATE INDEX IF NOT EXISTS idx_score_history_session_id ON score_history(session_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// SaveSession records a new session and its owner
func (db *DB) SaveSession(sessionID, playerID string, capacity int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO sessions (id, player_id, capacity)
		VALUES (?, ?, ?)
	`, sessionID, playerID, capacity)
	return err
}

// GetSessionOwner returns the owner of a session
func (db *DB) GetSessionOwner(sessionID string) (string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var playerID string
	err := db.conn.QueryRow(`
		SELECT player_id FROM sessions WHERE id = ?
	`, sessionID).Scan(&playerID)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return playerID, nil
}

// IsSessionOwner checks if player owns the session
func (db *DB) IsSessionOwner(sessionID, playerID string) (bool, error) {
	owner, err := db.GetSessionOwner(sessionID)
	if err != nil {
		return false, err
	}
	return owner == playerID, nil
}

// GetPlayerSessions returns all session IDs owned by a player, newest first
func (db *DB) GetPlayerSessions(playerID string) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id FROM sessions WHERE player_id = ? ORDER BY created_at DESC, rowid DESC
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessionIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessionIDs = append(sessionIDs, id)
	}

	return sessionIDs, rows.Err()
}

// SaveSelection replaces the stored selection of a session
func (db *DB) SaveSelection(sessionID string, names []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveSelectionTx(tx, sessionID, names); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveMutation stores the selection and appends its result in one
// transaction, so history never runs ahead of the stored selection
func (db *DB) SaveMutation(sessionID string, names []string, action, card string, result rules.Result) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveSelectionTx(tx, sessionID, names); err != nil {
		return err
	}
	if err := recordResultTx(tx, sessionID, action, card, result); err != nil {
		return err
	}
	return tx.Commit()
}

func saveSelectionTx(tx *sql.Tx, sessionID string, names []string) error {
	res, err := tx.Exec(`
		UPDATE sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.Exec("DELETE FROM session_cards WHERE session_id = ?", sessionID); err != nil {
		return err
	}

	for i, name := range names {
		_, err = tx.Exec(`
			INSERT INTO session_cards (session_id, position, card_name)
			VALUES (?, ?, ?)
		`, sessionID, i, name)
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadSession loads a session and its stored selection
func (db *DB) LoadSession(sessionID string) (*SessionRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rec := &SessionRecord{ID: sessionID}
	err := db.conn.QueryRow(`
		SELECT player_id, capacity, created_at, updated_at FROM sessions WHERE id = ?
	`, sessionID).Scan(&rec.PlayerID, &rec.Capacity, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(`
		SELECT card_name FROM session_cards WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rec.Cards = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		rec.Cards = append(rec.Cards, name)
	}

	return rec, rows.Err()
}

// RecordResult appends a published result to the session history
func (db *DB) RecordResult(sessionID, action, card string, result rules.Result) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := recordResultTx(tx, sessionID, action, card, result); err != nil {
		return err
	}
	return tx.Commit()
}

func recordResultTx(tx *sql.Tx, sessionID, action, card string, result rules.Result) error {
	matchedJSON, _ := json.Marshal(result.MatchedRules)

	_, err := tx.Exec(`
		INSERT INTO score_history (
			session_id, action, card_name, base_score, multiplier, final_score, description, matched_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, action, nullString(card), result.BaseScore, result.Multiplier, result.FinalScore,
		result.MatchedDescription, matchedJSON)
	return err
}

// GetHistory returns up to limit entries, newest first. A limit <= 0 returns everything.
func (db *DB) GetHistory(sessionID string, limit int) ([]HistoryEntry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}

	rows, err := db.conn.Query(`
		SELECT action, card_name, base_score, multiplier, final_score, description, matched_json, created_at
		FROM score_history
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var (
			entry       HistoryEntry
			card        sql.NullString
			matchedJSON string
		)
		err := rows.Scan(&entry.Action, &card, &entry.Result.BaseScore, &entry.Result.Multiplier,
			&entry.Result.FinalScore, &entry.Result.MatchedDescription, &matchedJSON, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		if card.Valid {
			entry.Card = card.String
		}
		if err := json.Unmarshal([]byte(matchedJSON), &entry.Result.MatchedRules); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}

// DeleteSession deletes a session and all its data
func (db *DB) DeleteSession(sessionID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM score_history WHERE session_id = ?",
		"DELETE FROM session_cards WHERE session_id = ?",
		"DELETE FROM sessions WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, sessionID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

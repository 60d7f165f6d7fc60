package db

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/qninhdt/generals-draft/server/internal/rules"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSessionOwnership tests saving and checking owners
func TestSessionOwnership(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveSession("s1", "alice", 5); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := db.SaveSession("s2", "alice", 5); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	owner, err := db.GetSessionOwner("s1")
	if err != nil {
		t.Fatalf("Failed to get owner: %v", err)
	}
	if owner != "alice" {
		t.Errorf("Expected owner alice, got %s", owner)
	}

	ok, err := db.IsSessionOwner("s1", "bob")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Errorf("Expected bob not to own s1")
	}

	ids, err := db.GetPlayerSessions("alice")
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"s2", "s1"}) {
		t.Errorf("Expected [s2 s1], got %v", ids)
	}

	if _, err := db.GetSessionOwner("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

// TestSelectionRoundTrip tests that card order survives storage
func TestSelectionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	db.SaveSession("s1", "alice", 5)

	names := []string{"张飞", "刘备", "关羽"}
	if err := db.SaveSelection("s1", names); err != nil {
		t.Fatalf("Failed to save selection: %v", err)
	}
	if err := db.SaveSelection("s1", names[1:]); err != nil {
		t.Fatalf("Failed to overwrite selection: %v", err)
	}

	rec, err := db.LoadSession("s1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if rec.PlayerID != "alice" || rec.Capacity != 5 {
		t.Errorf("Expected alice/5, got %s/%d", rec.PlayerID, rec.Capacity)
	}
	if !reflect.DeepEqual(rec.Cards, []string{"刘备", "关羽"}) {
		t.Errorf("Expected [刘备 关羽], got %v", rec.Cards)
	}

	if err := db.SaveSelection("missing", names); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

// TestHistory tests appending and reading results
func TestHistory(t *testing.T) {
	db := openTestDB(t)
	db.SaveSession("s1", "alice", 5)

	first := rules.Result{BaseScore: 10, Multiplier: 1, FinalScore: 10, MatchedDescription: rules.NoMatchDescription}
	second := rules.Result{BaseScore: 18, Multiplier: 2, FinalScore: 36, MatchedDescription: "Pair", MatchedRules: []string{"Pair"}}

	if err := db.RecordResult("s1", "add", "刘备", first); err != nil {
		t.Fatalf("Failed to record result: %v", err)
	}
	if err := db.RecordResult("s1", "reset", "", second); err != nil {
		t.Fatalf("Failed to record result: %v", err)
	}

	history, err := db.GetHistory("s1", 0)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(history))
	}
	if history[0].Action != "reset" || history[0].Card != "" {
		t.Errorf("Expected newest entry first, got %+v", history[0])
	}
	if !reflect.DeepEqual(history[0].Result, second) {
		t.Errorf("Expected %+v, got %+v", second, history[0].Result)
	}
	if history[1].Card != "刘备" {
		t.Errorf("Expected card 刘备, got %s", history[1].Card)
	}

	limited, _ := db.GetHistory("s1", 1)
	if len(limited) != 1 {
		t.Errorf("Expected 1 entry with limit, got %d", len(limited))
	}
}

// TestDeleteSession tests that deleting removes every trace
func TestDeleteSession(t *testing.T) {
	db := openTestDB(t)
	db.SaveSession("s1", "alice", 5)
	db.SaveSelection("s1", []string{"刘备"})
	db.RecordResult("s1", "add", "刘备", rules.ZeroResult())

	if err := db.DeleteSession("s1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := db.LoadSession("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	history, _ := db.GetHistory("s1", 0)
	if len(history) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(history))
	}
}

// TestSaveMutation tests that selection and history are written together
func TestSaveMutation(t *testing.T) {
	db := openTestDB(t)
	db.SaveSession("s1", "alice", 5)

	result := rules.Result{BaseScore: 10, Multiplier: 1, FinalScore: 10, MatchedDescription: rules.NoMatchDescription}
	if err := db.SaveMutation("s1", []string{"曹操"}, "add", "曹操", result); err != nil {
		t.Fatalf("Failed to save mutation: %v", err)
	}

	rec, _ := db.LoadSession("s1")
	if !reflect.DeepEqual(rec.Cards, []string{"曹操"}) {
		t.Errorf("Expected [曹操], got %v", rec.Cards)
	}
	history, _ := db.GetHistory("s1", 0)
	if len(history) != 1 || history[0].Card != "曹操" {
		t.Errorf("Expected one add entry, got %+v", history)
	}

	// Unknown session: nothing is written
	if err := db.SaveMutation("missing", []string{"曹操"}, "add", "曹操", result); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if history, _ := db.GetHistory("missing", 0); len(history) != 0 {
		t.Errorf("Expected no history for missing session, got %d entries", len(history))
	}
}

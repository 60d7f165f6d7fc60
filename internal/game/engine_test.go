package game

import (
	"errors"
	"io"
	"log"
	"reflect"
	"sync"
	"testing"

	"github.com/qninhdt/generals-draft/server/internal/cards"
	"github.com/qninhdt/generals-draft/server/internal/rules"
)

// TestEngineAdd tests adding cards and re-evaluating
func TestEngineAdd(t *testing.T) {
	engine := createTestEngine(t)

	snap, err := engine.Add("c1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	result := snap.Result
	if result.BaseScore != 10 || result.Multiplier != 1 || result.FinalScore != 10 {
		t.Errorf("Expected 10 x1 = 10, got %+v", result)
	}
	if result.MatchedDescription != rules.NoMatchDescription {
		t.Errorf("Expected no-match description, got '%s'", result.MatchedDescription)
	}

	for _, name := range []string{"c2", "c3", "c4", "c5"} {
		snap, _ = engine.Add(name)
	}
	result = snap.Result
	if result.FinalScore != 46 {
		t.Errorf("Expected final score 46, got %v", result.FinalScore)
	}
	if !reflect.DeepEqual(engine.Result(), result) {
		t.Errorf("Expected published result to match returned result")
	}
}

// TestEngineAddDuplicate tests that re-adding a selected card is a no-op
func TestEngineAddDuplicate(t *testing.T) {
	engine := createTestEngine(t)
	rec := &recorder{}
	engine.Subscribe(rec.observe)

	engine.Add("c1")
	engine.Add("c1")

	if status := engine.Status(); status.Count != 1 {
		t.Errorf("Expected 1 selected card, got %d", status.Count)
	}
	if len(rec.got) != 0 {
		t.Errorf("Expected no notifications, got %v", rec.got)
	}
}

// TestEngineAddUnknown tests that unknown names are rejected without changes
func TestEngineAddUnknown(t *testing.T) {
	engine := createTestEngine(t)
	engine.Add("c1")

	_, err := engine.Add("nobody")
	if !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("Expected ErrUnknownCard, got %v", err)
	}
	if status := engine.Status(); status.Count != 1 {
		t.Errorf("Expected selection unchanged, got %d cards", status.Count)
	}
}

// TestEngineEvictsOldest tests FIFO eviction when adding past capacity
func TestEngineEvictsOldest(t *testing.T) {
	engine := createTestEngine(t)
	rec := &recorder{}
	engine.Subscribe(rec.observe)

	for _, name := range []string{"c1", "c2", "c3", "c4", "c5", "c6"} {
		if _, err := engine.Add(name); err != nil {
			t.Fatalf("Unexpected error adding %s: %v", name, err)
		}
		if n := engine.Status().Count; n > 5 {
			t.Fatalf("Expected at most 5 cards, got %d", n)
		}
	}

	want := []string{"c2", "c3", "c4", "c5", "c6"}
	if got := engine.Status().Names; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if len(rec.got) != 1 || rec.got[0] != (Deselection{Name: "c1", Reason: ReasonEvicted}) {
		t.Errorf("Expected single eviction of c1, got %v", rec.got)
	}

	// 7+2+2+2+8 = 21, still five Wei
	if result := engine.Result(); result.BaseScore != 21 || result.FinalScore != 42 {
		t.Errorf("Expected 21 x2 = 42, got %+v", result)
	}
}

// TestEngineEvictionPrecedesAppend tests that observers see the evicted card
// announced while the new card is not yet selected
func TestEngineEvictionPrecedesAppend(t *testing.T) {
	engine := createTestEngine(t)
	for _, name := range []string{"c1", "c2", "c3", "c4", "c5"} {
		engine.Add(name)
	}

	var sawNew bool
	engine.Subscribe(func(d Deselection) {
		for _, card := range engine.selection.Cards() {
			if card.Name == "c6" {
				sawNew = true
			}
		}
	})
	engine.Add("c6")

	if sawNew {
		t.Errorf("Expected eviction notice before the new card is appended")
	}
}

// TestEngineRemove tests removing a selected card
func TestEngineRemove(t *testing.T) {
	engine := createTestEngine(t)
	rec := &recorder{}
	engine.Subscribe(rec.observe)
	engine.Add("c1")
	engine.Add("c2")

	result := engine.Remove("c1").Result

	if result.BaseScore != 7 {
		t.Errorf("Expected base score 7, got %v", result.BaseScore)
	}
	if names := engine.Status().Names; !reflect.DeepEqual(names, []string{"c2"}) {
		t.Errorf("Expected [c2], got %v", names)
	}
	want := []Deselection{{Name: "c1", Reason: ReasonRemoved}}
	if !reflect.DeepEqual(rec.got, want) {
		t.Errorf("Expected %v, got %v", want, rec.got)
	}
}

// TestEngineRemoveAbsent tests that removing an unselected card resyncs the caller
func TestEngineRemoveAbsent(t *testing.T) {
	engine := createTestEngine(t)
	rec := &recorder{}
	engine.Subscribe(rec.observe)
	engine.Add("c1")

	result := engine.Remove("c3").Result

	if engine.Status().Count != 1 {
		t.Errorf("Expected selection unchanged")
	}
	if result.BaseScore != 10 {
		t.Errorf("Expected base score 10, got %v", result.BaseScore)
	}
	want := []Deselection{{Name: "c3", Reason: ReasonResync}}
	if !reflect.DeepEqual(rec.got, want) {
		t.Errorf("Expected %v, got %v", want, rec.got)
	}
}

// TestEngineRemoveAllWithName tests name-based removal
func TestEngineRemoveAllWithName(t *testing.T) {
	engine := createTestEngine(t)
	engine.Add("c1")
	engine.Add("c2")

	result := engine.RemoveAllWithName("c2").Result
	if result.BaseScore != 10 {
		t.Errorf("Expected base score 10, got %v", result.BaseScore)
	}

	before := engine.Result()
	after := engine.RemoveAllWithName("missing").Result
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Expected no change for absent name, got %+v", after)
	}
	if n := len(engine.DrainDeselections()); n != 1 {
		t.Errorf("Expected 1 queued notification, got %d", n)
	}
}

// TestEngineReset tests clearing the selection
func TestEngineReset(t *testing.T) {
	engine := createTestEngine(t)
	rec := &recorder{}
	engine.Subscribe(rec.observe)
	for _, name := range []string{"c3", "c1", "c2"} {
		engine.Add(name)
	}

	result := engine.Reset().Result

	if !reflect.DeepEqual(result, rules.ZeroResult()) {
		t.Errorf("Expected zero result, got %+v", result)
	}
	if engine.Status().Count != 0 {
		t.Errorf("Expected empty selection")
	}
	want := []Deselection{
		{Name: "c3", Reason: ReasonReset},
		{Name: "c1", Reason: ReasonReset},
		{Name: "c2", Reason: ReasonReset},
	}
	if !reflect.DeepEqual(rec.got, want) {
		t.Errorf("Expected %v, got %v", want, rec.got)
	}

	// idempotent
	engine.Reset()
	if len(rec.got) != 3 {
		t.Errorf("Expected no notifications from resetting an empty selection, got %v", rec.got)
	}
}

// TestEngineRemoveLastCard tests that emptying via remove publishes the zero result
func TestEngineRemoveLastCard(t *testing.T) {
	engine := createTestEngine(t)
	engine.Add("c1")

	result := engine.Remove("c1").Result
	if !reflect.DeepEqual(result, rules.ZeroResult()) {
		t.Errorf("Expected zero result, got %+v", result)
	}
}

// TestEngineRestore tests rebuilding a selection without notifications
func TestEngineRestore(t *testing.T) {
	engine := createTestEngine(t)
	rec := &recorder{}
	engine.Subscribe(rec.observe)

	result := engine.Restore([]string{"c1", "ghost", "c2", "c1", "c3", "c4", "c5", "c6"}).Result

	want := []string{"c2", "c3", "c4", "c5", "c6"}
	if got := engine.Status().Names; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if result.FinalScore != 42 {
		t.Errorf("Expected final score 42, got %v", result.FinalScore)
	}
	if len(rec.got) != 0 || len(engine.DrainDeselections()) != 0 {
		t.Errorf("Expected restore to be silent")
	}
}

// TestEngineNoRules tests an engine without a rule table
func TestEngineNoRules(t *testing.T) {
	engine := NewEngine("x", createTestCatalog(t), nil, Options{Capacity: 5, Logger: createTestEngine(t).logger})

	snap, _ := engine.Add("c1")
	if !reflect.DeepEqual(snap.Result, rules.NoRulesResult()) {
		t.Errorf("Expected no-rules result, got %+v", snap.Result)
	}

	if result := engine.Reset().Result; !reflect.DeepEqual(result, rules.NoRulesResult()) {
		t.Errorf("Expected no-rules result after reset, got %+v", result)
	}
}

// TestEngineStatus tests the roster summary
func TestEngineStatus(t *testing.T) {
	engine := createTestEngine(t)
	engine.Add("c1")
	engine.Add("s1")

	status := engine.Status()
	if status.String() != "selected 2/5: [c1 s1]" {
		t.Errorf("Expected 'selected 2/5: [c1 s1]', got '%s'", status.String())
	}
}

// TestEngineConcurrentAdds tests the capacity bound under concurrent callers
func TestEngineConcurrentAdds(t *testing.T) {
	engine := createTestEngine(t)
	names := []string{"c1", "c2", "c3", "c4", "c5", "c6", "s1"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine.Add(names[i%len(names)])
			_ = engine.Result()
		}(i)
	}
	wg.Wait()

	status := engine.Status()
	if status.Count > 5 {
		t.Errorf("Expected at most 5 cards, got %d", status.Count)
	}
	seen := make(map[string]bool)
	for _, name := range status.Names {
		if seen[name] {
			t.Errorf("Duplicate card %s in selection", name)
		}
		seen[name] = true
	}
}

// TestEngineSnapshotConsistent tests that a snapshot never mixes cards from
// one state with the result of another
func TestEngineSnapshotConsistent(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	catalog, err := cards.NewCatalog([]cards.Card{
		{Name: "a", Camp: cards.CampWei, Role: cards.RoleSoldier, BaseValue: 1},
		{Name: "b", Camp: cards.CampWei, Role: cards.RoleGeneral, BaseValue: 100},
	})
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	engine := NewEngine("flip", catalog, rules.NewEvaluator(createTestTable(), logger), Options{Capacity: 1, Logger: logger})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			name := "a"
			if i%2 == 1 {
				name = "b"
			}
			snap, _ := engine.Add(name)
			if !snapshotConsistent(snap) {
				t.Errorf("Inconsistent snapshot from Add: %+v", snap)
				return
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		if snap := engine.Snapshot(); !snapshotConsistent(snap) {
			t.Errorf("Inconsistent snapshot: %+v", snap)
			break
		}
	}
	<-done
}

// snapshotConsistent checks names, cards and base score describe one state
func snapshotConsistent(snap Snapshot) bool {
	if len(snap.Cards) != snap.Status.Count || len(snap.Status.Names) != snap.Status.Count {
		return false
	}
	sum := 0
	for i, card := range snap.Cards {
		if snap.Status.Names[i] != card.Name {
			return false
		}
		sum += card.BaseValue
	}
	return float64(sum) == snap.Result.BaseScore
}

// TestEngineRollback tests returning to an earlier snapshot
func TestEngineRollback(t *testing.T) {
	engine := createTestEngine(t)
	for _, name := range []string{"c1", "c2", "c3", "c4", "c5"} {
		engine.Add(name)
	}
	prev := engine.Snapshot()

	engine.Add("c6")
	if engine.Status().Names[0] != "c2" {
		t.Fatalf("Expected c1 to be evicted")
	}

	snap := engine.Rollback(prev)

	if !reflect.DeepEqual(snap.Status.Names, prev.Status.Names) {
		t.Errorf("Expected %v, got %v", prev.Status.Names, snap.Status.Names)
	}
	if !reflect.DeepEqual(snap.Result, prev.Result) {
		t.Errorf("Expected result %+v, got %+v", prev.Result, snap.Result)
	}
	if pending := engine.DrainDeselections(); len(pending) != 0 {
		t.Errorf("Expected eviction notice to be dropped, got %v", pending)
	}
}

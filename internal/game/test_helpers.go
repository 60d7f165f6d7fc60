package game

import (
	"io"
	"log"
	"testing"

	"github.com/qninhdt/generals-draft/server/internal/cards"
	"github.com/qninhdt/generals-draft/server/internal/rules"
)

// createTestCatalog creates a catalog of six Wei cards and one Shu card
func createTestCatalog(t *testing.T) *cards.Catalog {
	t.Helper()
	catalog, err := cards.NewCatalog([]cards.Card{
		{Name: "c1", Camp: cards.CampWei, Role: cards.RoleMonarch, BaseValue: 10},
		{Name: "c2", Camp: cards.CampWei, Role: cards.RoleCivilOfficer, BaseValue: 7},
		{Name: "c3", Camp: cards.CampWei, Role: cards.RoleSoldier, BaseValue: 2},
		{Name: "c4", Camp: cards.CampWei, Role: cards.RoleSoldier, BaseValue: 2},
		{Name: "c5", Camp: cards.CampWei, Role: cards.RoleSoldier, BaseValue: 2},
		{Name: "c6", Camp: cards.CampWei, Role: cards.RoleGeneral, BaseValue: 8},
		{Name: "s1", Camp: cards.CampShu, Role: cards.RoleGeneral, BaseValue: 8},
	})
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	return catalog
}

// createTestTable creates a table with a single Wei rule doubling five-card rosters
func createTestTable() *rules.Table {
	return &rules.Table{
		General: []rules.Rule{},
		Shu:     []rules.Rule{},
		Wei: []rules.Rule{{
			Name:              "wei-full",
			Condition:         rules.Condition{Camp: cards.CampWei, MinCount: 5},
			BaseMagnification: 2,
			BonusType:         rules.BonusNone,
			Description:       "Five of Wei",
		}},
		Wu:    []rules.Rule{},
		Mixed: []rules.Rule{},
	}
}

// createTestEngine creates an engine with capacity 5 and a silent logger
func createTestEngine(t *testing.T) *Engine {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	evaluator := rules.NewEvaluator(createTestTable(), logger)
	return NewEngine("test-session", createTestCatalog(t), evaluator, Options{Capacity: 5, Logger: logger})
}

// recorder collects deselections delivered to an observer
type recorder struct {
	got []Deselection
}

func (r *recorder) observe(d Deselection) {
	r.got = append(r.got, d)
}

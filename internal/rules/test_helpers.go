package rules

import (
	"io"
	"log"

	"github.com/qninhdt/generals-draft/server/internal/cards"
)

// testCards returns the worked-example roster used across rule tests
func testCards() map[string]cards.Card {
	list := []cards.Card{
		{Name: "Mon", Camp: cards.CampWei, Role: cards.RoleMonarch, BaseValue: 10},
		{Name: "Off", Camp: cards.CampWei, Role: cards.RoleCivilOfficer, BaseValue: 7},
		{Name: "Sol1", Camp: cards.CampWei, Role: cards.RoleSoldier, BaseValue: 2},
		{Name: "Sol2", Camp: cards.CampWei, Role: cards.RoleSoldier, BaseValue: 2},
		{Name: "Sol3", Camp: cards.CampWei, Role: cards.RoleSoldier, BaseValue: 2},
		{Name: "Liu", Camp: cards.CampShu, Role: cards.RoleMonarch, BaseValue: 10},
		{Name: "Guan", Camp: cards.CampShu, Role: cards.RoleGeneral, BaseValue: 8},
		{Name: "Zhuge", Camp: cards.CampShu, Role: cards.RoleCivilOfficer, BaseValue: 7},
		{Name: "Sun", Camp: cards.CampWu, Role: cards.RoleMonarch, BaseValue: 10},
		{Name: "Zhou", Camp: cards.CampWu, Role: cards.RoleGeneral, BaseValue: 8},
		{Name: "Lu", Camp: cards.CampWu, Role: cards.RoleCivilOfficer, BaseValue: 9},
	}
	byName := make(map[string]cards.Card, len(list))
	for _, card := range list {
		byName[card.Name] = card
	}
	return byName
}

// pick builds a selection from test card names in order
func pick(names ...string) []cards.Card {
	all := testCards()
	sel := make([]cards.Card, 0, len(names))
	for _, name := range names {
		sel = append(sel, all[name])
	}
	return sel
}

// emptyTable returns a table with every category present but empty
func emptyTable() *Table {
	return &Table{
		General: []Rule{},
		Shu:     []Rule{},
		Wei:     []Rule{},
		Wu:      []Rule{},
		Mixed:   []Rule{},
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

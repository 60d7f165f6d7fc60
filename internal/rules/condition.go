package rules

import (
	"sort"

	"github.com/qninhdt/generals-draft/server/internal/cards"
)

// Matches reports whether every clause holds for sel. Clauses run cheapest
// first and stop at the first failure. A clause naming an unknown camp or
// role never matches.
func (c *Condition) Matches(sel []cards.Card) bool {
	if !c.tokensValid() {
		return false
	}

	n := len(sel)
	if c.MinCount > 0 && n < c.MinCount {
		return false
	}
	if c.MaxCount > 0 && n > c.MaxCount {
		return false
	}

	if len(c.ExcludedRoles) > 0 {
		for _, card := range sel {
			if containsRole(c.ExcludedRoles, card.Role) {
				return false
			}
		}
	}

	if len(c.RequiredRoles) > 0 {
		for _, card := range sel {
			if !containsRole(c.RequiredRoles, card.Role) {
				return false
			}
		}
	}

	if c.SameRoleRequired && !sameRole(sel) {
		return false
	}

	if c.Camp != "" {
		for _, card := range sel {
			if card.Camp != c.Camp {
				return false
			}
		}
	}

	if c.ContinuousScoreRequired && !continuousScores(sel) {
		return false
	}

	for _, rc := range c.RoleCounts {
		if countWhere(sel, func(card cards.Card) bool { return card.Role == rc.Role }) != rc.Count {
			return false
		}
	}

	for _, crc := range c.CampRoleCounts {
		if countWhere(sel, func(card cards.Card) bool {
			return card.Camp == crc.Camp && card.Role == crc.Role
		}) != crc.Count {
			return false
		}
	}

	if len(c.RequiredCardNames) > 0 && !containsAllNames(sel, c.RequiredCardNames) {
		return false
	}

	return c.expressionHolds(sel)
}

// tokensValid checks every camp and role token the condition references
func (c *Condition) tokensValid() bool {
	if c.Camp != "" && !c.Camp.Valid() {
		return false
	}
	for _, role := range c.RequiredRoles {
		if !role.Valid() {
			return false
		}
	}
	for _, role := range c.ExcludedRoles {
		if !role.Valid() {
			return false
		}
	}
	for _, rc := range c.RoleCounts {
		if !rc.Role.Valid() {
			return false
		}
	}
	for _, crc := range c.CampRoleCounts {
		if !crc.Camp.Valid() || !crc.Role.Valid() {
			return false
		}
	}
	return true
}

func containsRole(roles []cards.Role, role cards.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func sameRole(sel []cards.Card) bool {
	for i := 1; i < len(sel); i++ {
		if sel[i].Role != sel[0].Role {
			return false
		}
	}
	return true
}

// continuousScores reports whether sorted base values step by exactly 1
func continuousScores(sel []cards.Card) bool {
	values := make([]int, len(sel))
	for i, card := range sel {
		values[i] = card.BaseValue
	}
	sort.Ints(values)

	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] != 1 {
			return false
		}
	}
	return true
}

func countWhere(sel []cards.Card, pred func(cards.Card) bool) int {
	n := 0
	for _, card := range sel {
		if pred(card) {
			n++
		}
	}
	return n
}

func containsAllNames(sel []cards.Card, names []string) bool {
	present := make(map[string]bool, len(sel))
	for _, card := range sel {
		present[card.Name] = true
	}
	for _, name := range names {
		if !present[name] {
			return false
		}
	}
	return true
}

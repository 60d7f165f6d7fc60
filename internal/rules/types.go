package rules

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/vm"
	"github.com/qninhdt/generals-draft/server/internal/cards"
)

// BonusType selects the side effect a matched rule applies beyond setting the multiplier
type BonusType string

const (
	BonusNone             BonusType = "None"
	BonusScaleBaseScore   BonusType = "BaseScore_Multiply"
	BonusAddMagnification BonusType = "Magnification_Add"
	BonusAddPerCard       BonusType = "BaseScore_Add_PerCard"
)

// Valid reports whether b is a known bonus type. Empty counts as None.
func (b BonusType) Valid() bool {
	switch b {
	case "", BonusNone, BonusScaleBaseScore, BonusAddMagnification, BonusAddPerCard:
		return true
	}
	return false
}

// RoleCount requires exactly Count selected cards of Role
type RoleCount struct {
	Role  cards.Role `json:"roleType" yaml:"roleType"`
	Count int        `json:"count" yaml:"count"`
}

// CampRoleCount requires exactly Count selected cards of Role within Camp
type CampRoleCount struct {
	Camp  cards.Camp `json:"camp" yaml:"camp"`
	Role  cards.Role `json:"roleType" yaml:"roleType"`
	Count int        `json:"count" yaml:"count"`
}

// Condition is the predicate half of a rule. Zero-valued clauses are unconstrained.
type Condition struct {
	MinCount                int             `json:"minCount,omitempty" yaml:"minCount"`
	MaxCount                int             `json:"maxCount,omitempty" yaml:"maxCount"`
	RequiredRoles           []cards.Role    `json:"roleTypes,omitempty" yaml:"roleTypes"`
	ExcludedRoles           []cards.Role    `json:"excludeRoles,omitempty" yaml:"excludeRoles"`
	SameRoleRequired        bool            `json:"sameRoleRequired,omitempty" yaml:"sameRoleRequired"`
	Camp                    cards.Camp      `json:"camp,omitempty" yaml:"camp"`
	ContinuousScoreRequired bool            `json:"continuousScoreRequired,omitempty" yaml:"continuousScoreRequired"`
	RoleCounts              []RoleCount     `json:"roleConfigs,omitempty" yaml:"roleConfigs"`
	CampRoleCounts          []CampRoleCount `json:"campConfigs,omitempty" yaml:"campConfigs"`
	RequiredCardNames       []string        `json:"specificGenerals,omitempty" yaml:"specificGenerals"`
	Expression              string          `json:"expression,omitempty" yaml:"expression"`

	program *vm.Program
}

// Rule pairs a condition with the multiplier and bonus it assigns when matched.
// Name, Description and Example are documentation only.
type Rule struct {
	Name              string    `json:"ruleName" yaml:"ruleName"`
	Condition         Condition `json:"condition" yaml:"condition"`
	BaseMagnification float64   `json:"baseMagnification" yaml:"baseMagnification"`
	BonusType         BonusType `json:"bonusType,omitempty" yaml:"bonusType"`
	BonusValue        float64   `json:"bonusValue,omitempty" yaml:"bonusValue"`
	Description       string    `json:"description" yaml:"description"`
	Example           string    `json:"example,omitempty" yaml:"example"`
}

// Category names one of the five rule lists
type Category string

const (
	CategoryGeneral Category = "base"
	CategoryShu     Category = "shu"
	CategoryWei     Category = "wei"
	CategoryWu      Category = "wu"
	CategoryMixed   Category = "mix"
)

// Table is the layered rule configuration. A nil list means the category
// was absent from the source and is skipped during evaluation.
type Table struct {
	General []Rule `json:"baseRules" yaml:"baseRules"`
	Shu     []Rule `json:"shuRules" yaml:"shuRules"`
	Wei     []Rule `json:"weiRules" yaml:"weiRules"`
	Wu      []Rule `json:"wuRules" yaml:"wuRules"`
	Mixed   []Rule `json:"mixRules" yaml:"mixRules"`
}

// CategoryRules is one scan step: the list plus the camp gating it (empty = ungated)
type CategoryRules struct {
	Category Category
	Camp     cards.Camp
	Rules    []Rule
}

// Categories returns the five lists in evaluation order
func (t *Table) Categories() []CategoryRules {
	return []CategoryRules{
		{Category: CategoryGeneral, Rules: t.General},
		{Category: CategoryShu, Camp: cards.CampShu, Rules: t.Shu},
		{Category: CategoryWei, Camp: cards.CampWei, Rules: t.Wei},
		{Category: CategoryWu, Camp: cards.CampWu, Rules: t.Wu},
		{Category: CategoryMixed, Rules: t.Mixed},
	}
}

// Size returns the total number of rules across all categories
func (t *Table) Size() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, cat := range t.Categories() {
		n += len(cat.Rules)
	}
	return n
}

// Compile pre-compiles every expression clause. It must run before the
// table is shared; afterwards the table is read-only. Rules whose
// expression fails to compile stay in place and never match.
func (t *Table) Compile() error {
	var errs []error
	for _, cat := range t.Categories() {
		for i := range cat.Rules {
			if err := cat.Rules[i].Condition.compile(); err != nil {
				errs = append(errs, fmt.Errorf("%s rule %q: %w", cat.Category, cat.Rules[i].Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

package loader

import (
	"fmt"
	"strings"

	"github.com/qninhdt/generals-draft/server/internal/cards"
	"github.com/qninhdt/generals-draft/server/internal/rules"
)

var categoryKeys = map[rules.Category]string{
	rules.CategoryGeneral: "baseRules",
	rules.CategoryShu:     "shuRules",
	rules.CategoryWei:     "weiRules",
	rules.CategoryWu:      "wuRules",
	rules.CategoryMixed:   "mixRules",
}

// ValidateTable checks semantic constraints of a rule table and compiles its
// expression clauses, so it must run before the table is shared. Problems
// are reported together; none of them stop the table from being used.
func ValidateTable(t *rules.Table) error {
	if t == nil {
		return ErrEmptyTable
	}

	var errs []string

	for _, cat := range t.Categories() {
		key := categoryKeys[cat.Category]
		if cat.Rules == nil {
			errs = append(errs, fmt.Sprintf("%s missing; category disabled", key))
			continue
		}
		for i, rule := range cat.Rules {
			prefix := fmt.Sprintf("%s[%d] (%s)", key, i, rule.Name)
			for _, msg := range validateRule(rule) {
				errs = append(errs, prefix+": "+msg)
			}
		}
	}

	if err := t.Compile(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("rule table validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRule(rule rules.Rule) []string {
	var errs []string
	c := rule.Condition

	if rule.Name == "" {
		errs = append(errs, "ruleName is required")
	}
	if rule.BaseMagnification <= 0 {
		errs = append(errs, "baseMagnification must be > 0")
	}
	if !rule.BonusType.Valid() {
		errs = append(errs, fmt.Sprintf("bonusType %q is not one of None, BaseScore_Multiply, Magnification_Add, BaseScore_Add_PerCard", rule.BonusType))
	}

	if c.MinCount < 0 || c.MaxCount < 0 {
		errs = append(errs, "minCount/maxCount must be >= 0")
	}
	if c.MaxCount > 0 && c.MinCount > c.MaxCount {
		errs = append(errs, "minCount must not exceed maxCount")
	}
	if c.Camp != "" && !c.Camp.Valid() {
		errs = append(errs, fmt.Sprintf("unknown camp %q; rule never matches", c.Camp))
	}
	for _, role := range append(append([]cards.Role(nil), c.RequiredRoles...), c.ExcludedRoles...) {
		if !role.Valid() {
			errs = append(errs, fmt.Sprintf("unknown role %q; rule never matches", role))
		}
	}
	for _, rc := range c.RoleCounts {
		if !rc.Role.Valid() {
			errs = append(errs, fmt.Sprintf("unknown role %q in roleConfigs; rule never matches", rc.Role))
		}
		if rc.Count < 0 {
			errs = append(errs, "roleConfigs count must be >= 0")
		}
	}
	for _, crc := range c.CampRoleCounts {
		if !crc.Camp.Valid() || !crc.Role.Valid() {
			errs = append(errs, fmt.Sprintf("unknown camp/role %q/%q in campConfigs; rule never matches", crc.Camp, crc.Role))
		}
		if crc.Count < 0 {
			errs = append(errs, "campConfigs count must be >= 0")
		}
	}

	return errs
}

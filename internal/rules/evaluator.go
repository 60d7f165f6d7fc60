package rules

import (
	"log"

	"github.com/qninhdt/generals-draft/server/internal/cards"
)

// tally is the running accumulator folded through every scan
type tally struct {
	base        float64
	mult        float64
	description string
	matched     []string
}

// apply folds one matched rule into the tally. The multiplier is replaced,
// never combined, then the bonus effect runs against the replaced value.
func (t tally) apply(rule Rule, size int, logger *log.Logger) tally {
	t.mult = rule.BaseMagnification

	switch rule.BonusType {
	case "", BonusNone:
	case BonusScaleBaseScore:
		t.base *= rule.BonusValue
	case BonusAddMagnification:
		t.mult += rule.BonusValue
	case BonusAddPerCard:
		t.base += float64(size) * rule.BonusValue
	default:
		logger.Printf("rules: rule %q has unknown bonus type %q; treating as None", rule.Name, rule.BonusType)
	}

	t.description = rule.Description
	t.matched = append(t.matched, rule.Name)
	return t
}

func (t tally) result() Result {
	return Result{
		BaseScore:          t.base,
		Multiplier:         t.mult,
		FinalScore:         t.base * t.mult,
		MatchedDescription: t.description,
		MatchedRules:       t.matched,
	}
}

// Evaluator scores selections against a rule table. It never mutates the
// table or the selection, so one instance may be shared across goroutines.
type Evaluator struct {
	table  *Table
	logger *log.Logger
}

// NewEvaluator wraps a loaded table. A nil table yields NoRulesResult for
// every selection; absent categories are reported once and skipped.
func NewEvaluator(table *Table, logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.Default()
	}

	if table == nil {
		logger.Printf("rules: no rule table loaded; scoring disabled")
	} else {
		for _, cat := range table.Categories() {
			if cat.Rules == nil {
				logger.Printf("rules: category %s missing from rule table; skipped", cat.Category)
			}
		}
	}

	return &Evaluator{table: table, logger: logger}
}

// Table returns the rule table the evaluator was built with
func (e *Evaluator) Table() *Table {
	return e.table
}

// Evaluate computes a fresh Result for sel.
//
// Categories are scanned general → shu → wei → wu → mixed. A faction
// category is entered only when sel holds at least one card of that camp.
// Within a scan every matching rule overwrites the multiplier and the
// description ("last match wins") while base-score bonuses accumulate.
//
// An empty selection is never scanned: it always yields ZeroResult, even
// when an unconstrained rule would match it. Its final score is 0 either way.
func (e *Evaluator) Evaluate(sel []cards.Card) Result {
	if e.table.Size() == 0 {
		return NoRulesResult()
	}
	if len(sel) == 0 {
		return ZeroResult()
	}

	acc := tally{mult: 1, description: NoMatchDescription}
	for _, card := range sel {
		acc.base += float64(card.BaseValue)
	}

	for _, cat := range e.table.Categories() {
		if cat.Rules == nil {
			continue
		}
		if cat.Camp != "" && !hasCamp(sel, cat.Camp) {
			continue
		}
		acc = e.scan(acc, cat.Rules, sel)
	}

	return acc.result()
}

func (e *Evaluator) scan(acc tally, list []Rule, sel []cards.Card) tally {
	for i := range list {
		if list[i].Condition.Matches(sel) {
			acc = acc.apply(list[i], len(sel), e.logger)
		}
	}
	return acc
}

func hasCamp(sel []cards.Card, camp cards.Camp) bool {
	for _, card := range sel {
		if card.Camp == camp {
			return true
		}
	}
	return false
}

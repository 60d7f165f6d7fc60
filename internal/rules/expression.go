package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/qninhdt/generals-draft/server/internal/cards"
)

// selectionEnv builds the variables an expression clause can reference
func selectionEnv(sel []cards.Card) map[string]interface{} {
	names := make([]string, len(sel))
	camps := make([]string, len(sel))
	roles := make([]string, len(sel))
	scores := make([]int, len(sel))
	campCount := make(map[string]int)
	roleCount := make(map[string]int)
	total := 0

	for i, card := range sel {
		names[i] = card.Name
		camps[i] = string(card.Camp)
		roles[i] = string(card.Role)
		scores[i] = card.BaseValue
		campCount[string(card.Camp)]++
		roleCount[string(card.Role)]++
		total += card.BaseValue
	}

	return map[string]interface{}{
		"count":     len(sel),
		"total":     total,
		"names":     names,
		"camps":     camps,
		"roles":     roles,
		"scores":    scores,
		"campCount": campCount,
		"roleCount": roleCount,
	}
}

func compileExpression(source string) (*vm.Program, error) {
	return expr.Compile(source, expr.Env(selectionEnv(nil)), expr.AsBool())
}

func (c *Condition) compile() error {
	if c.Expression == "" {
		return nil
	}
	program, err := compileExpression(c.Expression)
	if err != nil {
		return fmt.Errorf("invalid expression %q: %w", c.Expression, err)
	}
	c.program = program
	return nil
}

// expressionHolds runs the expression clause. Compile or runtime failures fail closed.
func (c *Condition) expressionHolds(sel []cards.Card) bool {
	if c.Expression == "" {
		return true
	}

	program := c.program
	if program == nil {
		compiled, err := compileExpression(c.Expression)
		if err != nil {
			return false
		}
		program = compiled
	}

	result, err := vm.Run(program, selectionEnv(sel))
	if err != nil {
		return false
	}
	ok, isBool := result.(bool)
	return isBool && ok
}

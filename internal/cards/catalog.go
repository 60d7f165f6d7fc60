package cards

import (
	"errors"
	"fmt"
)

var (
	ErrCardNotFound  = errors.New("card not found")
	ErrDuplicateCard = errors.New("duplicate card name")
	ErrInvalidCard   = errors.New("invalid card")
)

// Catalog is a read-only name → Card lookup, safe for concurrent use once built
type Catalog struct {
	byName map[string]Card
	order  []Card
}

// NewCatalog builds a catalog, rejecting empty names, unknown camps/roles,
// negative base values and duplicate names
func NewCatalog(list []Card) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]Card, len(list)),
		order:  make([]Card, 0, len(list)),
	}

	for i, card := range list {
		switch {
		case card.Name == "":
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidCard, i)
		case !card.Camp.Valid():
			return nil, fmt.Errorf("%w: %s has unknown camp %q", ErrInvalidCard, card.Name, card.Camp)
		case !card.Role.Valid():
			return nil, fmt.Errorf("%w: %s has unknown role %q", ErrInvalidCard, card.Name, card.Role)
		case card.BaseValue < 0:
			return nil, fmt.Errorf("%w: %s has negative base value", ErrInvalidCard, card.Name)
		}
		if _, exists := c.byName[card.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, card.Name)
		}
		c.byName[card.Name] = card
		c.order = append(c.order, card)
	}

	return c, nil
}

// Lookup finds a card by exact name. Empty or unknown names report false.
func (c *Catalog) Lookup(name string) (Card, bool) {
	if c == nil || name == "" {
		return Card{}, false
	}
	card, ok := c.byName[name]
	return card, ok
}

// Size returns the number of cards in the catalog
func (c *Catalog) Size() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// All returns every card in load order
func (c *Catalog) All() []Card {
	if c == nil {
		return nil
	}
	result := make([]Card, len(c.order))
	copy(result, c.order)
	return result
}

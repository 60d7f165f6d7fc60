package cards

// DefaultCapacity is the roster size used when none is configured
const DefaultCapacity = 5

// Selection is an ordered, capacity-bounded roster of distinct cards, oldest first.
// It is not safe for concurrent use; the owning engine serializes access.
type Selection struct {
	cards    []Card
	capacity int
}

// NewSelection creates an empty selection. Non-positive capacity falls back to DefaultCapacity.
func NewSelection(capacity int) *Selection {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Selection{
		cards:    make([]Card, 0, capacity),
		capacity: capacity,
	}
}

// Capacity returns the maximum number of cards
func (s *Selection) Capacity() int {
	return s.capacity
}

// Len returns the number of selected cards
func (s *Selection) Len() int {
	return len(s.cards)
}

// Full reports whether the next append would exceed capacity
func (s *Selection) Full() bool {
	return len(s.cards) >= s.capacity
}

// Contains reports whether a card with this name is selected
func (s *Selection) Contains(name string) bool {
	return s.indexOf(name) >= 0
}

func (s *Selection) indexOf(name string) int {
	for i, card := range s.cards {
		if card.Name == name {
			return i
		}
	}
	return -1
}

// Append adds card at the newest position. It refuses duplicates and
// refuses to grow past capacity; callers evict first.
func (s *Selection) Append(card Card) bool {
	if s.Contains(card.Name) || s.Full() {
		return false
	}
	s.cards = append(s.cards, card)
	return true
}

// EvictOldest removes and returns the card at index 0
func (s *Selection) EvictOldest() (Card, bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	oldest := s.cards[0]
	s.cards = append(s.cards[:0], s.cards[1:]...)
	return oldest, true
}

// Remove deletes the first entry named name
func (s *Selection) Remove(name string) (Card, bool) {
	i := s.indexOf(name)
	if i < 0 {
		return Card{}, false
	}
	removed := s.cards[i]
	s.cards = append(s.cards[:i], s.cards[i+1:]...)
	return removed, true
}

// RemoveAll deletes every entry named name and returns them in selection order
func (s *Selection) RemoveAll(name string) []Card {
	var removed []Card
	kept := s.cards[:0]
	for _, card := range s.cards {
		if card.Name == name {
			removed = append(removed, card)
			continue
		}
		kept = append(kept, card)
	}
	s.cards = kept
	return removed
}

// Clear empties the selection and returns the former members in insertion order
func (s *Selection) Clear() []Card {
	removed := s.cards
	s.cards = make([]Card, 0, s.capacity)
	return removed
}

// Cards returns a copy of the selection, oldest first
func (s *Selection) Cards() []Card {
	result := make([]Card, len(s.cards))
	copy(result, s.cards)
	return result
}

// Names returns the selected card names, oldest first
func (s *Selection) Names() []string {
	names := make([]string, len(s.cards))
	for i, card := range s.cards {
		names[i] = card.Name
	}
	return names
}

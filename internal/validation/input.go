package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateSessionID validates session ID format
func ValidateSessionID(id string) error {
	if len(id) == 0 || len(id) > 64 {
		return fmt.Errorf("session ID must be 1-64 characters")
	}

	// Session IDs are always server-issued UUIDs
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("session ID must be a UUID")
	}

	return nil
}

// ValidateCardName validates a card name as supplied by a client
func ValidateCardName(name string) error {
	if !utf8.ValidString(name) {
		return fmt.Errorf("card name must be valid UTF-8")
	}

	n := utf8.RuneCountInString(name)
	if n == 0 || n > 32 {
		return fmt.Errorf("card name must be 1-32 characters")
	}

	if strings.TrimSpace(name) != name {
		return fmt.Errorf("card name cannot have leading or trailing whitespace")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("card name cannot contain control characters")
		}
	}

	return nil
}

// ValidateHistoryLimit validates the history page size
func ValidateHistoryLimit(limit int) error {
	if limit < 0 || limit > 500 {
		return fmt.Errorf("limit must be between 0 and 500")
	}
	return nil
}

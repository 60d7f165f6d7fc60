package validation

import (
	"testing"

	"github.com/google/uuid"
)

// TestValidateSessionID tests session ID validation
func TestValidateSessionID(t *testing.T) {
	if err := ValidateSessionID(uuid.New().String()); err != nil {
		t.Errorf("Expected UUID to be valid, got %v", err)
	}

	for _, id := range []string{"", "abc", "../etc/passwd", string(make([]byte, 65))} {
		if err := ValidateSessionID(id); err == nil {
			t.Errorf("Expected %q to be rejected", id)
		}
	}
}

// TestValidateCardName tests card name validation
func TestValidateCardName(t *testing.T) {
	for _, name := range []string{"曹操", "Sol1", "夏侯惇"} {
		if err := ValidateCardName(name); err != nil {
			t.Errorf("Expected %q to be valid, got %v", name, err)
		}
	}

	for _, name := range []string{"", " 曹操", "a\nb", "\xff", "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二三"} {
		if err := ValidateCardName(name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

// TestValidateHistoryLimit tests limit bounds
func TestValidateHistoryLimit(t *testing.T) {
	if err := ValidateHistoryLimit(0); err != nil {
		t.Errorf("Expected 0 to be valid, got %v", err)
	}
	if err := ValidateHistoryLimit(-1); err == nil {
		t.Errorf("Expected -1 to be rejected")
	}
	if err := ValidateHistoryLimit(501); err == nil {
		t.Errorf("Expected 501 to be rejected")
	}
}

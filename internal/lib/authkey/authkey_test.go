package authkey

import (
	"strings"
	"testing"
)

func TestNew_Length(t *testing.T) {
	key, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if len(key) != Length {
		t.Errorf("New() returned key of length %d, want %d", len(key), Length)
	}
}

func TestNew_Alphabet(t *testing.T) {
	key, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	for _, r := range key {
		if !strings.ContainsRune(alphabet, r) {
			t.Errorf("key %q contains unexpected symbol %q", key, r)
		}
	}
}

func TestNew_KeysDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		key, err := New()
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		if seen[key] {
			t.Fatalf("New() produced duplicate key %q", key)
		}
		seen[key] = true
	}
}

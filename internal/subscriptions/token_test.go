package subscriptions

import (
	"strings"
	"testing"
)

func TestGenerateTokenShape(t *testing.T) {
	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(token) != tokenLength {
		t.Fatalf("token length = %d, want %d", len(token), tokenLength)
	}
	for _, r := range token {
		if !strings.ContainsRune(tokenAlphabet, r) {
			t.Fatalf("token %q contains %q outside the alphabet", token, r)
		}
	}
}

func TestGenerateTokenDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q after %d draws", token, i)
		}
		seen[token] = true
	}
}

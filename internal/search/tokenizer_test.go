package search_test

import (
	"testing"

	"github.com/pawfect-mate/backend/internal/search"
)

func TestTokenize(t *testing.T) {
	text := "Hello, World! This is a test."
	tokens := search.Tokenize(text)

	expected := []string{"hello", "world", "this", "is", "a", "test"}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}

	for i, token := range tokens {
		if token != expected[i] {
			t.Errorf("At index %d: expected %s, got %s", i, expected[i], token)
		}
	}
}

func TestTokenizePunctuationSeparates(t *testing.T) {
	tokens := search.Tokenize("active labrador-like (10-15 yrs)")
	expected := []string{"active", "labrador", "like", "10", "15", "yrs"}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("At index %d: expected %s, got %s", i, expected[i], tokens[i])
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n", "?!.,"} {
		if tokens := search.Tokenize(in); len(tokens) != 0 {
			t.Errorf("Tokenize(%q) = %v, expected no tokens", in, tokens)
		}
	}
}

func TestTokenizeUnicode(t *testing.T) {
	tokens := search.Tokenize("Épagneul Breton")
	if len(tokens) != 2 || tokens[0] != "épagneul" || tokens[1] != "breton" {
		t.Errorf("Unexpected tokens %v", tokens)
	}
}

func TestTermFrequency(t *testing.T) {
	tf := search.TermFrequency([]string{"dog", "cat", "dog"})
	if tf["dog"] != 2 || tf["cat"] != 1 || len(tf) != 2 {
		t.Errorf("Unexpected frequencies %v", tf)
	}
}

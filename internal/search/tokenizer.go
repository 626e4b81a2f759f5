package search

import (
	"strings"
	"unicode"
)

// Tokenize splits text into normalized terms.
// Text is lower-cased and every rune that is not a letter or a digit acts as a
// separator, so punctuation never ends up inside a term.
func Tokenize(text string) []string {
	f := func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c)
	}
	fields := strings.FieldsFunc(strings.ToLower(text), f)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// TermFrequency counts how often each term occurs.
func TermFrequency(terms []string) map[string]int {
	tf := make(map[string]int, len(terms))
	for _, term := range terms {
		tf[term]++
	}
	return tf
}

// Package tokenizer normalises transcript text into searchable terms. It
// lower-cases input, splits on non-alphanumeric boundaries, and drops tokens
// below the minimum length unless they are pure numerics.
//
// Tokenize is a pure function: the same text always produces the same token
// stream, which is what makes re-ingestion idempotent. The same function is
// used on the query path so that query terms match indexed terms exactly.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minTokenLen = 2

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into a slice of lowercased Tokens. Punctuation and
// whitespace act as separators and never appear in terms.
func Tokenize(text string) []Token {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if !searchable(word) {
			continue
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// searchable reports whether a normalised word survives indexing. Short
// tokens are dropped except pure numbers, which stay searchable ("42", "7").
func searchable(word string) bool {
	if utf8.RuneCountInString(word) >= minTokenLen {
		return true
	}
	return isNumeric(word)
}

func isNumeric(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

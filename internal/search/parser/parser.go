// Package parser turns raw query strings into executable query plans using
// the same normalisation as the indexing path.
package parser

import (
	"github.com/ppenja/youtube-transcript-archive/internal/index/tokenizer"
)

// Plan is a normalised, deduplicated search query. A segment matches when it
// contains any of the terms; per-term scores accumulate.
type Plan struct {
	Terms     []string
	ChannelID string
}

// Parse normalises the query text through the index tokenizer and drops
// duplicate terms, preserving first-seen order. An empty plan (no surviving
// terms) is valid and matches nothing.
func Parse(query, channelID string) Plan {
	tokens := tokenizer.Tokenize(query)
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok.Term]; dup {
			continue
		}
		seen[tok.Term] = struct{}{}
		terms = append(terms, tok.Term)
	}
	return Plan{Terms: terms, ChannelID: channelID}
}

// Empty reports whether the plan has no searchable terms.
func (p Plan) Empty() bool {
	return len(p.Terms) == 0
}

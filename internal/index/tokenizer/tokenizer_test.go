package tokenizer

import (
	"reflect"
	"testing"
)

func terms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Term
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits on whitespace",
			input: "Hello World",
			want:  []string{"hello", "world"},
		},
		{
			name:  "punctuation is a separator",
			input: "it's a test-case, really!",
			want:  []string{"it", "test", "case", "really"},
		},
		{
			name:  "short tokens dropped",
			input: "a b cd",
			want:  []string{"cd"},
		},
		{
			name:  "single digit numerics survive",
			input: "chapter 7 begins",
			want:  []string{"chapter", "7", "begins"},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
		{
			name:  "only separators",
			input: "... --- !!!",
			want:  []string{},
		},
		{
			name:  "mixed alphanumerics kept whole",
			input: "covid19 h2o",
			want:  []string{"covid19", "h2o"},
		},
		{
			name:  "unicode letters",
			input: "Überraschung déjà vu",
			want:  []string{"überraschung", "déjà", "vu"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := terms(Tokenize(tc.input))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens := Tokenize("one, a two. three")
	wantTerms := []string{"one", "two", "three"}
	for i, tok := range tokens {
		if tok.Term != wantTerms[i] {
			t.Fatalf("token %d = %q, want %q", i, tok.Term, wantTerms[i])
		}
		if tok.Position != i {
			t.Errorf("token %q position = %d, want %d", tok.Term, tok.Position, i)
		}
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	input := "The SAME text, tokenized twice; gives the same 42 terms."
	first := Tokenize(input)
	second := Tokenize(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("tokenization is not deterministic: %v vs %v", first, second)
	}
}

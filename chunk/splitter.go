package chunk

import (
	"regexp"
	"strings"
)

// SentenceSplitter breaks page text into sentence-like units. Implementations
// must never return an empty sequence for non-empty input, and every returned
// piece must be trimmed and non-empty.
type SentenceSplitter interface {
	Split(text string) []string
}

// HeuristicSplitter detects sentence boundaries with a pattern heuristic:
// a sentence-terminal punctuation mark (. ! ?) followed by whitespace,
// followed by an uppercase letter or digit. It is not grammar-aware; common
// abbreviations ("Dr. Smith") split like real boundaries. Good enough for
// prose extracted from research PDFs, and cheap.
type HeuristicSplitter struct{}

var _ SentenceSplitter = HeuristicSplitter{}

// boundaryRe matches the punctuation, the whitespace run, and the first
// character of the next sentence. RE2 has no lookahead, so the split keeps
// the punctuation with the left piece and hands the matched uppercase/digit
// byte back to the right piece.
var boundaryRe = regexp.MustCompile(`[.!?]\s+[A-Z0-9]`)

// Split returns the trimmed sentences of text in order. If the heuristic
// finds no qualifying boundary (or every piece trims to nothing), the whole
// trimmed text comes back as a single sentence.
func (HeuristicSplitter) Split(text string) []string {
	var sentences []string
	start := 0
	for _, m := range boundaryRe.FindAllStringIndex(text, -1) {
		// m[1]-1 is the first byte of the next sentence: the character
		// class is ASCII, so a one-byte step back is safe.
		piece := strings.TrimSpace(text[start : m[0]+1])
		if piece != "" {
			sentences = append(sentences, piece)
		}
		start = m[1] - 1
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}

	if len(sentences) == 0 {
		if whole := strings.TrimSpace(text); whole != "" {
			return []string{whole}
		}
		return nil
	}
	return sentences
}

// WholeTextSplitter disables sentence splitting: the input comes back as a
// single piece, whitespace untouched.
type WholeTextSplitter struct{}

var _ SentenceSplitter = WholeTextSplitter{}

func (WholeTextSplitter) Split(text string) []string {
	return []string{text}
}

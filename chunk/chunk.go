// Package chunk converts raw page text into retrieval-sized passages with
// bounded size, sentence-aware boundaries, and controlled overlap.
//
// The engine is pure and deterministic: it holds no shared state, performs
// no I/O, and is safe to call concurrently on different pages. Lengths are
// counted in characters (runes), and slicing always lands on rune
// boundaries, so multi-byte text never splits mid-rune.
package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Config is the immutable parameter set for one chunking run.
type Config struct {
	// MaxChars is the hard ceiling on chunk length in characters.
	MaxChars int
	// MinChars is the minimum length an acceptable trailing chunk should
	// have; shorter tails are merged into their predecessor when possible.
	MinChars int
	// OverlapChars is the number of trailing characters of a finalized
	// chunk carried into the next one. Zero disables overlap.
	OverlapChars int
	// SentenceSplit enables the sentence-boundary heuristic. When false
	// the whole page text is packed as a single unit.
	SentenceSplit bool
}

// DefaultConfig returns the tuning used by the reference pipeline.
func DefaultConfig() Config {
	return Config{MaxChars: 1200, MinChars: 200, OverlapChars: 150, SentenceSplit: true}
}

// Validate checks the config invariants. Violations are a caller-side
// configuration error: validate once at startup, not per page.
func (c Config) Validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("chunk: max chars must be positive, got %d", c.MaxChars)
	}
	if c.MinChars >= c.MaxChars {
		return fmt.Errorf("chunk: min chars %d must be below max chars %d", c.MinChars, c.MaxChars)
	}
	if c.OverlapChars < 0 || c.OverlapChars >= c.MaxChars {
		return fmt.Errorf("chunk: overlap chars %d must be in [0, %d)", c.OverlapChars, c.MaxChars)
	}
	return nil
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSplitter substitutes the sentence splitter. The default is
// HeuristicSplitter (or WholeTextSplitter when Config.SentenceSplit is
// false); a locale-aware splitter can be injected without touching the
// packing logic.
func WithSplitter(s SentenceSplitter) Option {
	return func(c *Chunker) { c.splitter = s }
}

// Chunker packs sentences into size-bounded, overlapping chunks.
type Chunker struct {
	cfg      Config
	splitter SentenceSplitter
}

// New creates a Chunker, validating cfg once up front.
func New(cfg Config, opts ...Option) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Chunker{cfg: cfg}
	if cfg.SentenceSplit {
		c.splitter = HeuristicSplitter{}
	} else {
		c.splitter = WholeTextSplitter{}
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Config returns the chunker's configuration.
func (c *Chunker) Config() Config { return c.cfg }

// Chunk converts one page of text into an ordered sequence of chunks.
// Whitespace-only input yields nil: callers skip such pages entirely.
//
// Every returned chunk is trimmed, non-empty, and at most MaxChars
// characters long.
func (c *Chunker) Chunk(pageText string) []string {
	if strings.TrimSpace(pageText) == "" {
		return nil
	}
	sentences := c.splitter.Split(pageText)
	chunks := build(sentences, c.cfg)
	return mergeTail(chunks, c.cfg)
}

// build greedily packs sentences in order, carrying a raw character-tail
// overlap across chunk boundaries. The accumulator holds the pieces of the
// chunk being packed; curLen tracks their character count plus one joining
// space per piece.
func build(sentences []string, cfg Config) []string {
	var chunks []string
	var acc []string
	curLen := 0

	flush := func() {
		if len(acc) == 0 {
			return
		}
		chunks = append(chunks, finalize(acc))
		acc = acc[:0]
		curLen = 0
	}

	for _, s := range sentences {
		n := utf8.RuneCountInString(s)

		// A single sentence above the ceiling cannot be packed: flush
		// whatever is pending and hard-split it into fixed-width slices,
		// bypassing accumulation and overlap.
		if n > cfg.MaxChars {
			flush()
			for _, piece := range hardSplit(s, cfg.MaxChars) {
				chunks = append(chunks, piece)
			}
			continue
		}

		// Fits: the +1 reserves the joining space.
		if curLen+n+1 <= cfg.MaxChars {
			acc = append(acc, s)
			curLen += n + 1
			continue
		}

		// Overflow: finalize the pending chunk, then seed the next
		// accumulator with its raw trailing OverlapChars characters.
		// The seed is a character slice, not re-aligned to sentence or
		// word boundaries; preserved as-is for index compatibility.
		// An empty accumulator has nothing to finalize or seed from:
		// the sentence simply starts the next chunk. The seed is capped
		// so seed + joining space + sentence stays within MaxChars.
		if len(acc) > 0 {
			done := finalize(acc)
			chunks = append(chunks, done)
			acc = acc[:0]
			seed := cfg.OverlapChars
			if room := cfg.MaxChars - n - 1; seed > room {
				seed = room
			}
			if seed > 0 {
				acc = append(acc, tailRunes(done, seed))
			}
		}
		acc = append(acc, s)
		curLen = 0
		for _, piece := range acc {
			curLen += utf8.RuneCountInString(piece) + 1
		}
	}

	flush()
	return chunks
}

// mergeTail folds an undersized final chunk into its predecessor when the
// merge stays within MaxChars. A tail that cannot be merged is left
// standing: a short final chunk beats violating the size ceiling.
func mergeTail(chunks []string, cfg Config) []string {
	if len(chunks) < 2 {
		return chunks
	}
	last := chunks[len(chunks)-1]
	if utf8.RuneCountInString(last) >= cfg.MinChars {
		return chunks
	}
	merged := strings.TrimSpace(chunks[len(chunks)-2] + " " + last)
	if utf8.RuneCountInString(merged) > cfg.MaxChars {
		return chunks
	}
	chunks[len(chunks)-2] = merged
	return chunks[:len(chunks)-1]
}

// finalize joins accumulated pieces with single spaces and trims.
func finalize(acc []string) string {
	return strings.TrimSpace(strings.Join(acc, " "))
}

// hardSplit slices s into consecutive width-character pieces (the last may
// be shorter), each trimmed; empty pieces are dropped.
func hardSplit(s string, width int) []string {
	runes := []rune(s)
	var out []string
	for i := 0; i < len(runes); i += width {
		end := i + width
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[i:end]))
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// tailRunes returns the trailing n characters of s (all of s when shorter).
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

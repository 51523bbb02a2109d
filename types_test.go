package lectern

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestChunkMetaJSONFieldNames(t *testing.T) {
	meta := ChunkMeta{
		SourceName:      "paper.pdf",
		PageNumber:      2,
		PageCharCount:   1800,
		ChunkIndex:      7,
		PageChunkIndex:  1,
		PageTotalChunks: 2,
		TotalPages:      10,
		ApproxChars:     950,
		OverlapChars:    150,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}
	// Stored metadata is read back by other tools; the key names are a
	// compatibility contract.
	for _, key := range []string{
		"source_name", "page_number", "page_char_count", "chunk_index",
		"page_chunk_index", "page_total_chunks", "total_pages",
		"approx_chars", "overlap_chars",
	} {
		if !strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestRecordJSONOmitsEmbedding(t *testing.T) {
	rec := Record{
		ID:        "a.pdf#p1#c1",
		Text:      "hello",
		Embedding: []float32{1, 2, 3},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "Embedding") || strings.Contains(string(data), "embedding") {
		t.Errorf("embedding leaked into JSON: %s", data)
	}
}

func TestMessageConstructors(t *testing.T) {
	u := UserMessage("hi")
	if u.Role != "user" || u.Content != "hi" {
		t.Errorf("UserMessage = %+v", u)
	}
	s := SystemMessage("rules")
	if s.Role != "system" || s.Content != "rules" {
		t.Errorf("SystemMessage = %+v", s)
	}
}

package lectern

import "testing"

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()
	if len(id1) != 36 {
		t.Errorf("expected 36 chars (UUIDv7), got %d: %s", len(id1), id1)
	}
	if id1 == id2 {
		t.Error("two IDs should be unique")
	}
	if id1 >= id2 {
		t.Error("sequential UUIDv7s should be time-ordered")
	}
}

func TestChunkID(t *testing.T) {
	tests := []struct {
		source string
		page   int
		chunk  int
		want   string
	}{
		{"report.pdf", 1, 1, "report.pdf#p1#c1"},
		{"report.pdf", 12, 3, "report.pdf#p12#c3"},
		{"notes & drafts.pdf", 2, 10, "notes & drafts.pdf#p2#c10"},
	}
	for _, tt := range tests {
		if got := ChunkID(tt.source, tt.page, tt.chunk); got != tt.want {
			t.Errorf("ChunkID(%q, %d, %d) = %q, want %q", tt.source, tt.page, tt.chunk, got, tt.want)
		}
	}
}

func TestChunkIDDeterministic(t *testing.T) {
	a := ChunkID("doc.pdf", 4, 2)
	b := ChunkID("doc.pdf", 4, 2)
	if a != b {
		t.Errorf("same inputs produced different IDs: %q vs %q", a, b)
	}
}

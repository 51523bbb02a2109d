package lectern

// --- Domain types ---

// DocumentInfo describes one source document as seen by the indexer.
type DocumentInfo struct {
	SourceName string `json:"source_name"`
	PageCount  int    `json:"page_count"`
	SizeBytes  int64  `json:"file_size_bytes"`
}

// ChunkMeta is the per-chunk metadata attached to every indexed record.
// The field set and JSON names are a stable contract: records written by
// one build must remain queryable by the next.
type ChunkMeta struct {
	SourceName      string `json:"source_name"`
	PageNumber      int    `json:"page_number"`
	PageCharCount   int    `json:"page_char_count"`
	ChunkIndex      int    `json:"chunk_index"`      // 0-based across the whole document
	PageChunkIndex  int    `json:"page_chunk_index"` // 0-based within the page
	PageTotalChunks int    `json:"page_total_chunks"`
	TotalPages      int    `json:"total_pages"`
	ApproxChars     int    `json:"approx_chars"`
	OverlapChars    int    `json:"overlap_chars"`
}

// Record is one indexable unit: a chunk of page text with its stable ID
// and metadata, plus the embedding assigned before upsert.
type Record struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Meta      ChunkMeta `json:"meta"`
	Embedding []float32 `json:"-"`
}

// Hit is a scored query result. Distance is the cosine distance reported
// by the store; lower means more similar.
type Hit struct {
	Record
	Distance float32 `json:"distance"`
}

// --- LLM protocol types ---

type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// --- ChatMessage constructors ---

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Content: text}
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: "system", Content: text}
}

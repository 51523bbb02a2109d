package lectern

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID generates a globally unique, time-sortable UUIDv7 (RFC 9562).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ChunkID builds the stable identifier for a chunk record:
// "<source_name>#p<page_number>#c<chunk_number>" with chunkNumber 1-based
// within the page. IDs are deterministic so re-indexing a document
// overwrites its previous records instead of duplicating them.
func ChunkID(sourceName string, pageNumber, chunkNumber int) string {
	return fmt.Sprintf("%s#p%d#c%d", sourceName, pageNumber, chunkNumber)
}

// NowUnix returns current time as Unix seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}

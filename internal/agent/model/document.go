package model

// ChunkMetadata identifies where a document chunk came from.
type ChunkMetadata struct {
	Source   string `json:"source"`
	Filename string `json:"filename"`
	UserID   string `json:"user_id,omitempty"`
	BatchID  string `json:"batch_id,omitempty"`
}

// DocumentChunk is one immutable slice of an ingested document.
// Every chunk belongs to exactly one ingestion batch.
type DocumentChunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ScoredChunk is a chunk returned from a similarity query.
type ScoredChunk struct {
	DocumentChunk
	Score float64 `json:"score"`
}

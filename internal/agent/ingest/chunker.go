package ingest

import (
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/pollenai/assistant/internal/agent/model"
)

// Chunker splits raw document text into overlapping fixed-size chunks.
// Size and overlap are shared by the whole corpus so retrieval granularity
// stays consistent across ingestion batches.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewChunker(cfg model.IngestConfig) *Chunker {
	size := cfg.ChunkSize
	if size <= 0 {
		size = 500
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = 200
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}
}

// Split returns the chunks of content, each stamped with the given metadata.
func (c *Chunker) Split(content string, meta model.ChunkMetadata) ([]model.DocumentChunk, error) {
	parts, err := c.splitter.SplitText(content)
	if err != nil {
		return nil, err
	}

	chunks := make([]model.DocumentChunk, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		chunks = append(chunks, model.DocumentChunk{
			Content:  p,
			Metadata: meta,
		})
	}
	return chunks, nil
}

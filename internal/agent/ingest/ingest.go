package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pollenai/assistant/internal/agent/model"
	"github.com/pollenai/assistant/internal/agent/rag"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// Document is one raw input to an ingestion batch.
type Document struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Filename string `json:"filename"`
	UserID   string `json:"user_id,omitempty"`
}

// Service chunks documents and writes their embeddings into the index.
// All chunks of one Ingest call share a single batch id.
type Service struct {
	chunker *Chunker
	index   rag.Index
}

func NewService(chunker *Chunker, index rag.Index) *Service {
	return &Service{chunker: chunker, index: index}
}

// Ingest chunks and indexes the given documents, returning the batch id and
// the number of chunks written.
func (s *Service) Ingest(ctx context.Context, docs []Document) (string, int, error) {
	batchID := uuid.NewString()

	var chunks []model.DocumentChunk
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		split, err := s.chunker.Split(doc.Content, model.ChunkMetadata{
			Source:   doc.Source,
			Filename: doc.Filename,
			UserID:   doc.UserID,
			BatchID:  batchID,
		})
		if err != nil {
			return "", 0, fmt.Errorf("split %s: %w", doc.Filename, err)
		}
		chunks = append(chunks, split...)
	}

	if len(chunks) == 0 {
		return batchID, 0, nil
	}

	if err := s.index.Add(ctx, chunks); err != nil {
		return "", 0, err
	}

	logx.Info().
		Str("batch_id", batchID).
		Int("documents", len(docs)).
		Int("chunks", len(chunks)).
		Msg("ingestion batch indexed")

	return batchID, len(chunks), nil
}

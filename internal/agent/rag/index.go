package rag

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/pollenai/assistant/internal/agent/model"
	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// Index is a persistent similarity index over chunked document embeddings.
// Chunks are immutable once added; Query never mutates the index.
type Index interface {
	Add(ctx context.Context, chunks []model.DocumentChunk) error
	Query(ctx context.Context, text string, k int) ([]model.ScoredChunk, error)
}

// QdrantIndex stores chunk embeddings in a single Qdrant collection with the
// chunk text and metadata in the point payload.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	embedder   Embedder
}

func NewQdrantIndex(cfg model.IndexConfig, embedder Embedder) (*QdrantIndex, error) {
	host, port, useTLS, err := parseQdrantEndpoint(cfg.QdrantURL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.QdrantKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, err
	}

	idx := &QdrantIndex{
		client:     client,
		collection: cfg.Collection,
		embedder:   embedder,
	}
	if err := idx.ensureCollection(context.Background(), embedder.Dimensions()); err != nil {
		return nil, err
	}
	return idx, nil
}

func (x *QdrantIndex) ensureCollection(ctx context.Context, dimension int) error {
	exists, err := x.client.CollectionExists(ctx, x.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return x.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: x.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (x *QdrantIndex) Add(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := x.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return err
		}
		payload, err := qdrant.TryValueMap(map[string]any{
			"content":  chunk.Content,
			"source":   chunk.Metadata.Source,
			"filename": chunk.Metadata.Filename,
			"user_id":  chunk.Metadata.UserID,
			"batch_id": chunk.Metadata.BatchID,
		})
		if err != nil {
			return err
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectorsDense(vector),
			Payload: payload,
		})
	}

	_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: x.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return errx.UpstreamUnavailable("vector index", err)
	}

	logx.Debug().Int("chunks", len(chunks)).Str("collection", x.collection).Msg("indexed document chunks")
	return nil
}

func (x *QdrantIndex) Query(ctx context.Context, text string, k int) ([]model.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	vector, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	results, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, errx.UpstreamUnavailable("vector index", err)
	}

	chunks := make([]model.ScoredChunk, 0, len(results))
	for _, scored := range results {
		payload := scored.GetPayload()
		chunks = append(chunks, model.ScoredChunk{
			DocumentChunk: model.DocumentChunk{
				Content: payloadString(payload, "content"),
				Metadata: model.ChunkMetadata{
					Source:   payloadString(payload, "source"),
					Filename: payloadString(payload, "filename"),
					UserID:   payloadString(payload, "user_id"),
					BatchID:  payloadString(payload, "batch_id"),
				},
			},
			Score: float64(scored.GetScore()),
		})
	}
	return chunks, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func parseQdrantEndpoint(raw string) (host string, port int, useTLS bool, err error) {
	port = 6334

	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("parse qdrant url %q: %w", raw, err)
	}

	host = u.Hostname()
	if host == "" {
		// bare host or host:port without a scheme
		host = raw
		if h, p, splitErr := net.SplitHostPort(raw); splitErr == nil {
			host = h
			port, err = strconv.Atoi(p)
			if err != nil {
				return "", 0, false, fmt.Errorf("parse qdrant port %q: %w", p, err)
			}
		}
		return host, port, false, nil
	}

	useTLS = u.Scheme == "https"
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("parse qdrant port %q: %w", p, err)
		}
	}
	return host, port, useTLS, nil
}

var _ Index = (*QdrantIndex)(nil)

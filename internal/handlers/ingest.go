package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pollenai/assistant/internal/agent/ingest"
)

// IngestHandler exposes document upload into the knowledge index.
type IngestHandler struct {
	service *ingest.Service
}

func NewIngestHandler(service *ingest.Service) *IngestHandler {
	return &IngestHandler{service: service}
}

func (h *IngestHandler) Register(e *echo.Echo) {
	e.POST("/ingest", h.Ingest)
}

// IngestRequest carries one or more documents to chunk and index.
type IngestRequest struct {
	UserID    string `json:"user_id"`
	Documents []struct {
		Content  string `json:"content"`
		Source   string `json:"source"`
		Filename string `json:"filename"`
	} `json:"documents"`
}

// IngestResponse reports the batch written to the index.
type IngestResponse struct {
	BatchID string `json:"batch_id"`
	Chunks  int    `json:"chunks"`
}

func (h *IngestHandler) Ingest(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if len(req.Documents) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "documents are required")
	}

	docs := make([]ingest.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		if strings.TrimSpace(d.Content) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "document content is required")
		}
		docs = append(docs, ingest.Document{
			Content:  d.Content,
			Source:   d.Source,
			Filename: d.Filename,
			UserID:   req.UserID,
		})
	}

	batchID, chunks, err := h.service.Ingest(c.Request().Context(), docs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, IngestResponse{BatchID: batchID, Chunks: chunks})
}

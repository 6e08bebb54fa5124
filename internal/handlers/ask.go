package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pollenai/assistant/internal/agent/graph"
	"github.com/pollenai/assistant/internal/agent/model"
)

// AskHandler exposes the conversational entrypoint.
type AskHandler struct {
	runner graph.Runner
}

func NewAskHandler(runner graph.Runner) *AskHandler {
	return &AskHandler{runner: runner}
}

func (h *AskHandler) Register(e *echo.Echo) {
	e.POST("/ask", h.Ask)
}

// AskRequest is the inbound chat payload.
type AskRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

// AskResponse mirrors the orchestrator answer.
type AskResponse struct {
	Response string `json:"response"`
	Type     string `json:"type"`
	ToolUsed string `json:"tool_used,omitempty"`
}

func (h *AskHandler) Ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	answer, err := h.runner.Invoke(c.Request().Context(), model.QueryInput{
		UserID: req.UserID,
		Query:  req.Query,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AskResponse{
		Response: answer.Text,
		Type:     string(answer.Type),
		ToolUsed: answer.ToolUsed,
	})
}

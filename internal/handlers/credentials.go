package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pollenai/assistant/internal/agent/model"
)

// CredentialsHandler stores per-user calendar OAuth credentials.
type CredentialsHandler struct {
	store model.CredentialStore
}

func NewCredentialsHandler(store model.CredentialStore) *CredentialsHandler {
	return &CredentialsHandler{store: store}
}

func (h *CredentialsHandler) Register(e *echo.Echo) {
	e.PUT("/credentials/:user_id", h.Put)
}

// CredentialsRequest carries the refresh token obtained out of band.
type CredentialsRequest struct {
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
	Name         string `json:"name"`
}

func (h *CredentialsHandler) Put(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}

	cred := model.UserCredential{
		UserID:       userID,
		RefreshToken: req.RefreshToken,
		Email:        req.Email,
		Name:         req.Name,
	}
	if err := h.store.Put(c.Request().Context(), cred); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "stored"})
}

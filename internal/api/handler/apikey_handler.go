package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
)

type APIKeyHandler struct {
	keys ports.APIKeyService
}

func NewAPIKeyHandler(keys ports.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

type createKeyRequest struct {
	AgentID            string     `json:"agent_id"        validate:"required"`
	Name               string     `json:"name"            validate:"required"`
	Permissions        []string   `json:"permissions"     validate:"required,min=1"`
	AllowedOrigins     []string   `json:"allowed_origins"`
	RateLimitPerMinute int        `json:"rate_limit_per_minute"`
	RateLimitPerDay    int        `json:"rate_limit_per_day"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

// createKeyResponse surfaces the raw key exactly once, at creation.
type createKeyResponse struct {
	Key    *domain.APIKey `json:"key"`
	RawKey string         `json:"raw_key"`
}

type listKeysResponse struct {
	Data []*domain.APIKey `json:"data"`
}

// Create provisions a new API key for the authenticated user.
//
// @Summary      Provision an API key
// @Tags         keys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createKeyRequest  true  "Key attributes"
// @Success      201   {object}  createKeyResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/keys [post]
func (h *APIKeyHandler) Create(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req createKeyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.keys.Provision(c.Request().Context(), ports.ProvisionKeyInput{
		UserID:             principal.UserID,
		AgentID:            req.AgentID,
		Name:               req.Name,
		Permissions:        req.Permissions,
		AllowedOrigins:     req.AllowedOrigins,
		RateLimitPerMinute: req.RateLimitPerMinute,
		RateLimitPerDay:    req.RateLimitPerDay,
		ExpiresAt:          req.ExpiresAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createKeyResponse{Key: result.Key, RawKey: result.RawKey})
}

// List returns the authenticated user's keys (prefixes only, never digests).
//
// @Summary      List API keys
// @Tags         keys
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listKeysResponse
// @Router       /v1/keys [get]
func (h *APIKeyHandler) List(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	keys, err := h.keys.List(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}
	if keys == nil {
		keys = []*domain.APIKey{}
	}
	return c.JSON(http.StatusOK, listKeysResponse{Data: keys})
}

// Revoke deactivates a key owned by the authenticated user.
//
// @Summary      Revoke an API key
// @Tags         keys
// @Security     BearerAuth
// @Param        id  path  string  true  "Key id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/keys/{id} [delete]
func (h *APIKeyHandler) Revoke(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.keys.Revoke(c.Request().Context(), c.Param("id"), principal.UserID); err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "api key not found"})
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type keyUsageResponse struct {
	ID         string     `json:"id"`
	KeyPrefix  string     `json:"key_prefix"`
	UsageCount int64      `json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Usage returns the persisted usage counters for a key.
//
// @Summary      API key usage
// @Tags         keys
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Key id"
// @Success      200  {object}  keyUsageResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/keys/{id}/usage [get]
func (h *APIKeyHandler) Usage(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	key, err := h.keys.Usage(c.Request().Context(), c.Param("id"), principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "api key not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, keyUsageResponse{
		ID:         key.ID,
		KeyPrefix:  key.KeyPrefix,
		UsageCount: key.UsageCount,
		LastUsedAt: key.LastUsedAt,
	})
}

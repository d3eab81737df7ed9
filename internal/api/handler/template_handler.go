package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
)

// TemplateHandler serves the agent-facing prompt-template API. Ownership is
// scoped by the key's owning user: an agent only ever sees its owner's
// templates.
type TemplateHandler struct {
	templates ports.TemplateService
}

func NewTemplateHandler(templates ports.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type createTemplateRequest struct {
	Name string   `json:"name" validate:"required"`
	Body string   `json:"body" validate:"required"`
	Tags []string `json:"tags"`
}

type listTemplatesResponse struct {
	Data []*domain.PromptTemplate `json:"data"`
}

// Create stores a new prompt template for the key's owner.
//
// @Summary      Create a prompt template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        body  body      createTemplateRequest  true  "Template"
// @Success      201   {object}  domain.PromptTemplate
// @Failure      400   {object}  map[string]string
// @Router       /agent/v1/templates [post]
func (h *TemplateHandler) Create(c echo.Context) error {
	agent, err := currentAgent(c)
	if err != nil {
		return err
	}

	var req createTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	tpl, err := h.templates.Create(c.Request().Context(), ports.CreateTemplateInput{
		UserID: agent.UserID,
		Name:   req.Name,
		Body:   req.Body,
		Tags:   req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tpl)
}

// Get returns a single template owned by the key's owner.
//
// @Summary      Get a prompt template
// @Tags         templates
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id  path  string  true  "Template id"
// @Success      200  {object}  domain.PromptTemplate
// @Failure      404  {object}  map[string]string
// @Router       /agent/v1/templates/{id} [get]
func (h *TemplateHandler) Get(c echo.Context) error {
	agent, err := currentAgent(c)
	if err != nil {
		return err
	}

	tpl, err := h.templates.Get(c.Request().Context(), c.Param("id"), agent.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "template not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, tpl)
}

// List returns all templates owned by the key's owner.
//
// @Summary      List prompt templates
// @Tags         templates
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  listTemplatesResponse
// @Router       /agent/v1/templates [get]
func (h *TemplateHandler) List(c echo.Context) error {
	agent, err := currentAgent(c)
	if err != nil {
		return err
	}

	templates, err := h.templates.List(c.Request().Context(), agent.UserID)
	if err != nil {
		return err
	}
	if templates == nil {
		templates = []*domain.PromptTemplate{}
	}
	return c.JSON(http.StatusOK, listTemplatesResponse{Data: templates})
}

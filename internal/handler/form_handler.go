package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

const maxFormBody = 1 << 20

type formSubmitter interface {
	Submit(ctx context.Context, sub dto.FormSubmission) (*dto.FormState, error)
}

type relatedResolver interface {
	Resolve(ctx context.Context, kind models.EntityKind, mode models.FormMode, actor models.Actor) (*dto.RelatedData, error)
}

// FormHandler exposes the entity form workflow.
type FormHandler struct {
	forms   formSubmitter
	related relatedResolver
}

// NewFormHandler constructs a FormHandler.
func NewFormHandler(forms formSubmitter, related relatedResolver) *FormHandler {
	return &FormHandler{forms: forms, related: related}
}

// Create godoc
// @Summary Submit a create form
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity kind"
// @Param X-Form-Instance header string false "Form instance id"
// @Success 201 {object} dto.FormState
// @Failure 400 {object} dto.FormState
// @Failure 409 {object} dto.FormState
// @Router /forms/{entity} [post]
func (h *FormHandler) Create(c *gin.Context) {
	h.submit(c, models.ModeCreate, false, http.StatusCreated)
}

// Update godoc
// @Summary Submit an update form
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity kind"
// @Param id path string true "Record id"
// @Success 200 {object} dto.FormState
// @Failure 400 {object} dto.FormState
// @Failure 404 {object} dto.FormState
// @Router /forms/{entity}/{id} [put]
func (h *FormHandler) Update(c *gin.Context) {
	h.submit(c, models.ModeUpdate, false, http.StatusOK)
}

// PatchParent godoc
// @Summary Partially update a parent
// @Description Only the supplied fields are changed.
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Parent id"
// @Success 200 {object} dto.FormState
// @Failure 400 {object} dto.FormState
// @Router /forms/parent/{id} [patch]
func (h *FormHandler) PatchParent(c *gin.Context) {
	h.submit(c, models.ModeUpdate, true, http.StatusOK)
}

// Delete godoc
// @Summary Delete a record through its form
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity kind"
// @Param id path string true "Record id"
// @Success 200 {object} dto.FormState
// @Failure 404 {object} dto.FormState
// @Failure 500 {object} dto.FormState
// @Router /forms/{entity}/{id} [delete]
func (h *FormHandler) Delete(c *gin.Context) {
	h.submit(c, models.ModeDelete, false, http.StatusOK)
}

// Related godoc
// @Summary Option lists for an entity form
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity kind"
// @Param mode query string false "create, update or delete" default(create)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /forms/{entity}/related [get]
func (h *FormHandler) Related(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	kind, ok := models.ParseEntityKind(c.Param("entity"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown entity"))
		return
	}
	mode, ok := models.ParseFormMode(c.DefaultQuery("mode", string(models.ModeCreate)))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid form mode"))
		return
	}

	data, err := h.related.Resolve(c.Request.Context(), kind, mode, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if data.IsDegraded() {
		meta = map[string]interface{}{"degraded": data.Degraded}
	}
	response.JSON(c, http.StatusOK, data, nil, meta)
}

func (h *FormHandler) submit(c *gin.Context, mode models.FormMode, partial bool, okStatus int) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Form(c, http.StatusUnauthorized, dto.FormState{Code: appErrors.ErrUnauthorized.Code, Error: appErrors.ErrUnauthorized.Message})
		return
	}

	entity := c.Param("entity")
	if partial {
		entity = string(models.KindParent)
	}
	kind, ok := models.ParseEntityKind(entity)
	if !ok {
		response.Form(c, http.StatusNotFound, dto.FormState{Code: appErrors.ErrNotFound.Code, Error: "unknown entity"})
		return
	}

	var payload json.RawMessage
	if mode != models.ModeDelete {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFormBody))
		if err != nil {
			response.Form(c, http.StatusBadRequest, dto.FormState{Code: appErrors.ErrValidation.Code, Error: "invalid form payload"})
			return
		}
		payload = body
	}

	state, err := h.forms.Submit(c.Request.Context(), dto.FormSubmission{
		Kind:      kind,
		Mode:      mode,
		ID:        c.Param("id"),
		Partial:   partial,
		Payload:   payload,
		Actor:     actor,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		_ = c.Error(err)
		response.Form(c, appErrors.FromError(err).Status, state)
		return
	}
	response.Form(c, okStatus, state)
}

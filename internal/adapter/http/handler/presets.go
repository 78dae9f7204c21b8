package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/niva/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/validator"
	"github.com/google/uuid"
)

type PresetService interface {
	Create(ctx context.Context, p *models.CustomSession, routeID *uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.CustomSession, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Presets serves custom session templates.
type Presets struct {
	service PresetService
	l       logger.Logger
}

func NewPresets(service PresetService, l logger.Logger) *Presets {
	return &Presets{service: service, l: l}
}

// List godoc
// @Summary      List custom sessions
// @Tags         Presets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /presets [get]
func (h *Presets) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "list_presets", UserID: user.ID.String()})

	presets, err := h.service.List(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list presets", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	if presets == nil {
		presets = []models.CustomSession{}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"presets": presets}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Create godoc
// @Summary      Save a custom session
// @Tags         Presets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.PresetRequest  true  "Custom session"
// @Success      201      {object}  map[string]any
// @Failure      404      {object}  map[string]string
// @Failure      422      {object}  map[string]any
// @Router       /presets [post]
func (h *Presets) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "create_preset", UserID: user.ID.String()})

	req := &dto.PresetRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidatePreset(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	preset := req.ToModel(user.ID)
	if err := h.service.Create(ctx, preset, req.RouteID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create preset", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"preset": preset}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Delete godoc
// @Summary      Delete a custom session
// @Tags         Presets
// @Security     BearerAuth
// @Param        preset_id  path  string  true  "Preset ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /presets/{preset_id} [delete]
func (h *Presets) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "delete_preset", UserID: user.ID.String()})

	id, err := pathUUID(r, "preset_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	if err := h.service.Delete(ctx, user.ID, id); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to delete preset", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

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

type RouteService interface {
	Create(ctx context.Context, r *models.SavedRoute) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRoute, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.SavedRoute, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type Routes struct {
	service RouteService
	l       logger.Logger
}

func NewRoutes(service RouteService, l logger.Logger) *Routes {
	return &Routes{service: service, l: l}
}

// List godoc
// @Summary      List saved routes
// @Tags         Routes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /routes [get]
func (h *Routes) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "list_routes", UserID: user.ID.String()})

	routes, err := h.service.List(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list routes", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	if routes == nil {
		routes = []models.SavedRoute{}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"routes": routes}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Create godoc
// @Summary      Save a route
// @Description  Without estimated_time the route takes the sum of its waypoint estimates.
// @Tags         Routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.RouteRequest  true  "Route"
// @Success      201      {object}  map[string]any
// @Failure      422      {object}  map[string]any
// @Router       /routes [post]
func (h *Routes) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "create_route", UserID: user.ID.String()})

	req := &dto.RouteRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateRoute(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	route := req.ToModel(user.ID)
	if err := h.service.Create(ctx, route); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"route": route}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Get godoc
// @Summary      Get a saved route
// @Tags         Routes
// @Produce      json
// @Security     BearerAuth
// @Param        route_id  path      string  true  "Route ID"
// @Success      200       {object}  map[string]any
// @Failure      404       {object}  map[string]string
// @Router       /routes/{route_id} [get]
func (h *Routes) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "get_route", UserID: user.ID.String()})

	id, err := pathUUID(r, "route_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	route, err := h.service.Get(ctx, user.ID, id)
	if err != nil {
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"route": route}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Delete godoc
// @Summary      Delete a saved route
// @Tags         Routes
// @Security     BearerAuth
// @Param        route_id  path  string  true  "Route ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /routes/{route_id} [delete]
func (h *Routes) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "delete_route", UserID: user.ID.String()})

	id, err := pathUUID(r, "route_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	if err := h.service.Delete(ctx, user.ID, id); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to delete route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/niva/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/service/companion"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/validator"
	"github.com/google/uuid"
)

type SessionService interface {
	Start(ctx context.Context, userID uuid.UUID, req companion.StartRequest) (*models.SessionSnapshot, error)
	Active(ctx context.Context, userID uuid.UUID) (*models.SessionSnapshot, error)
	Status(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error)
	CheckIn(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error)
	ConfirmSafe(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error)
	Ping(ctx context.Context, userID, sessionID uuid.UUID, loc *models.Location) (*models.SessionSnapshot, error)
	UpdateLocation(ctx context.Context, userID, sessionID uuid.UUID, loc models.Location) (*models.SessionSnapshot, error)
	End(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error)
	Events(ctx context.Context, userID, sessionID uuid.UUID, filters models.Filters) ([]models.SessionEventRecord, models.Metadata, error)
}

// Session serves companion sessions.
type Session struct {
	service SessionService
	l       logger.Logger
}

func NewSession(service SessionService, l logger.Logger) *Session {
	return &Session{service: service, l: l}
}

// Start godoc
// @Summary      Start a companion session
// @Description  A preset supplies defaults for duration, route and contacts. Without contacts every trusted contact is notified.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.StartSessionRequest  true  "Session"
// @Success      201      {object}  models.SessionSnapshot
// @Failure      409      {object}  map[string]string
// @Failure      422      {object}  map[string]any
// @Router       /sessions [post]
func (h *Session) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "start_session", UserID: user.ID.String()})

	req := &dto.StartSessionRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateStartSession(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	snap, err := h.service.Start(ctx, user.ID, req.ToRequest())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to start session", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	h.writeSnapshot(ctx, w, http.StatusCreated, snap)
}

// Active godoc
// @Summary      Get the running session
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.SessionSnapshot
// @Failure      404  {object}  map[string]string
// @Router       /sessions/active [get]
func (h *Session) Active(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "active_session", UserID: user.ID.String()})

	snap, err := h.service.Active(ctx, user.ID)
	if err != nil {
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	h.writeSnapshot(ctx, w, http.StatusOK, snap)
}

// Get godoc
// @Summary      Get a session
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  models.SessionSnapshot
// @Failure      403         {object}  map[string]string
// @Failure      404         {object}  map[string]string
// @Router       /sessions/{session_id} [get]
func (h *Session) Get(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, "get_session", h.service.Status)
}

// CheckIn godoc
// @Summary      Answer the check-in prompt
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  models.SessionSnapshot
// @Failure      400         {object}  map[string]string
// @Router       /sessions/{session_id}/check-in [post]
func (h *Session) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, "check_in", h.service.CheckIn)
}

// ConfirmSafe godoc
// @Summary      Answer the safety check
// @Description  Confirming extends the session by five minutes.
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  models.SessionSnapshot
// @Failure      400         {object}  map[string]string
// @Router       /sessions/{session_id}/safety-ok [post]
func (h *Session) ConfirmSafe(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, "confirm_safe", h.service.ConfirmSafe)
}

// End godoc
// @Summary      End a session
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string  true  "Session ID"
// @Success      200         {object}  models.SessionSnapshot
// @Failure      409         {object}  map[string]string
// @Router       /sessions/{session_id}/end [post]
func (h *Session) End(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, "end_session", h.service.End)
}

// Ping godoc
// @Summary      Share the location now
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string           true   "Session ID"
// @Param        request     body      dto.PingRequest  false  "Current location"
// @Success      200         {object}  models.SessionSnapshot
// @Router       /sessions/{session_id}/ping [post]
func (h *Session) Ping(w http.ResponseWriter, r *http.Request) {
	req := &dto.PingRequest{}
	if r.ContentLength != 0 {
		if err := readJSON(w, r, req); err != nil {
			badRequestResponse(w, err.Error())
			return
		}
	}

	v := validator.New()
	dto.ValidateLocation(v, req.Location)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	h.answer(w, r, "manual_ping", func(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error) {
		return h.service.Ping(ctx, userID, sessionID, req.Location.ToModel())
	})
}

// UpdateLocation godoc
// @Summary      Record the current location
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string               true  "Session ID"
// @Param        request     body      dto.LocationRequest  true  "Current location"
// @Success      200         {object}  models.SessionSnapshot
// @Failure      422         {object}  map[string]any
// @Router       /sessions/{session_id}/location [post]
func (h *Session) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	req := &dto.LocationRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateLocation(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	h.answer(w, r, "update_location", func(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error) {
		return h.service.UpdateLocation(ctx, userID, sessionID, *req.ToModel())
	})
}

// Events godoc
// @Summary      Session history
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  path      string  true   "Session ID"
// @Param        page        query     int     false  "Page"
// @Param        page_size   query     int     false  "Page size"
// @Param        sort        query     string  false  "created_at, -created_at, id, -id"
// @Success      200         {object}  map[string]any
// @Failure      422         {object}  map[string]any
// @Router       /sessions/{session_id}/events [get]
func (h *Session) Events(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "session_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "session_events", UserID: user.ID.String(), SessionID: id.String()})

	qs := r.URL.Query()
	v := validator.New()

	page, err := readInt(qs, "page", models.DefaultPage)
	if err != nil {
		v.AddError("page", err.Error())
	}
	pageSize, err := readInt(qs, "page_size", models.DefaultPageSize)
	if err != nil {
		v.AddError("page_size", err.Error())
	}

	filters := models.EventFilters(page, pageSize, readString(qs, "sort", ""))
	if filters.Validate(v); !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	events, meta, err := h.service.Events(ctx, user.ID, id, filters)
	if err != nil {
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	if events == nil {
		events = []models.SessionEventRecord{}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"events": events, "metadata": meta}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// answer runs a per-session operation for the authenticated user and writes the snapshot.
func (h *Session) answer(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, userID, sessionID uuid.UUID) (*models.SessionSnapshot, error)) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "session_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: action, UserID: user.ID.String(), SessionID: id.String()})

	snap, err := fn(ctx, user.ID, id)
	if err != nil {
		if GetCode(err) >= http.StatusInternalServerError {
			h.l.Error(wrap.ErrorCtx(ctx, err), "session operation failed", err)
		}
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	h.writeSnapshot(ctx, w, http.StatusOK, snap)
}

func (h *Session) writeSnapshot(ctx context.Context, w http.ResponseWriter, status int, snap *models.SessionSnapshot) {
	if err := writeJSON(w, status, envelope{"session": snap}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

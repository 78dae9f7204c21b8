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

type ContactService interface {
	Create(ctx context.Context, c *models.TrustedContact) error
	Update(ctx context.Context, c *models.TrustedContact) error
	List(ctx context.Context, userID uuid.UUID) ([]models.TrustedContact, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type Contacts struct {
	service ContactService
	l       logger.Logger
}

func NewContacts(service ContactService, l logger.Logger) *Contacts {
	return &Contacts{service: service, l: l}
}

// List godoc
// @Summary      List trusted contacts
// @Tags         Contacts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /contacts [get]
func (h *Contacts) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "list_contacts", UserID: user.ID.String()})

	contacts, err := h.service.List(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list contacts", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	if contacts == nil {
		contacts = []models.TrustedContact{}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"contacts": contacts}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Create godoc
// @Summary      Add a trusted contact
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.ContactRequest  true  "Contact"
// @Success      201      {object}  map[string]any
// @Failure      422      {object}  map[string]any
// @Router       /contacts [post]
func (h *Contacts) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "create_contact", UserID: user.ID.String()})

	req := &dto.ContactRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateContact(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	contact := req.ToModel(user.ID)
	if err := h.service.Create(ctx, contact); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create contact", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"contact": contact}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Update godoc
// @Summary      Update a trusted contact
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        contact_id  path      string              true  "Contact ID"
// @Param        request     body      dto.ContactRequest  true  "Contact"
// @Success      200         {object}  map[string]any
// @Failure      404         {object}  map[string]string
// @Router       /contacts/{contact_id} [put]
func (h *Contacts) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "update_contact", UserID: user.ID.String()})

	id, err := pathUUID(r, "contact_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	req := &dto.ContactRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateContact(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	contact := req.ToModel(user.ID)
	contact.ID = id
	if err := h.service.Update(ctx, contact); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update contact", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"contact": contact}, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Delete godoc
// @Summary      Remove a trusted contact
// @Tags         Contacts
// @Security     BearerAuth
// @Param        contact_id  path  string  true  "Contact ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /contacts/{contact_id} [delete]
func (h *Contacts) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "delete_contact", UserID: user.ID.String()})

	id, err := pathUUID(r, "contact_id")
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	if err := h.service.Delete(ctx, user.ID, id); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to delete contact", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

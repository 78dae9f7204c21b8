package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Temutjin2k/niva/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/internal/service/notify"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
)

type NotificationService interface {
	Send(ctx context.Context, req notify.SendRequest, to string) (models.SendResult, error)
	SendBulk(ctx context.Context, req notify.SendRequest, recipients []models.Recipient) (models.DeliveryReport, error)
	Status(ctx context.Context, channel types.Channel, messageID string) (*models.MessageStatus, error)
	Configured() map[types.Channel]bool
}

// Notification is the delivery API used by the web client and by operators.
// Responses carry a "success" flag.
type Notification struct {
	service NotificationService
	l       logger.Logger
}

func NewNotification(service NotificationService, l logger.Logger) *Notification {
	return &Notification{service: service, l: l}
}

// SendSMS godoc
// @Summary      Send an SMS
// @Tags         SMS
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request  body      dto.SendMessageRequest  true  "Message"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  map[string]any
// @Failure      503      {object}  map[string]any
// @Router       /api/sms/send [post]
func (h *Notification) SendSMS(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, types.ChannelSMS)
}

// SendWhatsApp godoc
// @Summary      Send a WhatsApp message
// @Tags         WhatsApp
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request  body      dto.SendMessageRequest  true  "Message"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  map[string]any
// @Failure      503      {object}  map[string]any
// @Router       /api/whatsapp/send [post]
func (h *Notification) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, types.ChannelWhatsApp)
}

// SendEmail godoc
// @Summary      Send an email
// @Tags         Email
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request  body      dto.SendMessageRequest  true  "Message"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  map[string]any
// @Failure      503      {object}  map[string]any
// @Router       /api/email/send [post]
func (h *Notification) SendEmail(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, types.ChannelEmail)
}

// SendBulkSMS godoc
// @Summary      Send an SMS to several contacts
// @Tags         SMS
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request  body      dto.SendBulkRequest  true  "Message and contacts"
// @Success      200      {object}  models.DeliveryReport
// @Router       /api/sms/send-bulk [post]
func (h *Notification) SendBulkSMS(w http.ResponseWriter, r *http.Request) {
	h.sendBulk(w, r, types.ChannelSMS)
}

// SendBulkWhatsApp godoc
// @Summary      Send a WhatsApp message to several contacts
// @Tags         WhatsApp
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request  body      dto.SendBulkRequest  true  "Message and contacts"
// @Success      200      {object}  models.DeliveryReport
// @Router       /api/whatsapp/send-bulk [post]
func (h *Notification) SendBulkWhatsApp(w http.ResponseWriter, r *http.Request) {
	h.sendBulk(w, r, types.ChannelWhatsApp)
}

// SendBulkEmail godoc
// @Summary      Send an email to several contacts
// @Tags         Email
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request  body      dto.SendBulkRequest  true  "Message and contacts"
// @Success      200      {object}  models.DeliveryReport
// @Router       /api/email/send-bulk [post]
func (h *Notification) SendBulkEmail(w http.ResponseWriter, r *http.Request) {
	h.sendBulk(w, r, types.ChannelEmail)
}

// SMSStatus godoc
// @Summary      SMS delivery status
// @Tags         SMS
// @Produce      json
// @Security     ApiKeyAuth
// @Param        message_id  path      string  true  "Twilio message SID"
// @Success      200         {object}  map[string]any
// @Failure      404         {object}  map[string]any
// @Router       /api/sms/status/{message_id} [get]
func (h *Notification) SMSStatus(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, types.ChannelSMS)
}

// WhatsAppStatus godoc
// @Summary      WhatsApp delivery status
// @Tags         WhatsApp
// @Produce      json
// @Security     ApiKeyAuth
// @Param        message_id  path      string  true  "Twilio message SID"
// @Success      200         {object}  map[string]any
// @Failure      404         {object}  map[string]any
// @Router       /api/whatsapp/status/{message_id} [get]
func (h *Notification) WhatsAppStatus(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, types.ChannelWhatsApp)
}

// APIStatus godoc
// @Summary      Configured channels
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/status [get]
func (h *Notification) APIStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "api_status")

	response := envelope{
		"success":   true,
		"services":  h.service.Configured(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
	}
}

func (h *Notification) send(w http.ResponseWriter, r *http.Request, ch types.Channel) {
	ctx := wrap.WithAction(r.Context(), "send_"+ch.String())

	req := &dto.SendMessageRequest{}
	if err := readJSON(w, r, req); err != nil {
		deliveryErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := dto.ValidateSend(ch, req); msg != "" {
		deliveryErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.service.Send(ctx, notify.SendRequest{
		Channel: ch,
		Subject: req.Subject,
		Message: req.Message,
		Type:    dto.MessageType(req.Type),
	}, req.To)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to send message", err, "channel", ch)
		deliveryErrorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"success":   true,
		"messageId": res.MessageID,
		"to":        res.To,
		"status":    res.Status,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
	}
}

func (h *Notification) sendBulk(w http.ResponseWriter, r *http.Request, ch types.Channel) {
	ctx := wrap.WithAction(r.Context(), "send_bulk_"+ch.String())

	req := &dto.SendBulkRequest{}
	if err := readJSON(w, r, req); err != nil {
		deliveryErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := dto.ValidateBulk(ch, req); msg != "" {
		deliveryErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	report, err := h.service.SendBulk(ctx, notify.SendRequest{
		Channel: ch,
		Subject: req.Subject,
		Message: req.Message,
		Type:    dto.MessageType(req.Type),
	}, req.Recipients())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "bulk delivery failed", err, "channel", ch)
		deliveryErrorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"success": true,
		"sent":    report.Sent,
		"failed":  report.Failed,
		"results": report.Results,
		"errors":  report.Errors,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
	}
}

func (h *Notification) status(w http.ResponseWriter, r *http.Request, ch types.Channel) {
	ctx := wrap.WithAction(r.Context(), "status_"+ch.String())

	id := r.PathValue("message_id")
	if id == "" {
		deliveryErrorResponse(w, http.StatusBadRequest, "message id is required")
		return
	}

	st, err := h.service.Status(ctx, ch, id)
	if err != nil {
		h.l.Warn(wrap.ErrorCtx(ctx, err), "failed to fetch message status", "error", err, "message_id", id)
		deliveryErrorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"success":      true,
		"messageId":    st.SID,
		"status":       st.Status,
		"to":           st.To,
		"from":         st.From,
		"dateCreated":  st.DateCreated,
		"dateSent":     st.DateSent,
		"errorCode":    st.ErrorCode,
		"errorMessage": st.ErrorMessage,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
	}
}

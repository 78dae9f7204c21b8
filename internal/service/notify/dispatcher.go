package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/metrics"
	"github.com/google/uuid"
)

const serviceName = "notification-service"

var channelOrder = []types.Channel{types.ChannelSMS, types.ChannelWhatsApp, types.ChannelEmail}

/*
Dispatcher formats and delivers messages to trusted contacts over SMS, WhatsApp and email.
Bulk sends are sequential with a pause between messages; a failed recipient never aborts the batch.
*/
type Dispatcher struct {
	senders    map[types.Channel]Sender
	status     map[types.Channel]StatusFetcher
	deliveries DeliveryRepo
	tmpl       Templates
	pause      time.Duration
	l          logger.Logger
}

// NewDispatcher returns a dispatcher. Channels missing from senders report ErrChannelNotConfigured.
// deliveries may be nil.
func NewDispatcher(senders map[types.Channel]Sender, status map[types.Channel]StatusFetcher, deliveries DeliveryRepo, tmpl Templates, pause time.Duration, l logger.Logger) *Dispatcher {
	if senders == nil {
		senders = map[types.Channel]Sender{}
	}
	if status == nil {
		status = map[types.Channel]StatusFetcher{}
	}
	return &Dispatcher{
		senders:    senders,
		status:     status,
		deliveries: deliveries,
		tmpl:       tmpl,
		pause:      pause,
		l:          l,
	}
}

// Configured reports which channels can deliver.
func (d *Dispatcher) Configured() map[types.Channel]bool {
	out := make(map[types.Channel]bool, len(channelOrder))
	for _, ch := range channelOrder {
		_, ok := d.senders[ch]
		out[ch] = ok
	}
	return out
}

// SendRequest is a message to one or more recipients on a single channel.
type SendRequest struct {
	Channel types.Channel
	Subject string // email only
	Message string
	Type    types.MessageType
	AlertID *uuid.UUID
}

// Send delivers a message to a single address.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest, to string) (models.SendResult, error) {
	ctx = wrap.WithAction(ctx, types.ActionNotificationSent)

	sender, ok := d.senders[req.Channel]
	if !ok {
		return models.SendResult{}, wrap.Error(ctx, fmt.Errorf("%s: %w", req.Channel, types.ErrChannelNotConfigured))
	}

	msg, err := d.compose(req, to, "")
	if err != nil {
		return models.SendResult{}, wrap.Error(ctx, err)
	}

	res, err := d.deliver(ctx, sender, msg, req.AlertID)
	if err != nil {
		return models.SendResult{}, wrap.Error(ctx, err)
	}
	return res, nil
}

// SendBulk delivers a message to every recipient and aggregates the outcome.
// Email recipients are greeted by name; recipients without an address are reported as errors.
func (d *Dispatcher) SendBulk(ctx context.Context, req SendRequest, recipients []models.Recipient) (models.DeliveryReport, error) {
	ctx = wrap.WithAction(ctx, types.ActionNotificationSent)
	report := models.DeliveryReport{
		Results: []models.DeliveryResult{},
		Errors:  []models.DeliveryError{},
	}

	sender, ok := d.senders[req.Channel]
	if !ok {
		return report, wrap.Error(ctx, fmt.Errorf("%s: %w", req.Channel, types.ErrChannelNotConfigured))
	}

	sentAny := false
	for _, r := range recipients {
		to := addressOf(req.Channel, r)
		if to == "" {
			report.AddError(models.DeliveryError{
				Contact: r.Name,
				Channel: req.Channel,
				Error:   noAddressMessage(req.Channel),
			})
			continue
		}

		if sentAny {
			if err := sleep(ctx, d.pause); err != nil {
				return report, wrap.Error(ctx, err)
			}
		}
		sentAny = true

		name := ""
		if req.Channel == types.ChannelEmail {
			name = r.Name
		}
		msg, err := d.compose(req, to, name)
		if err == nil {
			var res models.SendResult
			res, err = d.deliver(ctx, sender, msg, req.AlertID)
			if err == nil {
				report.AddResult(models.DeliveryResult{
					Contact:   r.Name,
					Channel:   req.Channel,
					To:        res.To,
					MessageID: res.MessageID,
					Status:    res.Status,
				})
				continue
			}
		}

		d.l.Error(wrap.ErrorCtx(ctx, err), "failed to deliver message", err, "channel", req.Channel, "contact", r.Name)
		report.AddError(models.DeliveryError{
			Contact: r.Name,
			Channel: req.Channel,
			To:      to,
			Error:   err.Error(),
		})
	}

	d.l.Info(ctx, "bulk delivery finished", "channel", req.Channel, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

// Status fetches the provider status of a sent message.
func (d *Dispatcher) Status(ctx context.Context, channel types.Channel, messageID string) (*models.MessageStatus, error) {
	fetcher, ok := d.status[channel]
	if !ok {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", channel, types.ErrChannelNotConfigured))
	}
	st, err := fetcher.FetchStatus(ctx, messageID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("Dispatcher.Status: %w", err))
	}
	return st, nil
}

// Dispatch fans an alert out to its recipients over every configured channel.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.AlertRequest) models.DeliveryReport {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{
		Action:    types.ActionAlertConsumed,
		UserID:    alert.UserID.String(),
		SessionID: alert.SessionID.String(),
	})

	subject, body := d.tmpl.Render(alert)
	typ := types.MessageNormal
	if alert.Kind == types.AlertEmergency {
		typ = types.MessageEmergency
	}

	report := models.DeliveryReport{
		Results: []models.DeliveryResult{},
		Errors:  []models.DeliveryError{},
	}
	alertID := alert.ID

	for _, ch := range channelOrder {
		if _, ok := d.senders[ch]; !ok {
			d.l.Debug(ctx, "channel skipped: not configured", "channel", ch)
			continue
		}

		recipients := alert.Recipients
		if ch == types.ChannelEmail {
			// email is optional for contacts
			recipients = withEmail(recipients)
		}
		if len(recipients) == 0 {
			continue
		}

		part, err := d.SendBulk(ctx, SendRequest{
			Channel: ch,
			Subject: subject,
			Message: body,
			Type:    typ,
			AlertID: &alertID,
		}, recipients)
		report.Merge(part)
		if err != nil {
			d.l.Error(wrap.ErrorCtx(ctx, err), "alert dispatch interrupted", err, "channel", ch)
			break
		}
	}

	d.l.Info(ctx, "alert dispatched", "kind", alert.Kind, "sent", report.Sent, "failed", report.Failed)
	return report
}

func (d *Dispatcher) compose(req SendRequest, to, name string) (models.OutboundMessage, error) {
	msg := models.OutboundMessage{
		Channel: req.Channel,
		To:      to,
		Type:    req.Type,
		Name:    name,
	}

	switch req.Channel {
	case types.ChannelSMS:
		msg.To = FormatPhone(to)
		msg.Body = d.tmpl.SMSBody(req.Message, req.Type)
	case types.ChannelWhatsApp:
		msg.To = FormatWhatsApp(to)
		msg.Body = d.tmpl.WhatsAppBody(req.Message, req.Type)
	case types.ChannelEmail:
		html, err := d.tmpl.EmailHTML(req.Message, name, req.Type)
		if err != nil {
			return msg, err
		}
		msg.Subject = d.tmpl.EmailSubject(req.Subject, req.Type)
		msg.Body = d.tmpl.EmailText(req.Message, name)
		msg.HTML = html
	default:
		return msg, fmt.Errorf("unknown channel %q: %w", req.Channel, types.ErrInvalidPayload)
	}

	return msg, nil
}

// deliver sends one message and records the attempt.
func (d *Dispatcher) deliver(ctx context.Context, sender Sender, msg models.OutboundMessage, alertID *uuid.UUID) (models.SendResult, error) {
	res, err := sender.Send(ctx, msg)
	metrics.RecordDelivery(serviceName, msg.Channel.String(), err)

	if res.To == "" {
		res.To = msg.To
	}

	if d.deliveries != nil {
		row := &models.Delivery{
			ID:        uuid.New(),
			AlertID:   alertID,
			Channel:   msg.Channel,
			Recipient: msg.To,
			MessageID: res.MessageID,
			Status:    res.Status,
		}
		if err != nil {
			row.Status = "failed"
			row.Error = err.Error()
		}
		if logErr := d.deliveries.Create(ctx, row); logErr != nil {
			d.l.Warn(ctx, "failed to log delivery", "error", logErr.Error())
		}
	}

	if err != nil {
		return res, err
	}

	d.l.Info(ctx, "message sent", "channel", msg.Channel, "to", msg.To, "message_id", res.MessageID)
	return res, nil
}

func addressOf(ch types.Channel, r models.Recipient) string {
	if ch == types.ChannelEmail {
		return strings.TrimSpace(r.Email)
	}
	return strings.TrimSpace(r.Phone)
}

func noAddressMessage(ch types.Channel) string {
	if ch == types.ChannelEmail {
		return "No email address provided"
	}
	return "No phone number provided"
}

func withEmail(recipients []models.Recipient) []models.Recipient {
	out := make([]models.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if strings.TrimSpace(r.Email) != "" {
			out = append(out, r)
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("bulk delivery cancelled: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// Package twilio delivers SMS and WhatsApp messages through Twilio Programmable Messaging.
package twilio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	twilio "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type Config struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

// Client wraps the Twilio REST client.
type Client struct {
	rest *twilio.RestClient
	cfg  Config
}

func New(cfg Config) *Client {
	return &Client{
		rest: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		cfg: cfg,
	}
}

// SMS returns a sender using the account phone number.
func (c *Client) SMS() *Sender {
	return &Sender{client: c, from: c.cfg.PhoneNumber}
}

// WhatsApp returns a sender using the WhatsApp number, or nil when it is not configured.
func (c *Client) WhatsApp() *Sender {
	if c.cfg.WhatsAppNumber == "" {
		return nil
	}
	return &Sender{client: c, from: "whatsapp:" + c.cfg.WhatsAppNumber}
}

// Sender sends from one number. Message bodies are already formatted.
type Sender struct {
	client *Client
	from   string
}

func (s *Sender) Send(ctx context.Context, msg models.OutboundMessage) (models.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return models.SendResult{}, err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)

	resp, err := s.client.rest.Api.CreateMessage(params)
	if err != nil {
		return models.SendResult{}, fmt.Errorf("twilio: send %s: %w", msg.Channel, err)
	}

	return models.SendResult{
		MessageID: val(resp.Sid),
		To:        val(resp.To),
		Status:    fmt.Sprint(val(resp.Status)),
	}, nil
}

// FetchStatus looks a message up by SID.
func (s *Sender) FetchStatus(ctx context.Context, sid string) (*models.MessageStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := s.client.rest.Api.FetchMessage(sid, &openapi.FetchMessageParams{})
	if err != nil {
		if notFound(err) {
			return nil, types.ErrMessageNotFound
		}
		return nil, fmt.Errorf("twilio: fetch message: %w", err)
	}

	return &models.MessageStatus{
		SID:          val(resp.Sid),
		Status:       fmt.Sprint(val(resp.Status)),
		To:           val(resp.To),
		From:         val(resp.From),
		DateCreated:  parseDate(resp.DateCreated),
		DateSent:     parseDate(resp.DateSent),
		ErrorCode:    resp.ErrorCode,
		ErrorMessage: resp.ErrorMessage,
	}, nil
}

func notFound(err error) bool {
	var restErr *twclient.TwilioRestError
	if errors.As(err, &restErr) {
		return restErr.Status == 404
	}
	return false
}

func val[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// parseDate parses Twilio's RFC 1123 timestamps.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC1123Z, *s)
	if err != nil {
		return nil
	}
	return &t
}

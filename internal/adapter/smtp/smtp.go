// Package smtp delivers email through an SMTP relay.
package smtp

import (
	"context"
	"fmt"
	"strings"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type Sender struct {
	client *mail.Client
	cfg    Config
}

// New builds a client with opportunistic STARTTLS and PLAIN auth when credentials are set.
func New(cfg Config) (*Sender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: new client: %w", err)
	}

	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	return &Sender{client: client, cfg: cfg}, nil
}

func (s *Sender) Send(ctx context.Context, msg models.OutboundMessage) (models.SendResult, error) {
	m := mail.NewMsg()

	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return models.SendResult{}, fmt.Errorf("smtp: from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return models.SendResult{}, fmt.Errorf("smtp: to: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return models.SendResult{}, fmt.Errorf("smtp: send: %w", err)
	}

	var id string
	if ids := m.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		id = strings.Trim(ids[0], "<>")
	}

	return models.SendResult{
		MessageID: id,
		To:        msg.To,
		Status:    "sent",
	}, nil
}

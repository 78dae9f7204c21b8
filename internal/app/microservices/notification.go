package microservices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/niva/config"
	httpserver "github.com/Temutjin2k/niva/internal/adapter/http/server"
	"github.com/Temutjin2k/niva/internal/adapter/postgres"
	"github.com/Temutjin2k/niva/internal/adapter/rabbit"
	"github.com/Temutjin2k/niva/internal/adapter/smtp"
	"github.com/Temutjin2k/niva/internal/adapter/twilio"
	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/internal/service/notify"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	postgresclient "github.com/Temutjin2k/niva/pkg/postgres"
	rabbitclient "github.com/Temutjin2k/niva/pkg/rabbit"
)

var errNobodyReached = errors.New("no contact was reached")

type NotificationService struct {
	postgresDB *postgresclient.PostgreDB
	rabbitMQ   *rabbitclient.RabbitMQ
	broker     *rabbit.AlertBroker
	dispatcher *notify.Dispatcher
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewNotification(ctx context.Context, cfg config.Config, log logger.Logger) (*NotificationService, error) {
	db, err := postgresclient.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}

	rabbitMQ, err := rabbitclient.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to connect to rabbitmq", err)
		db.Close()
		return nil, err
	}

	broker := rabbit.NewAlertBroker(rabbitMQ, types.NotificationService.String(), log)
	if err := broker.Setup(ctx); err != nil {
		log.Error(ctx, "failed to setup alert queue", err)
		_ = rabbitMQ.Close(ctx)
		db.Close()
		return nil, err
	}

	senders, status, err := newSenders(ctx, cfg, log)
	if err != nil {
		_ = rabbitMQ.Close(ctx)
		db.Close()
		return nil, err
	}

	deliveryRepo := postgres.NewDeliveryRepo(db.Pool)
	dispatcher := notify.NewDispatcher(senders, status, deliveryRepo, notify.NewTemplates(cfg.Notification.Brand), cfg.Notification.SendDelay, log)

	server, err := httpserver.New(cfg, httpserver.Services{
		Notification: dispatcher,
	}, log)
	if err != nil {
		_ = rabbitMQ.Close(ctx)
		db.Close()
		return nil, err
	}

	return &NotificationService{
		postgresDB: db,
		rabbitMQ:   rabbitMQ,
		broker:     broker,
		dispatcher: dispatcher,
		httpServer: server,
		cfg:        cfg,
		log:        log,
	}, nil
}

// newSenders picks a sender per channel. Dry run logs every message instead of sending it;
// otherwise only channels with provider credentials are registered.
func newSenders(ctx context.Context, cfg config.Config, log logger.Logger) (map[types.Channel]notify.Sender, map[types.Channel]notify.StatusFetcher, error) {
	senders := make(map[types.Channel]notify.Sender)
	status := make(map[types.Channel]notify.StatusFetcher)

	if cfg.Notification.DryRun {
		logSender := notify.NewLogSender(log)
		senders[types.ChannelSMS] = logSender
		senders[types.ChannelWhatsApp] = logSender
		senders[types.ChannelEmail] = logSender
		log.Warn(ctx, "dry run enabled, messages are logged and not delivered")
		return senders, status, nil
	}

	if cfg.Twilio.Configured() {
		client := twilio.New(twilio.Config{
			AccountSID:     cfg.Twilio.AccountSID,
			AuthToken:      cfg.Twilio.AuthToken,
			PhoneNumber:    cfg.Twilio.PhoneNumber,
			WhatsAppNumber: cfg.Twilio.WhatsAppNumber,
		})

		sms := client.SMS()
		senders[types.ChannelSMS] = sms
		status[types.ChannelSMS] = sms

		if wa := client.WhatsApp(); wa != nil {
			senders[types.ChannelWhatsApp] = wa
			status[types.ChannelWhatsApp] = wa
		}
	} else {
		log.Warn(ctx, "twilio is not configured, sms and whatsapp are disabled")
	}

	if cfg.SMTP.Configured() {
		mailer, err := smtp.New(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
		if err != nil {
			log.Error(ctx, "failed to setup smtp client", err)
			return nil, nil, err
		}
		senders[types.ChannelEmail] = mailer
	} else {
		log.Warn(ctx, "smtp is not configured, email is disabled")
	}

	return senders, status, nil
}

func (s *NotificationService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.close(context.WithoutCancel(ctx))
		s.log.Info(ctx, "notification service closed")
	}()

	errCh := make(chan error, 2)
	s.httpServer.Run(ctx, errCh)

	go func() {
		if err := s.broker.ConsumeAlerts(ctx, s.handleAlert); err != nil {
			errCh <- err
		}
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "service started")
	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

// handleAlert fails the delivery only when nobody was reached, so a redelivery never messages
// a contact twice. An alert without recipients is dropped.
func (s *NotificationService) handleAlert(ctx context.Context, alert models.AlertRequest) error {
	if len(alert.Recipients) == 0 {
		return fmt.Errorf("alert %s has no recipients: %w", alert.ID, rabbit.ErrPermanent)
	}

	report := s.dispatcher.Dispatch(ctx, alert)
	if report.Sent == 0 && report.Failed > 0 {
		s.log.Warn(wrap.WithAction(ctx, types.ActionNotificationError), "no contact was reached", "kind", alert.Kind, "failed", report.Failed)
		return fmt.Errorf("%w: %d deliveries failed", errNobodyReached, report.Failed)
	}
	return nil
}

func (s *NotificationService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Error(ctx, "failed to shutdown HTTP server", err)
	}

	if err := s.rabbitMQ.Close(ctx); err != nil {
		s.log.Error(ctx, "failed to close rabbitmq connection", err)
	}

	s.postgresDB.Close()
}

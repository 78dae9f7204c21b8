package microservices

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/niva/config"
	httpserver "github.com/Temutjin2k/niva/internal/adapter/http/server"
	wshandler "github.com/Temutjin2k/niva/internal/adapter/http/ws"
	locationiq "github.com/Temutjin2k/niva/internal/adapter/locationIQ"
	"github.com/Temutjin2k/niva/internal/adapter/postgres"
	"github.com/Temutjin2k/niva/internal/adapter/rabbit"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/internal/service/auth"
	"github.com/Temutjin2k/niva/internal/service/companion"
	"github.com/Temutjin2k/niva/internal/service/contacts"
	"github.com/Temutjin2k/niva/internal/service/presets"
	"github.com/Temutjin2k/niva/internal/service/routes"
	"github.com/Temutjin2k/niva/pkg/logger"
	postgresclient "github.com/Temutjin2k/niva/pkg/postgres"
	rabbitclient "github.com/Temutjin2k/niva/pkg/rabbit"
	"github.com/Temutjin2k/niva/pkg/trm"
	ws "github.com/Temutjin2k/niva/pkg/wsHub"
)

type CompanionService struct {
	postgresDB *postgresclient.PostgreDB
	rabbitMQ   *rabbitclient.RabbitMQ
	hub        *ws.ConnectionHub
	engine     *companion.Service
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewCompanion(ctx context.Context, cfg config.Config, log logger.Logger) (*CompanionService, error) {
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

	broker := rabbit.NewAlertBroker(rabbitMQ, types.CompanionService.String(), log)
	if err := broker.Setup(ctx); err != nil {
		log.Error(ctx, "failed to setup alert exchange", err)
		_ = rabbitMQ.Close(ctx)
		db.Close()
		return nil, err
	}

	// repositories
	var (
		userRepo     = postgres.NewUserRepo(db.Pool)
		contactRepo  = postgres.NewContactRepo(db.Pool)
		routeRepo    = postgres.NewRouteRepo(db.Pool)
		presetRepo   = postgres.NewPresetRepo(db.Pool)
		sessionRepo  = postgres.NewSessionRepo(db.Pool)
		eventRepo    = postgres.NewSessionEventRepo(db.Pool)
		locationRepo = postgres.NewLocationRepo(db.Pool)
		txManager    = trm.New(db.Pool)
	)

	// reverse geocoding is optional
	var geocoder companion.GeoCoder
	if cfg.LocationIQ.APIKey != "" {
		geocoder = locationiq.New(cfg.LocationIQ.APIKey, cfg.LocationIQ.Timeout)
	}

	hub := ws.NewConnHub(types.CompanionService.String(), log)
	notifier := wshandler.NewNotifier(hub)

	policy := companion.Policy{
		CheckInWindow:   cfg.Companion.CheckInWindow,
		SafetyWindow:    cfg.Companion.SafetyWindow,
		SafetyExtension: cfg.Companion.SafetyExtension,
		Tick:            cfg.Companion.Tick,
		MaxDuration:     cfg.Companion.MaxDuration,
	}

	// services
	engine := companion.New(sessionRepo, eventRepo, locationRepo, contactRepo, routeRepo, presetRepo, userRepo, broker, notifier, geocoder, txManager, policy, log)
	contactSvc := contacts.New(contactRepo, log)
	routeSvc := routes.New(routeRepo, log)
	presetSvc := presets.New(presetRepo, contactRepo, routeRepo, log)

	// tokens are only validated here, so no refresh repository is needed
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, userRepo, nil, nil, cfg.Auth.RefreshTokenTTL, cfg.Auth.AccessTokenTTL, log)
	authSvc := auth.NewAuthService(userRepo, tokenSvc, log)

	sessionWS := wshandler.NewSessionWS(hub, authSvc, engine, wshandler.Options{
		AuthTimeout: cfg.Companion.WSAuthTimeout,
		PingPeriod:  cfg.Companion.WSPingPeriod,
		PongWait:    cfg.Companion.WSPongWait,
	}, log)

	server, err := httpserver.New(cfg, httpserver.Services{
		RoleChecker: authSvc,
		Contacts:    contactSvc,
		Routes:      routeSvc,
		Presets:     presetSvc,
		Sessions:    engine,
		SessionWS:   sessionWS,
	}, log)
	if err != nil {
		hub.Close()
		_ = rabbitMQ.Close(ctx)
		db.Close()
		return nil, err
	}

	return &CompanionService{
		postgresDB: db,
		rabbitMQ:   rabbitMQ,
		hub:        hub,
		engine:     engine,
		httpServer: server,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *CompanionService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.close(context.WithoutCancel(ctx))
		s.log.Info(ctx, "companion service closed")
	}()

	errCh := make(chan error, 2)
	s.httpServer.Run(ctx, errCh)

	go func() {
		if err := s.engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
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

func (s *CompanionService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Error(ctx, "failed to shutdown HTTP server", err)
	}

	s.hub.Close()

	if err := s.rabbitMQ.Close(ctx); err != nil {
		s.log.Error(ctx, "failed to close rabbitmq connection", err)
	}

	s.postgresDB.Close()
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/niva/config"
	"github.com/Temutjin2k/niva/internal/adapter/http/handler"
	"github.com/Temutjin2k/niva/internal/adapter/http/middleware"
	wshandler "github.com/Temutjin2k/niva/internal/adapter/http/ws"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
)

const serverIPAddress = "%s:%s"

// Services are the dependencies of the HTTP API. Only those of the running mode are required.
type Services struct {
	Auth         handler.AuthService
	RoleChecker  middleware.AuthService
	Contacts     handler.ContactService
	Routes       handler.RouteService
	Presets      handler.PresetService
	Sessions     handler.SessionService
	SessionWS    *wshandler.SessionWS
	Notification handler.NotificationService
}

type API struct {
	mode    types.ServiceMode
	mux     *http.ServeMux
	server  *http.Server
	routes  *handlers // routes/handlers
	m       *middleware.Middleware
	limiter *middleware.RateLimiter

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health       *handler.Health
	auth         *handler.Auth
	contacts     *handler.Contacts
	savedRoutes  *handler.Routes
	presets      *handler.Presets
	session      *handler.Session
	sessionWS    *wshandler.SessionWS
	notification *handler.Notification
}

func New(cfg config.Config, services Services, logger logger.Logger) (*API, error) {
	var addr string
	handlers := &handlers{
		health: handler.NewHealth(cfg.Mode.String(), logger),
	}
	api := &API{
		mode: cfg.Mode,
		mux:  http.NewServeMux(),
		cfg:  cfg,
		log:  logger,
	}

	switch cfg.Mode {
	case types.AuthService:
		if services.Auth == nil || services.RoleChecker == nil {
			return nil, errors.New("auth service is required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.AuthService)
		handlers.auth = handler.NewAuth(services.Auth, logger)
	case types.CompanionService:
		if services.RoleChecker == nil || services.Sessions == nil || services.SessionWS == nil {
			return nil, errors.New("session services are required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.CompanionService)
		handlers.contacts = handler.NewContacts(services.Contacts, logger)
		handlers.savedRoutes = handler.NewRoutes(services.Routes, logger)
		handlers.presets = handler.NewPresets(services.Presets, logger)
		handlers.session = handler.NewSession(services.Sessions, logger)
		handlers.sessionWS = services.SessionWS
	case types.NotificationService:
		if services.Notification == nil {
			return nil, errors.New("notification service is required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.NotificationService)
		handlers.notification = handler.NewNotification(services.Notification, logger)
		api.limiter = middleware.NewRateLimiter(cfg.Notification.RateLimit, cfg.Notification.RateLimitWindow).
			TrustProxy(cfg.Notification.TrustProxy)
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	api.routes = handlers
	api.addr = addr
	api.m = middleware.NewMiddleware(services.RoleChecker, logger)

	setupRoutes(api.mux, handlers, api.m, cfg, logger)

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

// Handler returns the full middleware chain, used by tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	if a.limiter != nil {
		go a.limiter.Cleanup(ctx)
	}

	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	var h http.Handler = a.mux

	switch a.mode {
	case types.NotificationService:
		h = a.m.RateLimit(a.limiter, "/api/")(h)
	default:
		h = a.m.Auth(h)
	}

	h = a.m.Metrics(a.mode.String())(h)
	h = a.m.Logging(h)
	h = a.m.RequestID(h)
	return a.m.Recover(h)
}

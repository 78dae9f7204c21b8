package server

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/niva/config"
	_ "github.com/Temutjin2k/niva/docs"
	"github.com/Temutjin2k/niva/internal/adapter/http/middleware"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, cfg config.Config, log logger.Logger) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux, cfg.Mode, log)
	setupMetricsRoute(mux)

	switch cfg.Mode {
	case types.AuthService:
		setupAuthRoutes(mux, routes)
	case types.CompanionService:
		setupCompanionRoutes(mux, routes, m)
	case types.NotificationService:
		setupNotificationRoutes(mux, routes, m, cfg.Notification.APIKey)
	}
}

func setupAuthRoutes(mux *http.ServeMux, routes *handlers) {
	mux.HandleFunc("POST /auth/register", routes.auth.Register)
	mux.HandleFunc("POST /auth/login", routes.auth.Login)
	mux.HandleFunc("POST /auth/refresh", routes.auth.Refresh)
	mux.HandleFunc("GET /auth/me", routes.auth.Profile)
}

// setupCompanionRoutes setups routes for companion service
func setupCompanionRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	user := func(h http.HandlerFunc) http.Handler {
		return m.RequireRoles(h, types.UserRoleUser, types.AdminRole)
	}

	// Trusted contacts
	mux.Handle("GET /contacts", user(routes.contacts.List))
	mux.Handle("POST /contacts", user(routes.contacts.Create))
	mux.Handle("PUT /contacts/{contact_id}", user(routes.contacts.Update))
	mux.Handle("DELETE /contacts/{contact_id}", user(routes.contacts.Delete))

	// Saved routes
	mux.Handle("GET /routes", user(routes.savedRoutes.List))
	mux.Handle("POST /routes", user(routes.savedRoutes.Create))
	mux.Handle("GET /routes/{route_id}", user(routes.savedRoutes.Get))
	mux.Handle("DELETE /routes/{route_id}", user(routes.savedRoutes.Delete))

	// Custom sessions
	mux.Handle("GET /presets", user(routes.presets.List))
	mux.Handle("POST /presets", user(routes.presets.Create))
	mux.Handle("DELETE /presets/{preset_id}", user(routes.presets.Delete))

	// Companion sessions
	mux.Handle("POST /sessions", user(routes.session.Start))
	mux.Handle("GET /sessions/active", user(routes.session.Active))
	mux.Handle("GET /sessions/{session_id}", user(routes.session.Get))
	mux.Handle("POST /sessions/{session_id}/check-in", user(routes.session.CheckIn))
	mux.Handle("POST /sessions/{session_id}/safety-ok", user(routes.session.ConfirmSafe))
	mux.Handle("POST /sessions/{session_id}/ping", user(routes.session.Ping))
	mux.Handle("POST /sessions/{session_id}/location", user(routes.session.UpdateLocation))
	mux.Handle("POST /sessions/{session_id}/end", user(routes.session.End))
	mux.Handle("GET /sessions/{session_id}/events", user(routes.session.Events))

	// WebSocket authenticates with its first message
	mux.HandleFunc("GET /ws/users/{user_id}", routes.sessionWS.Serve)
}

// setupNotificationRoutes setups routes for notification service
func setupNotificationRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, apiKey string) {
	key := m.APIKey(apiKey)
	protected := func(h http.HandlerFunc) http.Handler {
		return key(h)
	}

	mux.HandleFunc("GET /api/status", routes.notification.APIStatus)

	mux.Handle("POST /api/sms/send", protected(routes.notification.SendSMS))
	mux.Handle("POST /api/sms/send-bulk", protected(routes.notification.SendBulkSMS))
	mux.Handle("GET /api/sms/status/{message_id}", protected(routes.notification.SMSStatus))

	mux.Handle("POST /api/whatsapp/send", protected(routes.notification.SendWhatsApp))
	mux.Handle("POST /api/whatsapp/send-bulk", protected(routes.notification.SendBulkWhatsApp))
	mux.Handle("GET /api/whatsapp/status/{message_id}", protected(routes.notification.WhatsAppStatus))

	mux.Handle("POST /api/email/send", protected(routes.notification.SendEmail))
	mux.Handle("POST /api/email/send-bulk", protected(routes.notification.SendBulkEmail))
}

// setupSwaggerRoutes configures Swagger UI endpoints based on service mode
func setupSwaggerRoutes(mux *http.ServeMux, mode types.ServiceMode, log logger.Logger) {
	var instanceName string

	switch mode {
	case types.AuthService:
		instanceName = "auth"
	case types.CompanionService:
		instanceName = "companion"
	case types.NotificationService:
		instanceName = "notification"
	default:
		log.Warn(wrap.WithAction(context.Background(), "setup swagger routes"), "unknown service mode for swagger setup", "mode", mode)
		return
	}

	// Swagger UI endpoint
	swaggerURL := httpSwagger.InstanceName(instanceName)
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}

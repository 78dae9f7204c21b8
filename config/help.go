package config

import (
	"flag"
	"fmt"
	"strings"
)

const HelpMessage = `
Niva - personal safety companion backend

Usage:
  niva -mode=<service> [-config-path=config.yaml]
  niva -help

Modes:
  auth-service           registration, login and JWT issuing
  companion-service      contacts, routes, presets and companion sessions
  notification-service   SMS, WhatsApp and email delivery to trusted contacts

Flags:
  -mode          service to run (required)
  -config-path   path to the config yaml file (default: config.yaml)
  -help          show this message

Every key of the yaml file can be overridden by an environment variable,
for example database.host -> DATABASE_HOST.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the configuration with secrets redacted.
func PrintConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	var b strings.Builder
	row := func(k string, v any) {
		fmt.Fprintf(&b, "  %-28s %v\n", k, v)
	}

	b.WriteString("Configuration:\n")
	row("mode", cfg.Mode)
	row("log level", cfg.LogLevel)
	row("database", fmt.Sprintf("%s@%s:%s/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	row("database password", redact(cfg.Database.Password))
	row("rabbitmq", fmt.Sprintf("%s@%s:%s", cfg.RabbitMQ.User, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port))
	row("auth port", cfg.Services.AuthService)
	row("companion port", cfg.Services.CompanionService)
	row("notification port", cfg.Services.NotificationService)
	row("jwt secret", redact(cfg.Auth.JWTSecret))
	row("access / refresh ttl", fmt.Sprintf("%s / %s", cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL))
	row("check-in / safety window", fmt.Sprintf("%s / %s", cfg.Companion.CheckInWindow, cfg.Companion.SafetyWindow))
	row("notification api key", redact(cfg.Notification.APIKey))
	row("notification dry run", cfg.Notification.DryRun)
	row("notification send delay", cfg.Notification.SendDelay)
	row("rate limit", fmt.Sprintf("%d per %s", cfg.Notification.RateLimit, cfg.Notification.RateLimitWindow))
	row("trust x-forwarded-for", cfg.Notification.TrustProxy)
	row("twilio configured", cfg.Twilio.Configured())
	row("whatsapp configured", cfg.Twilio.Configured() && cfg.Twilio.WhatsAppNumber != "")
	row("smtp configured", cfg.SMTP.Configured())
	row("locationiq configured", cfg.LocationIQ.APIKey != "")

	fmt.Print(b.String())
}

func redact(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "****"
}

package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/configparser"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode: auth-service, companion-service or notification-service")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
	ErrInvalidMode     = errors.New("invalid mode")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode     types.ServiceMode
		LogLevel string `env:"LOG_LEVEL" envDefault:"DEBUG"`

		Database     DatabaseConfig
		RabbitMQ     RabbitMQConfig
		Services     ServicesConfig
		Auth         Auth
		Companion    CompanionConfig
		Notification NotificationConfig
		Twilio       TwilioConfig
		SMTP         SMTPConfig
		LocationIQ   LocationIQConfig
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" envDefault:"localhost"`
		Port     string `env:"DATABASE_PORT" envDefault:"5432"`
		User     string `env:"DATABASE_USER" envDefault:"niva_user"`
		Password string `env:"DATABASE_PASSWORD" envDefault:"niva_pass"`
		Database string `env:"DATABASE_DATABASE" envDefault:"niva_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" envDefault:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" envDefault:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" envDefault:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" envDefault:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" envDefault:"localhost"`
		Port     string `env:"RABBITMQ_PORT" envDefault:"5672"`
		User     string `env:"RABBITMQ_USER" envDefault:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	}

	ServicesConfig struct {
		AuthService         string `env:"SERVICES_AUTH_SERVICE" envDefault:"3005"`
		CompanionService    string `env:"SERVICES_COMPANION_SERVICE" envDefault:"3000"`
		NotificationService string `env:"SERVICES_NOTIFICATION_SERVICE" envDefault:"3001"`
	}

	Auth struct {
		AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"15m"`
		RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`
		JWTSecret       string        `env:"AUTH_JWT_SECRET" envDefault:"supersecretkey"`
	}

	// CompanionConfig tunes the escalation state machine.
	CompanionConfig struct {
		CheckInWindow   time.Duration `env:"COMPANION_CHECK_IN_WINDOW" envDefault:"3m"`
		SafetyWindow    time.Duration `env:"COMPANION_SAFETY_WINDOW" envDefault:"2m"`
		SafetyExtension time.Duration `env:"COMPANION_SAFETY_EXTENSION" envDefault:"5m"`
		Tick            time.Duration `env:"COMPANION_TICK" envDefault:"1s"`
		MaxDuration     int           `env:"COMPANION_MAX_DURATION" envDefault:"1440"` // minutes

		WSAuthTimeout time.Duration `env:"COMPANION_WS_AUTH_TIMEOUT" envDefault:"5s"`
		WSPingPeriod  time.Duration `env:"COMPANION_WS_PING_PERIOD" envDefault:"30s"`
		WSPongWait    time.Duration `env:"COMPANION_WS_PONG_WAIT" envDefault:"60s"`
	}

	NotificationConfig struct {
		APIKey          string        `env:"NOTIFICATION_API_KEY"`
		DryRun          bool          `env:"NOTIFICATION_DRY_RUN" envDefault:"false"`
		SendDelay       time.Duration `env:"NOTIFICATION_SEND_DELAY" envDefault:"1s"`
		RateLimit       int           `env:"NOTIFICATION_RATE_LIMIT" envDefault:"100"`
		RateLimitWindow time.Duration `env:"NOTIFICATION_RATE_LIMIT_WINDOW" envDefault:"15m"`
		Brand           string        `env:"NOTIFICATION_BRAND" envDefault:"Niva"`
		TrustProxy      bool          `env:"NOTIFICATION_TRUST_PROXY" envDefault:"false"`
	}

	TwilioConfig struct {
		AccountSID     string `env:"TWILIO_ACCOUNT_SID"`
		AuthToken      string `env:"TWILIO_AUTH_TOKEN"`
		PhoneNumber    string `env:"TWILIO_PHONE_NUMBER"`
		WhatsAppNumber string `env:"TWILIO_WHATSAPP_NUMBER"`
	}

	SMTPConfig struct {
		Host     string `env:"SMTP_HOST"`
		Port     int    `env:"SMTP_PORT" envDefault:"587"`
		Username string `env:"SMTP_USERNAME"`
		Password string `env:"SMTP_PASSWORD"`
		From     string `env:"SMTP_FROM"`
		FromName string `env:"SMTP_FROM_NAME" envDefault:"Niva Safety"`
	}

	LocationIQConfig struct {
		APIKey  string        `env:"LOCATIONIQ_API_KEY"`
		Timeout time.Duration `env:"LOCATIONIQ_TIMEOUT" envDefault:"5s"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// PoolLimits tunes the pgx pool.
func (c DatabaseConfig) PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// Configured reports whether Twilio credentials are present.
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

// Configured reports whether an SMTP server is set.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	// Parsing flags
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	return cfg, nil
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	mode := types.ServiceMode(*modeFlag)
	switch mode {
	case types.AuthService, types.CompanionService, types.NotificationService:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	cfg.Mode = mode

	return nil
}

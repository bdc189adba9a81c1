package config

import (
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Data backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Authentication providers for email/password accounts.
const (
	AuthProviderLocal  = "local"
	AuthProviderRemote = "remote"
)

// Notifier kinds.
const (
	NotifierLog   = "log"
	NotifierKafka = "kafka"
	NotifierAMQP  = "amqp"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	DataBackend   string
	DatabaseURL   string
	EnableDBCheck bool
	SQLiteDBPath  string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	AuthProvider          string
	IdentityToolkitAPIKey string

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendBaseURL    string

	LoginRateLimit string
	PaymentDelay   time.Duration

	Notifier     string
	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("DATA_BACKEND", BackendMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("SQLITE_DB_PATH", "data/billing.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "billing-dashboard")
	v.SetDefault("AUTH_PROVIDER", AuthProviderLocal)
	v.SetDefault("IDENTITY_TOOLKIT_API_KEY", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("PAYMENT_DELAY", "2s")
	v.SetDefault("NOTIFIER", NotifierLog)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "billing_notices")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "billing")
	v.SetDefault("AMQP_QUEUE", "billing_notices")
	v.SetDefault("POSTHOG_API_KEY", "")

	v.AutomaticEnv()

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		DataBackend:           strings.ToLower(v.GetString("DATA_BACKEND")),
		DatabaseURL:           v.GetString("PGSQL_URL"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		SQLiteDBPath:          v.GetString("SQLITE_DB_PATH"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTIssuer:             v.GetString("JWT_ISSUER"),
		AuthProvider:          strings.ToLower(v.GetString("AUTH_PROVIDER")),
		IdentityToolkitAPIKey: v.GetString("IDENTITY_TOOLKIT_API_KEY"),
		GoogleClientID:        v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:    v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:     v.GetString("GOOGLE_REDIRECT_URL"),
		FrontendBaseURL:       v.GetString("FRONTEND_BASE_URL"),
		LoginRateLimit:        v.GetString("LOGIN_RATE_LIMIT"),
		Notifier:              strings.ToLower(v.GetString("NOTIFIER")),
		KafkaBrokers:          splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:            v.GetString("KAFKA_TOPIC"),
		AMQPURL:               v.GetString("AMQP_URL"),
		AMQPExchange:          v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:             v.GetString("AMQP_QUEUE"),
		PosthogAPIKey:         v.GetString("POSTHOG_API_KEY"),
	}

	// Load JWT Expiry Duration (e.g., "60m", "1h")
	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil || jwtExpiryDuration <= 0 {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	paymentDelayStr := v.GetString("PAYMENT_DELAY")
	paymentDelay, err := time.ParseDuration(paymentDelayStr)
	if err != nil || paymentDelay < 0 {
		paymentDelay = 2 * time.Second
		log.Printf("Warning: Invalid value for PAYMENT_DELAY ('%s'). Defaulting to %s.\n", paymentDelayStr, paymentDelay)
	}
	cfg.PaymentDelay = paymentDelay

	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: Google OAuth settings incomplete. Google sign-in will not function.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "PGSQL_URL is required when using postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v",
			c.DataBackend, []string{BackendMemory, BackendSQLite, BackendPostgres}))
	}

	switch c.AuthProvider {
	case AuthProviderLocal:
	case AuthProviderRemote:
		if c.IdentityToolkitAPIKey == "" {
			problems = append(problems, "IDENTITY_TOOLKIT_API_KEY is required when AUTH_PROVIDER is remote")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid auth provider '%s': must be local or remote", c.AuthProvider))
	}

	if _, err := limiter.NewRateFromFormatted(c.LoginRateLimit); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOGIN_RATE_LIMIT '%s': %v", c.LoginRateLimit, err))
	}

	if c.IsProduction && c.JWTSecret == defaultJWTSecret {
		problems = append(problems, "JWT_SECRET must be set in production")
	}

	switch c.Notifier {
	case NotifierLog:
	case NotifierKafka:
		if len(c.KafkaBrokers) == 0 {
			problems = append(problems, "KAFKA_BROKERS cannot be empty when NOTIFIER is kafka")
		}
		if c.KafkaTopic == "" {
			problems = append(problems, "KAFKA_TOPIC cannot be empty when NOTIFIER is kafka")
		}
	case NotifierAMQP:
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil || c.AMQPURL == "" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s'", c.AMQPURL))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when NOTIFIER is amqp")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when NOTIFIER is amqp")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid notifier '%s': must be one of %v",
			c.Notifier, []string{NotifierLog, NotifierKafka, NotifierAMQP}))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// JWT / sessions
	JWTSecret                  string
	JWTExpiryDuration          time.Duration
	JWTIssuer                  string
	RefreshTokenExpiryDuration time.Duration

	// Inbound API protection
	APIKey            string
	AllowedUserAgents []string
	CORSOrigins       []string
	RateLimitFormat   string // ulule/limiter formatted rate, e.g. "50-M"
	RateLimitMaxKeys  int

	// Exchange-rate ingestion
	ExchangeRateAPIURL    string
	ExchangeRateAPIKey    string
	ExchangeRateCurrencies []string // explicit list, or ["ALL"] for catalog-driven
	RecentWindow           time.Duration
	IngestInterval         time.Duration
	RateRetention          time.Duration

	// Janitor
	JanitorInterval          time.Duration
	UnverifiedUserMaxAge     time.Duration
	UnverifiedUserDeleteBatch int

	// Verification codes
	VerificationCodeTTL         time.Duration
	VerificationCodeMaxAttempts int

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailFromName  string

	// Analytics
	PosthogAPIKey string

	// External OAuth providers
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURL    string
	FacebookClientID     string
	FacebookClientSecret string
	FacebookRedirectURL  string
	AppleClientID        string // audience expected in Apple identity tokens
	FrontendBaseURL      string

	// Database connection policy
	DBConnectAttempts    int
	DBConnectInitialDelay time.Duration
	DBBreakerThreshold   int
	DBBreakerCoolDown    time.Duration
	DBMaxConns           int32
	DBMinConns           int32
	DBMaxConnIdleTime    time.Duration
}

// LoadConfig loads configuration from environment variables and .env if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)

	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "divisando-backend")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h") // 7 days

	viper.SetDefault("API_KEY", "")
	viper.SetDefault("API_ALLOWED_USER_AGENTS", "DivisandoApp/1.0")
	viper.SetDefault("API_CORS_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT_FORMAT", "50-M")
	viper.SetDefault("RATE_LIMIT_MAX_KEYS", 5000)

	viper.SetDefault("EXCHANGE_RATE_API_URL", "")
	viper.SetDefault("EXCHANGE_RATE_API_KEY", "")
	viper.SetDefault("EXCHANGE_RATE_CURRENCIES", "")
	viper.SetDefault("EXCHANGE_RATE_RECENT_WINDOW", "1h")
	viper.SetDefault("EXCHANGE_RATE_INTERVAL", "1h")
	viper.SetDefault("EXCHANGE_RATE_RETENTION", "2160h") // 90 days

	viper.SetDefault("JANITOR_INTERVAL", "30m")
	viper.SetDefault("UNVERIFIED_USER_MAX_AGE", "15m")
	viper.SetDefault("UNVERIFIED_USER_DELETE_BATCH", 100)

	viper.SetDefault("VERIFICATION_CODE_TTL", "5m")
	viper.SetDefault("VERIFICATION_CODE_MAX_ATTEMPTS", 5)

	viper.SetDefault("MAILGUN_DOMAIN", "")
	viper.SetDefault("MAILGUN_API_KEY", "")
	viper.SetDefault("MAIL_FROM_NAME", "Divisando")

	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FACEBOOK_CLIENT_ID", "")
	viper.SetDefault("FACEBOOK_CLIENT_SECRET", "")
	viper.SetDefault("FACEBOOK_REDIRECT_URL", "")
	viper.SetDefault("APPLE_CLIENT_ID", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")

	viper.SetDefault("DB_CONNECT_ATTEMPTS", 5)
	viper.SetDefault("DB_CONNECT_INITIAL_DELAY", "3s")
	viper.SetDefault("DB_BREAKER_THRESHOLD", 3)
	viper.SetDefault("DB_BREAKER_COOLDOWN", "1m")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIN_CONNS", 2)
	viper.SetDefault("DB_MAX_CONN_IDLE_TIME", "1m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.RefreshTokenExpiryDuration = durationOrDefault("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)

	cfg.APIKey = viper.GetString("API_KEY")
	if cfg.APIKey == "" {
		log.Println("Warning: API_KEY not set. The API-key gate will reject every request.")
	}
	cfg.AllowedUserAgents = splitList(viper.GetString("API_ALLOWED_USER_AGENTS"))
	cfg.CORSOrigins = splitList(viper.GetString("API_CORS_ORIGINS"))
	cfg.RateLimitFormat = viper.GetString("RATE_LIMIT_FORMAT")
	cfg.RateLimitMaxKeys = viper.GetInt("RATE_LIMIT_MAX_KEYS")

	cfg.ExchangeRateAPIURL = viper.GetString("EXCHANGE_RATE_API_URL")
	cfg.ExchangeRateAPIKey = viper.GetString("EXCHANGE_RATE_API_KEY")
	if cfg.ExchangeRateAPIURL == "" || cfg.ExchangeRateAPIKey == "" {
		log.Println("Warning: EXCHANGE_RATE_API_URL or EXCHANGE_RATE_API_KEY not set. Rate ingestion will not function.")
	}
	cfg.ExchangeRateCurrencies = splitUpperList(viper.GetString("EXCHANGE_RATE_CURRENCIES"))
	if len(cfg.ExchangeRateCurrencies) > 10 {
		log.Println("Warning: EXCHANGE_RATE_CURRENCIES has more than 10 currencies. This may exceed your quote API plan limits.")
	}
	cfg.RecentWindow = durationOrDefault("EXCHANGE_RATE_RECENT_WINDOW", time.Hour)
	if cfg.RecentWindow < time.Hour {
		log.Println("Warning: EXCHANGE_RATE_RECENT_WINDOW is under 1h. This may cause over-querying and provider rate limiting.")
	}
	cfg.IngestInterval = durationOrDefault("EXCHANGE_RATE_INTERVAL", time.Hour)
	cfg.RateRetention = durationOrDefault("EXCHANGE_RATE_RETENTION", 90*24*time.Hour)

	cfg.JanitorInterval = durationOrDefault("JANITOR_INTERVAL", 30*time.Minute)
	cfg.UnverifiedUserMaxAge = durationOrDefault("UNVERIFIED_USER_MAX_AGE", 15*time.Minute)
	cfg.UnverifiedUserDeleteBatch = viper.GetInt("UNVERIFIED_USER_DELETE_BATCH")

	cfg.VerificationCodeTTL = durationOrDefault("VERIFICATION_CODE_TTL", 5*time.Minute)
	cfg.VerificationCodeMaxAttempts = viper.GetInt("VERIFICATION_CODE_MAX_ATTEMPTS")

	cfg.MailgunDomain = viper.GetString("MAILGUN_DOMAIN")
	cfg.MailgunAPIKey = viper.GetString("MAILGUN_API_KEY")
	cfg.MailFromName = viper.GetString("MAIL_FROM_NAME")
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		log.Println("Warning: MAILGUN_DOMAIN or MAILGUN_API_KEY not set. Mail dispatch will not function.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FacebookClientID = viper.GetString("FACEBOOK_CLIENT_ID")
	cfg.FacebookClientSecret = viper.GetString("FACEBOOK_CLIENT_SECRET")
	cfg.FacebookRedirectURL = viper.GetString("FACEBOOK_REDIRECT_URL")
	cfg.AppleClientID = viper.GetString("APPLE_CLIENT_ID")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google sign-in will not function.")
	}
	if cfg.FacebookClientID == "" {
		log.Println("Warning: FACEBOOK_CLIENT_ID not set. Facebook sign-in will not function.")
	}

	cfg.DBConnectAttempts = viper.GetInt("DB_CONNECT_ATTEMPTS")
	cfg.DBConnectInitialDelay = durationOrDefault("DB_CONNECT_INITIAL_DELAY", 3*time.Second)
	cfg.DBBreakerThreshold = viper.GetInt("DB_BREAKER_THRESHOLD")
	cfg.DBBreakerCoolDown = durationOrDefault("DB_BREAKER_COOLDOWN", time.Minute)
	cfg.DBMaxConns = viper.GetInt32("DB_MAX_CONNS")
	cfg.DBMinConns = viper.GetInt32("DB_MIN_CONNS")
	cfg.DBMaxConnIdleTime = durationOrDefault("DB_MAX_CONN_IDLE_TIME", time.Minute)

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s (%q). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitUpperList(raw string) []string {
	items := splitList(raw)
	for i, item := range items {
		items[i] = strings.ToUpper(item)
	}
	return items
}

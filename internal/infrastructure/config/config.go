package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	// PublicBaseURL is the externally reachable address used in emailed
	// links and OAuth redirects.
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`

	// SessionTTL bounds the durable (remember-me) session scope.
	SessionTTL time.Duration `env:"SESSION_TTL, default=720h"`

	BcryptCost    int `env:"BCRYPT_COST,    default=12"`
	NotifyWorkers int `env:"NOTIFY_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
	OAuth OAuthConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@localhost"`
}

// OAuthConfig carries credentials for the configured external identity
// provider. A provider with an empty client id is not registered.
type OAuthConfig struct {
	Google OAuthProviderConfig `env:", prefix=OAUTH_GOOGLE_"`
}

type OAuthProviderConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	AuthURL      string `env:"AUTH_URL,     default=https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL     string `env:"TOKEN_URL,    default=https://oauth2.googleapis.com/token"`
	UserInfoURL  string `env:"USERINFO_URL, default=https://openidconnect.googleapis.com/v1/userinfo"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

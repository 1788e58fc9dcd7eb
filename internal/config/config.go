package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/blog/pkg/config"
)

type RegistrationMode string

const (
	RegistrationAdmin  RegistrationMode = "admin"
	RegistrationPublic RegistrationMode = "public"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret    []byte
	JWTAlgorithm string
	TokenTTL     time.Duration
	CookieSecure bool

	GoogleClientID string
	GoogleJWKSURL  string
	GoogleTimeout  time.Duration

	RegistrationMode RegistrationMode
	UniqueUsernames  bool
	AllowSelfRead    bool
	EmailDomain      string

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CSRFEnabled bool
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("notice: cannot read .env: %v", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "blog"),
		ServerPort:  pkgconfig.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		DatabaseDriver: pkgconfig.EnvDefault("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		JWTAlgorithm: pkgconfig.EnvDefault("JWT_ALGORITHM", "HS256"),
		TokenTTL:     time.Duration(pkgconfig.EnvIntDefault("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		CookieSecure: pkgconfig.EnvBoolDefault("COOKIE_SECURE", true),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleJWKSURL:  pkgconfig.EnvDefault("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs"),
		GoogleTimeout:  time.Duration(pkgconfig.EnvIntDefault("GOOGLE_TIMEOUT_SECONDS", 5)) * time.Second,

		RegistrationMode: RegistrationMode(strings.ToLower(pkgconfig.EnvDefault("REGISTRATION_MODE", string(RegistrationAdmin)))),
		UniqueUsernames:  pkgconfig.EnvBoolDefault("UNIQUE_USERNAMES", false),
		AllowSelfRead:    pkgconfig.EnvBoolDefault("ALLOW_SELF_READ", false),
		EmailDomain:      pkgconfig.EnvDefault("EMAIL_DOMAIN", "gmail.com"),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   pkgconfig.EnvDefault("KAFKA_TOPIC", "blog_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgconfig.EnvDefault("ES_INDEX", "posts"),

		CSRFEnabled: pkgconfig.EnvBoolDefault("CSRF_ENABLED", false),
	}

	if err := pkgconfig.NonEmpty(string(cfg.JWTSecret), "JWT_SECRET"); err != nil {
		return Config{}, err
	}
	if err := pkgconfig.NonEmpty(cfg.DatabaseURL, "DATABASE_URL"); err != nil {
		return Config{}, err
	}
	switch cfg.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return Config{}, fmt.Errorf("unsupported JWT_ALGORITHM %q", cfg.JWTAlgorithm)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}
	switch cfg.RegistrationMode {
	case RegistrationAdmin, RegistrationPublic:
	default:
		return Config{}, fmt.Errorf("unsupported REGISTRATION_MODE %q", cfg.RegistrationMode)
	}

	return cfg, nil
}

package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	IdPBaseURL      string // Required: identity provider base URL
	IdPRealm        string // Required: realm name
	IdPClientID     string // Required: OAuth2 client id
	IdPClientSecret string // Required for confidential clients
	IssuerURI       string // Optional: issuer for token validation (default: <base>/realms/<realm>)
	JWKSURL         string // Optional: explicit JWKS URL (default: discovered from issuer)

	EmployeeServiceURL string // Required: employee service base URL

	CookieSecure   bool   // Optional: Secure attribute on session cookies (default: true)
	CookieSameSite string // Optional: strict, lax, none (default: strict)

	SettlingDelay time.Duration // Optional: registration settling delay (default: 2s)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8081)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		IdPBaseURL:          os.Getenv("IDP_BASE_URL"),
		IdPRealm:            getEnvOrDefault("IDP_REALM", "workforce"),
		IdPClientID:         os.Getenv("IDP_CLIENT_ID"),
		IdPClientSecret:     os.Getenv("IDP_CLIENT_SECRET"),
		IssuerURI:           os.Getenv("IDP_ISSUER_URI"),
		JWKSURL:             os.Getenv("IDP_JWKS_URL"),
		EmployeeServiceURL:  os.Getenv("EMPLOYEE_SERVICE_URL"),
		CookieSecure:        getEnvBoolOrDefault("COOKIE_SECURE", true),
		CookieSameSite:      getEnvOrDefault("COOKIE_SAMESITE", "strict"),
		SettlingDelay:       getEnvDurationOrDefault("REGISTER_SETTLING_DELAY", 2*time.Second),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8081),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.IssuerURI == "" && cfg.IdPBaseURL != "" {
		cfg.IssuerURI = cfg.IdPBaseURL + "/realms/" + cfg.IdPRealm
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AuthServiceURL     string // Required: auth service base URL
	EmployeeServiceURL string // Required: employee service base URL

	IssuerURI       string // Required: identity provider issuer
	JWKSURL         string // Optional: explicit JWKS URL (default: discovered from issuer)
	IdPClientID     string // Required for browser login: OAuth2 client id
	IdPClientSecret string // Required for browser login: OAuth2 client secret
	OAuthRedirectURL string // Optional: callback URL registered at the provider

	FrontendURL    string   // Optional: post-login redirect target (default: http://localhost:3000)
	AllowedOrigins []string // Optional: CORS origin allow-list (default: the frontend URL)

	CookieSecure   bool   // Optional: Secure attribute on session cookies (default: true)
	CookieSameSite string // Optional: strict, lax, none (default: strict)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	frontend := getEnvOrDefault("FRONTEND_URL", "http://localhost:3000")

	cfg := Config{
		AuthServiceURL:      getEnvOrDefault("AUTH_SERVICE_URL", "http://localhost:8081"),
		EmployeeServiceURL:  getEnvOrDefault("EMPLOYEE_SERVICE_URL", "http://localhost:8082"),
		IssuerURI:           os.Getenv("IDP_ISSUER_URI"),
		JWKSURL:             os.Getenv("IDP_JWKS_URL"),
		IdPClientID:         os.Getenv("IDP_CLIENT_ID"),
		IdPClientSecret:     os.Getenv("IDP_CLIENT_SECRET"),
		OAuthRedirectURL:    getEnvOrDefault("OAUTH_REDIRECT_URL", "http://localhost:8080/login/oauth2/code/callback"),
		FrontendURL:         frontend,
		AllowedOrigins:      getEnvListOrDefault("ALLOWED_ORIGINS", []string{frontend}),
		CookieSecure:        getEnvBoolOrDefault("COOKIE_SECURE", true),
		CookieSameSite:      getEnvOrDefault("COOKIE_SAMESITE", "strict"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
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

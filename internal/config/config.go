package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	DataStore   DataStoreConfig
	Proxy       ProxyConfig
}

// DataStoreConfig holds the hosted backend settings
type DataStoreConfig struct {
	URL           string
	PublicKey     string // anon key, used for the user-scoped client
	PrivilegedKey string // service-role key, used only for token verification
	ReviewTable   string
}

// ProxyConfig holds the inbound gate settings
type ProxyConfig struct {
	SharedSecret      string
	LegacyPlainErrors bool
	MaxBodyBytes      int64
}

// envBindings maps each configuration key to the environment variables
// that may supply it, in lookup order.
var envBindings = map[string][]string{
	"DATA_STORE_URL":            {"DATA_STORE_URL", "SUPABASE_URL"},
	"DATA_STORE_PUBLIC_KEY":     {"DATA_STORE_PUBLIC_KEY", "SUPABASE_ANON_KEY"},
	"DATA_STORE_PRIVILEGED_KEY": {"DATA_STORE_PRIVILEGED_KEY", "SUPABASE_SERVICE_ROLE_KEY"},
	"PROXY_SHARED_SECRET":       {"PROXY_SHARED_SECRET", "PROXY_SECRET_KEY"},
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REVIEW_TABLE", "avis")
	v.SetDefault("PROXY_LEGACY_PLAIN_ERRORS", false)
	v.SetDefault("MAX_BODY_BYTES", 1<<20)

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		DataStore: DataStoreConfig{
			URL:           strings.TrimRight(v.GetString("DATA_STORE_URL"), "/"),
			PublicKey:     v.GetString("DATA_STORE_PUBLIC_KEY"),
			PrivilegedKey: v.GetString("DATA_STORE_PRIVILEGED_KEY"),
			ReviewTable:   v.GetString("REVIEW_TABLE"),
		},
		Proxy: ProxyConfig{
			SharedSecret:      v.GetString("PROXY_SHARED_SECRET"),
			LegacyPlainErrors: v.GetBool("PROXY_LEGACY_PLAIN_ERRORS"),
			MaxBodyBytes:      v.GetInt64("MAX_BODY_BYTES"),
		},
	}

	return config, nil
}

// Validate reports every missing or malformed required setting.
// An empty shared secret is rejected: it would let through callers that
// send no secret header at all.
func (c *Config) Validate() error {
	var errs []error

	if c.DataStore.URL == "" {
		errs = append(errs, errors.New("DATA_STORE_URL is required"))
	} else if u, err := url.Parse(c.DataStore.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("DATA_STORE_URL %q is not an absolute URL", c.DataStore.URL))
	}
	if c.DataStore.PublicKey == "" {
		errs = append(errs, errors.New("DATA_STORE_PUBLIC_KEY is required"))
	}
	if c.DataStore.PrivilegedKey == "" {
		errs = append(errs, errors.New("DATA_STORE_PRIVILEGED_KEY is required"))
	}
	if c.DataStore.ReviewTable == "" {
		errs = append(errs, errors.New("REVIEW_TABLE must not be empty"))
	}
	if c.Proxy.SharedSecret == "" {
		errs = append(errs, errors.New("PROXY_SHARED_SECRET is required"))
	}
	if c.Proxy.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Package config handles loading and validation of service configuration.
// Supports both development (env vars, .env, config file) and production
// (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
// Environment determines whether Shopify credentials may come from Secret Manager.
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	SecretName string

	Shopify  ShopifyConfig
	Redis    RedisConfig
	Cart     CartConfig
	Checkout CheckoutConfig

	CORSAllowedOrigins []string
}

// ShopifyConfig contains the Admin API connection settings.
// In production the credential fields are loaded from Secret Manager as JSON.
type ShopifyConfig struct {
	StoreDomain     string        `json:"store_domain"`
	APIKey          string        `json:"api_key"`
	APISecret       string        `json:"api_secret"`
	AccessToken     string        `json:"admin_access_token"`
	APIVersion      string        `json:"-"`
	LensProductType string        `json:"-"`
	Timeout         time.Duration `json:"-"`
	// TLSFingerprint routes upstream calls through the Chrome-fingerprint transport.
	TLSFingerprint bool `json:"-"`
}

// RedisConfig enables the shared cart store and catalog cache when URL is set.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// CartConfig bounds the in-memory cart store.
type CartConfig struct {
	TTL      time.Duration
	MaxCarts int
}

// CheckoutConfig holds checkout hand-off destinations.
type CheckoutConfig struct {
	URL         string
	GoKwikURL   string
	OrderPrefix string
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Flags returns the command-line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("voyage-bff", pflag.ContinueOnError)
	fs.String("config", "", "path to a JSON, YAML or TOML config file (or CONFIG_FILE)")
	fs.String("port", "", "HTTP listen port (overrides PORT)")
	return fs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("shopify_secret_name", "shopify-credentials")
	v.SetDefault("shopify_api_version", "2024-07")
	v.SetDefault("shopify_lens_product_type", "Lens")
	v.SetDefault("shopify_timeout", "15s")
	v.SetDefault("upstream_tls_fingerprint", false)
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("cart_ttl", "24h")
	v.SetDefault("cart_max_carts", 10000)
	v.SetDefault("gokwik_checkout_url", "https://gokwik.co/checkout")
	v.SetDefault("order_prefix", "VYG")
	v.SetDefault("cors_allowed_origins", "*")
}

// Load reads configuration from an optional config file, a .env file, the
// environment and command-line flags. Environment variables override file
// values; changed flags override everything. flags may be nil.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	configPath := os.Getenv("CONFIG_FILE")
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Changed {
			configPath = f.Value.String()
		}
		if f := flags.Lookup("port"); f != nil && f.Changed {
			if err := v.BindPFlag("port", f); err != nil {
				return nil, fmt.Errorf("binding port flag: %w", err)
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := mergeDotEnv(v); err != nil {
		return nil, err
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	if cfg.IsProduction() && cfg.Shopify.AccessToken == "" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production when SHOPIFY_ADMIN_ACCESS_TOKEN is not set")
		}
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, fmt.Errorf("loading shopify credentials: %w", err)
		}
	}

	cfg.Shopify.StoreDomain = extractDomain(cfg.Shopify.StoreDomain)
	if cfg.Checkout.URL == "" && cfg.Shopify.StoreDomain != "" {
		cfg.Checkout.URL = fmt.Sprintf("https://%s/checkout", cfg.Shopify.StoreDomain)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeDotEnv merges a .env file from the working directory, if present.
// It uses its own viper instance because the env format must not apply to
// the main config file.
func mergeDotEnv(v *viper.Viper) error {
	dot := viper.New()
	dot.SetConfigType("env")
	dot.SetConfigName(".env")
	dot.AddConfigPath(".")

	if err := dot.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading .env: %w", err)
	}
	return v.MergeConfigMap(dot.AllSettings())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:        v.GetString("port"),
		Environment: v.GetString("environment"),
		LogLevel:    strings.ToLower(v.GetString("log_level")),
		GCPProject:  v.GetString("gcp_project"),
		SecretName:  v.GetString("shopify_secret_name"),
		Shopify: ShopifyConfig{
			StoreDomain:     v.GetString("shopify_store_domain"),
			APIKey:          v.GetString("shopify_api_key"),
			APISecret:       v.GetString("shopify_api_secret"),
			AccessToken:     v.GetString("shopify_admin_access_token"),
			APIVersion:      v.GetString("shopify_api_version"),
			LensProductType: v.GetString("shopify_lens_product_type"),
		},
		Redis: RedisConfig{URL: v.GetString("redis_url")},
		Checkout: CheckoutConfig{
			URL:         v.GetString("checkout_url"),
			GoKwikURL:   v.GetString("gokwik_checkout_url"),
			OrderPrefix: v.GetString("order_prefix"),
		},
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
	}

	var err error
	if cfg.Shopify.TLSFingerprint, err = parseBool(v, "upstream_tls_fingerprint"); err != nil {
		return nil, err
	}
	if cfg.Shopify.Timeout, err = parseDuration(v, "shopify_timeout"); err != nil {
		return nil, err
	}
	if cfg.Redis.CacheTTL, err = parseDuration(v, "cache_ttl"); err != nil {
		return nil, err
	}
	if cfg.Cart.TTL, err = parseDuration(v, "cart_ttl"); err != nil {
		return nil, err
	}
	if cfg.Cart.MaxCarts, err = strconv.Atoi(v.GetString("cart_max_carts")); err != nil {
		return nil, fmt.Errorf("invalid CART_MAX_CARTS: %w", err)
	}
	return cfg, nil
}

// loadFromSecretManager fetches Shopify credentials from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret}/versions/latest
// Fields present in the secret replace the ones read from the environment.
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.SecretName)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	return c.applySecret(result.Payload.Data)
}

func (c *Config) applySecret(data []byte) error {
	var secret ShopifyConfig
	if err := json.Unmarshal(data, &secret); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	c.Shopify.StoreDomain = withDefault(secret.StoreDomain, c.Shopify.StoreDomain)
	c.Shopify.APIKey = withDefault(secret.APIKey, c.Shopify.APIKey)
	c.Shopify.APISecret = withDefault(secret.APISecret, c.Shopify.APISecret)
	c.Shopify.AccessToken = withDefault(secret.AccessToken, c.Shopify.AccessToken)
	return nil
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Shopify.StoreDomain == "" {
		return fmt.Errorf("SHOPIFY_STORE_DOMAIN is required")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("SHOPIFY_ADMIN_ACCESS_TOKEN is required")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	if c.Shopify.Timeout <= 0 {
		return fmt.Errorf("SHOPIFY_TIMEOUT must be positive")
	}
	if c.Cart.MaxCarts <= 0 {
		return fmt.Errorf("CART_MAX_CARTS must be positive")
	}
	if c.Redis.URL != "" {
		if _, err := url.Parse(c.Redis.URL); err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
	return d, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := v.GetString(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
	return b, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// extractDomain accepts a bare domain or a URL and returns the host.
func extractDomain(store string) string {
	store = strings.TrimSpace(store)
	if !strings.Contains(store, "://") {
		return strings.TrimSuffix(strings.Split(store, "/")[0], "/")
	}
	u, err := url.Parse(store)
	if err != nil {
		// Fallback: strip protocol prefix manually
		domain := strings.TrimPrefix(store, "https://")
		domain = strings.TrimPrefix(domain, "http://")
		return strings.Split(domain, "/")[0]
	}
	return u.Host
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"CONFIG_FILE", "PORT", "ENVIRONMENT", "LOG_LEVEL", "GCP_PROJECT", "SHOPIFY_SECRET_NAME",
	"SHOPIFY_STORE_DOMAIN", "SHOPIFY_API_KEY", "SHOPIFY_API_SECRET", "SHOPIFY_ADMIN_ACCESS_TOKEN",
	"SHOPIFY_API_VERSION", "SHOPIFY_LENS_PRODUCT_TYPE", "SHOPIFY_TIMEOUT", "UPSTREAM_TLS_FINGERPRINT",
	"REDIS_URL", "CACHE_TTL", "CART_TTL", "CART_MAX_CARTS", "CHECKOUT_URL", "GOKWIK_CHECKOUT_URL",
	"ORDER_PREFIX", "CORS_ALLOWED_ORIGINS",
}

// setEnv clears every config variable, then applies vars for the test.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadFromEnv(t *testing.T) {
	setEnv(t, map[string]string{
		"SHOPIFY_STORE_DOMAIN":       "voyage.myshopify.com",
		"SHOPIFY_ADMIN_ACCESS_TOKEN": "shpat_test",
		"PORT":                       "9090",
		"LOG_LEVEL":                  "DEBUG",
		"REDIS_URL":                  "redis://localhost:6379/0",
		"UPSTREAM_TLS_FINGERPRINT":   "true",
		"CART_MAX_CARTS":             "500",
		"CORS_ALLOWED_ORIGINS":       "https://voyage.in, https://www.voyage.in",
	})

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.Shopify.StoreDomain != "voyage.myshopify.com" {
		t.Errorf("StoreDomain = %s", cfg.Shopify.StoreDomain)
	}
	if !cfg.Shopify.TLSFingerprint {
		t.Error("TLSFingerprint should be true")
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("Redis.URL = %s", cfg.Redis.URL)
	}
	if cfg.Cart.MaxCarts != 500 {
		t.Errorf("Cart.MaxCarts = %d, want 500", cfg.Cart.MaxCarts)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.voyage.in" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"SHOPIFY_STORE_DOMAIN":       "voyage.myshopify.com",
		"SHOPIFY_ADMIN_ACCESS_TOKEN": "shpat_test",
	})

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Port", cfg.Port, "3000"},
		{"Environment", cfg.Environment, "development"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"APIVersion", cfg.Shopify.APIVersion, "2024-07"},
		{"LensProductType", cfg.Shopify.LensProductType, "Lens"},
		{"Timeout", cfg.Shopify.Timeout, 15 * time.Second},
		{"TLSFingerprint", cfg.Shopify.TLSFingerprint, false},
		{"CacheTTL", cfg.Redis.CacheTTL, 5 * time.Minute},
		{"CartTTL", cfg.Cart.TTL, 24 * time.Hour},
		{"MaxCarts", cfg.Cart.MaxCarts, 10000},
		{"CheckoutURL", cfg.Checkout.URL, "https://voyage.myshopify.com/checkout"},
		{"GoKwikURL", cfg.Checkout.GoKwikURL, "https://gokwik.co/checkout"},
		{"OrderPrefix", cfg.Checkout.OrderPrefix, "VYG"},
		{"SecretName", cfg.SecretName, "shopify-credentials"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() should be false by default")
	}
}

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
shopify_store_domain: https://voyage.myshopify.com/admin
shopify_admin_access_token: shpat_file
shopify_api_version: 2024-01
order_prefix: VOY
`)
	setEnv(t, map[string]string{
		"CONFIG_FILE":         path,
		"SHOPIFY_API_VERSION": "2024-10",
	})

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Shopify.StoreDomain != "voyage.myshopify.com" {
		t.Errorf("StoreDomain = %s, want host extracted from URL", cfg.Shopify.StoreDomain)
	}
	if cfg.Shopify.AccessToken != "shpat_file" {
		t.Errorf("AccessToken = %s", cfg.Shopify.AccessToken)
	}
	if cfg.Checkout.OrderPrefix != "VOY" {
		t.Errorf("OrderPrefix = %s, want VOY", cfg.Checkout.OrderPrefix)
	}
	if cfg.Shopify.APIVersion != "2024-10" {
		t.Errorf("APIVersion = %s, environment should override the file", cfg.Shopify.APIVersion)
	}
}

func TestLoadFlags(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{
		"shopify_store_domain": "voyage.myshopify.com",
		"shopify_admin_access_token": "shpat_json",
		"port": "8000"
	}`)
	setEnv(t, map[string]string{"PORT": "9000"})

	flags := Flags()
	if err := flags.Parse([]string{"--config", path, "--port", "7070"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(context.Background(), flags)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %s, want 7070 from flag", cfg.Port)
	}
	if cfg.Shopify.AccessToken != "shpat_json" {
		t.Errorf("AccessToken = %s, want value from --config file", cfg.Shopify.AccessToken)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	setEnv(t, map[string]string{"CONFIG_FILE": "/nonexistent/config.yaml"})

	_, err := Load(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("err = %v, want config file error", err)
	}
}

func TestLoadValidation(t *testing.T) {
	base := map[string]string{
		"SHOPIFY_STORE_DOMAIN":       "voyage.myshopify.com",
		"SHOPIFY_ADMIN_ACCESS_TOKEN": "shpat_test",
	}

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"missing domain", "SHOPIFY_STORE_DOMAIN", "", "SHOPIFY_STORE_DOMAIN is required"},
		{"missing token", "SHOPIFY_ADMIN_ACCESS_TOKEN", "", "SHOPIFY_ADMIN_ACCESS_TOKEN is required"},
		{"bad port", "PORT", "http", "invalid PORT"},
		{"bad timeout", "SHOPIFY_TIMEOUT", "soon", "invalid SHOPIFY_TIMEOUT"},
		{"zero timeout", "SHOPIFY_TIMEOUT", "0s", "SHOPIFY_TIMEOUT must be positive"},
		{"bad max carts", "CART_MAX_CARTS", "many", "invalid CART_MAX_CARTS"},
		{"zero max carts", "CART_MAX_CARTS", "0", "CART_MAX_CARTS must be positive"},
		{"bad fingerprint flag", "UPSTREAM_TLS_FINGERPRINT", "maybe", "invalid UPSTREAM_TLS_FINGERPRINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{}
			for k, v := range base {
				vars[k] = v
			}
			vars[tt.key] = tt.value
			setEnv(t, vars)

			_, err := Load(context.Background(), nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadProductionRequiresProject(t *testing.T) {
	setEnv(t, map[string]string{
		"ENVIRONMENT":          "production",
		"SHOPIFY_STORE_DOMAIN": "voyage.myshopify.com",
	})

	_, err := Load(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "GCP_PROJECT required") {
		t.Errorf("err = %v, want GCP_PROJECT error", err)
	}
}

func TestLoadProductionWithEnvToken(t *testing.T) {
	// A token in the environment skips Secret Manager entirely.
	setEnv(t, map[string]string{
		"ENVIRONMENT":                "production",
		"SHOPIFY_STORE_DOMAIN":       "voyage.myshopify.com",
		"SHOPIFY_ADMIN_ACCESS_TOKEN": "shpat_env",
	})

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() should be true")
	}
}

func TestApplySecret(t *testing.T) {
	cfg := &Config{Shopify: ShopifyConfig{StoreDomain: "env.myshopify.com", APIKey: "env-key"}}

	err := cfg.applySecret([]byte(`{"admin_access_token":"shpat_secret","api_secret":"s3cret"}`))
	if err != nil {
		t.Fatalf("applySecret() error: %v", err)
	}
	if cfg.Shopify.AccessToken != "shpat_secret" || cfg.Shopify.APISecret != "s3cret" {
		t.Errorf("secret fields not applied: %+v", cfg.Shopify)
	}
	if cfg.Shopify.StoreDomain != "env.myshopify.com" || cfg.Shopify.APIKey != "env-key" {
		t.Errorf("fields missing from the secret should be kept: %+v", cfg.Shopify)
	}

	if err := cfg.applySecret([]byte("not json")); err == nil {
		t.Error("expected error for malformed secret")
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"voyage.myshopify.com", "voyage.myshopify.com"},
		{"https://voyage.myshopify.com", "voyage.myshopify.com"},
		{"https://voyage.myshopify.com/admin/", "voyage.myshopify.com"},
		{"voyage.myshopify.com/", "voyage.myshopify.com"},
		{" voyage.myshopify.com ", "voyage.myshopify.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractDomain(tt.in); got != tt.want {
			t.Errorf("extractDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

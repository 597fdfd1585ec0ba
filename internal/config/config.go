package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string   `mapstructure:"PORT"`
	Env              string   `mapstructure:"ENV"`
	DatabaseURL      string   `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
	AuthIssuer       string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience     string   `mapstructure:"AUTH_AUDIENCE"`
	AuthJWKSURL      string   `mapstructure:"AUTH_JWKS_URL"`
	JWTSigningKey    string   `mapstructure:"JWT_SIGNING_KEY"`
	MLModelURL       string   `mapstructure:"ML_MODEL_URL"`
	MLAPIKey         string   `mapstructure:"ML_API_KEY"`
	MLTimeoutSeconds int      `mapstructure:"ML_TIMEOUT_SECONDS"`
	RateLimitRPS     float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int      `mapstructure:"RATE_LIMIT_BURST"`
	UploadSigningKey string   `mapstructure:"UPLOAD_SIGNING_SECRET"`
	UploadDir        string   `mapstructure:"UPLOAD_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ML_TIMEOUT_SECONDS", 30)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("UPLOAD_DIR", "./uploads")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("JWT_SIGNING_KEY")
	v.BindEnv("ML_MODEL_URL")
	v.BindEnv("ML_API_KEY")
	v.BindEnv("ML_TIMEOUT_SECONDS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("UPLOAD_SIGNING_SECRET")
	v.BindEnv("UPLOAD_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Dev JWT signing key auth is active. Do NOT use in production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MLTimeout returns the outbound prediction-call timeout.
func (c *Config) MLTimeout() time.Duration {
	if c.MLTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.MLTimeoutSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. In production a
// real token verifier must be configured: either an issuer (JWKS) or an
// explicit signing key. The ML model URL is optional; orchestrated
// predictions fail with a configuration error when it is unset, and the
// demo predict path falls back to the mock provider.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.AuthIssuer == "" && c.AuthJWKSURL == "" && c.JWTSigningKey == "" {
			return fmt.Errorf("AUTH_ISSUER, AUTH_JWKS_URL or JWT_SIGNING_KEY must be set in production")
		}
		if c.UploadSigningKey == "" {
			return fmt.Errorf("UPLOAD_SIGNING_SECRET is required in production")
		}
	}
	if c.MLTimeoutSeconds < 0 {
		return fmt.Errorf("ML_TIMEOUT_SECONDS must not be negative, got %d", c.MLTimeoutSeconds)
	}
	return nil
}

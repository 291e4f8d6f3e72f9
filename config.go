package auth

import (
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvConfig is an environment-backed Config implementation for apps that do
// not bring their own configuration layer.
type EnvConfig struct {
	SigningKey           string `mapstructure:"AUTH_SIGNING_KEY"`
	TokenExpiration      int    `mapstructure:"AUTH_TOKEN_EXPIRATION_HOURS"`
	ContextKey           string `mapstructure:"AUTH_CONTEXT_KEY"`
	AuthScheme           string `mapstructure:"AUTH_SCHEME"`
	Issuer               string `mapstructure:"AUTH_ISSUER"`
	RedisAddr            string `mapstructure:"AUTH_REDIS_ADDR"`
	RedisPassword        string `mapstructure:"AUTH_REDIS_PASSWORD"`
	DefaultAdminUsername string `mapstructure:"AUTH_DEFAULT_ADMIN_USERNAME"`
	DefaultAdminPassword string `mapstructure:"AUTH_DEFAULT_ADMIN_PASSWORD"`
}

var _ Config = (*EnvConfig)(nil)

// LoadEnvConfig reads configuration from the environment, optionally
// seeded from a .env file when one exists in the working directory.
func LoadEnvConfig() (*EnvConfig, error) {
	// Missing .env is fine, the environment may be populated already.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("AUTH_TOKEN_EXPIRATION_HOURS", 24)
	v.SetDefault("AUTH_CONTEXT_KEY", "user")
	v.SetDefault("AUTH_SCHEME", "Bearer")
	v.SetDefault("AUTH_ISSUER", "")
	v.SetDefault("AUTH_SIGNING_KEY", "")
	v.SetDefault("AUTH_REDIS_ADDR", "")
	v.SetDefault("AUTH_REDIS_PASSWORD", "")
	v.SetDefault("AUTH_DEFAULT_ADMIN_USERNAME", "admin")
	v.SetDefault("AUTH_DEFAULT_ADMIN_PASSWORD", "")
	v.AutomaticEnv()

	cfg := &EnvConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load auth config")
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("AUTH_SIGNING_KEY is required", errors.CategoryValidation)
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *EnvConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *EnvConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

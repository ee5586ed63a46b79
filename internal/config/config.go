package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	errMissingSigningKey = errors.New("api.jwt_signing_key is required")
	errShortCookieKey    = errors.New("api.cookie_hash_key must be at least 32 bytes")
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	OAuth    *OAuthConfig    `mapstructure:"oauth"`
	Events   *EventsConfig   `mapstructure:"events"`
	Policy   *PolicyConfig   `mapstructure:"policy"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	CookieHashKey      string        `mapstructure:"cookie_hash_key"`
	CookieBlockKey     string        `mapstructure:"cookie_block_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// DSN builds the key/value connection string understood by the pgx driver.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.DB, c.Port, c.SSLMode, c.TimeZone,
	)
}

// RedisConfig is optional. An empty Addr disables token revocation.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OAuthConfig holds the identity providers. RedirectBaseURL is the public URL
// under which /{provider}/callback is reachable.
type OAuthConfig struct {
	RedirectBaseURL string        `mapstructure:"redirect_base_url"`
	Google          OAuthProvider `mapstructure:"google"`
	GitHub          OAuthProvider `mapstructure:"github"`
}

type OAuthProvider struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

func (p OAuthProvider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type EventsConfig struct {
	DefaultCity     string `mapstructure:"default_city"`
	DefaultState    string `mapstructure:"default_state"`
	DefaultCurrency string `mapstructure:"default_currency"`
}

type PolicyConfig struct {
	AnyAuthenticatedUserMayOrganize bool `mapstructure:"any_authenticated_user_may_organize"`
}

// Load reads the YAML file at path, then lets environment variables override any
// key (api.port -> API_PORT).
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	// Settings are read once at startup; a change only gets reported.
	v.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Warn("config file changed, restart to apply",
			zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	v.WatchConfig()

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.jwt_ttl", "24h")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.cookie_hash_key", "")
	v.SetDefault("api.cookie_block_key", "")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db", "technest")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("oauth.redirect_base_url", "http://localhost:8080/api/v1/auth/oauth")
	v.SetDefault("oauth.google.client_id", "")
	v.SetDefault("oauth.google.client_secret", "")
	v.SetDefault("oauth.github.client_id", "")
	v.SetDefault("oauth.github.client_secret", "")
	v.SetDefault("events.default_city", "São Paulo")
	v.SetDefault("events.default_state", "SP")
	v.SetDefault("events.default_currency", "BRL")
	v.SetDefault("policy.any_authenticated_user_may_organize", true)
}

func (c *AppConfig) validate() error {
	if c.API.JWTSigningKey == "" {
		return errMissingSigningKey
	}
	if c.API.CookieHashKey != "" && len(c.API.CookieHashKey) < 32 {
		return errShortCookieKey
	}

	return nil
}

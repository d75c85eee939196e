// Package config builds the process configuration once at startup. Nothing
// below cmd/ reads the environment directly; components receive the
// sections they need.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/almadegranja/alma-backend/internal/apperr"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	EnvProduction = "production"

	defaultAdminUser     = "admin"
	defaultAdminPassword = "admin123"
	defaultJWTSecret     = "dev_secret_change_me"
)

// Storage backends, in selection order.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
	BackendFile     = "file"
)

type HTTPConfig struct {
	Addr         string
	ClientOrigin string
}

type LogConfig struct {
	Level string
	File  string
}

type AuthConfig struct {
	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration
}

// Missing lists the variables the auth gate cannot work without.
func (a AuthConfig) Missing() []string {
	var missing []string
	if a.AdminUser == "" {
		missing = append(missing, "ADMIN_USER")
	}
	if a.AdminPassword == "" && a.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if a.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	return missing
}

type StorageConfig struct {
	ProductsFile string
	KVRestURL    string
	KVRestToken  string
	KVKey        string
	DatabaseURL  string
	BoltPath     string
}

// Backend reports which storage backend the configuration selects. Hosted
// key-value credentials win over the local file.
func (s StorageConfig) Backend() string {
	switch {
	case s.KVRestURL != "" && s.KVRestToken != "":
		return BackendREST
	case s.DatabaseURL != "":
		return BackendPostgres
	case s.BoltPath != "":
		return BackendBolt
	default:
		return BackendFile
	}
}

type MediaConfig struct {
	CloudName      string
	APIKey         string
	APISecret      string
	Folder         string
	MaxUploadBytes int64
}

func (m MediaConfig) Configured() bool {
	return m.CloudName != "" && m.APIKey != "" && m.APISecret != ""
}

type Config struct {
	Env     string
	HTTP    HTTPConfig
	Log     LogConfig
	Auth    AuthConfig
	Storage StorageConfig
	Media   MediaConfig

	defaulted []string
}

// Load reads flags from args, an optional dotenv file and the environment.
// Outside production, unset admin credentials and signing secret fall back
// to development defaults; Defaulted reports which ones did.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("alma", pflag.ContinueOnError)
	envFile := fs.String("env-file", ".env", "dotenv file to load before reading the environment")
	fs.String("addr", "", "HTTP listen address, overrides APP_PORT")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", *envFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TOKEN_TTL", "2h")
	v.SetDefault("PRODUCTS_FILE", "data/products.json")
	v.SetDefault("KV_KEY", "products")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	if err := v.BindPFlag("HTTP_ADDR", fs.Lookup("addr")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env: strings.ToLower(v.GetString("APP_ENV")),
		HTTP: HTTPConfig{
			Addr:         v.GetString("HTTP_ADDR"),
			ClientOrigin: v.GetString("CLIENT_ORIGIN"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Auth: AuthConfig{
			AdminUser:         v.GetString("ADMIN_USER"),
			AdminPassword:     v.GetString("ADMIN_PASSWORD"),
			AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
			JWTSecret:         v.GetString("JWT_SECRET"),
			TokenTTL:          v.GetDuration("TOKEN_TTL"),
		},
		Storage: StorageConfig{
			ProductsFile: v.GetString("PRODUCTS_FILE"),
			KVRestURL:    strings.TrimRight(v.GetString("KV_REST_API_URL"), "/"),
			KVRestToken:  v.GetString("KV_REST_API_TOKEN"),
			KVKey:        v.GetString("KV_KEY"),
			DatabaseURL:  v.GetString("DATABASE_URL"),
			BoltPath:     v.GetString("KV_BOLT_PATH"),
		},
		Media: MediaConfig{
			CloudName:      v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:         v.GetString("CLOUDINARY_API_KEY"),
			APISecret:      v.GetString("CLOUDINARY_API_SECRET"),
			Folder:         v.GetString("CLOUDINARY_FOLDER"),
			MaxUploadBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":" + v.GetString("APP_PORT")
	}
	if cfg.Auth.AdminPassword == "" {
		cfg.Auth.AdminPassword = v.GetString("ADMIN_PASS")
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 2 * time.Hour
	}

	if !cfg.Production() {
		cfg.applyDevDefaults()
	}
	return cfg, nil
}

func (c *Config) applyDevDefaults() {
	if c.Auth.AdminUser == "" {
		c.Auth.AdminUser = defaultAdminUser
		c.defaulted = append(c.defaulted, "ADMIN_USER")
	}
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		c.Auth.AdminPassword = defaultAdminPassword
		c.defaulted = append(c.defaulted, "ADMIN_PASSWORD")
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = defaultJWTSecret
		c.defaulted = append(c.defaulted, "JWT_SECRET")
	}
}

func (c Config) Production() bool { return c.Env == EnvProduction }

// Defaulted returns the variables that were filled with development defaults.
func (c Config) Defaulted() []string { return c.defaulted }

// Validate rejects a configuration the server must not start with.
func (c Config) Validate() error {
	if missing := c.Auth.Missing(); len(missing) > 0 {
		return apperr.Configuration("missing required environment: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// LogFields describes the loaded configuration without secrets.
func (c Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("env", c.Env),
		zap.String("addr", c.HTTP.Addr),
		zap.String("client_origin", c.HTTP.ClientOrigin),
		zap.String("storage", c.Storage.Backend()),
		zap.Bool("media_configured", c.Media.Configured()),
		zap.Duration("token_ttl", c.Auth.TokenTTL),
		zap.Strings("dev_defaults", c.defaulted),
	}
}

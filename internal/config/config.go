package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Google   GoogleConfig   `yaml:"google"`
	Activity ActivityConfig `yaml:"activity"`
}

type AppConfig struct {
	Port            string   `yaml:"port"`
	FrontendBaseURL string   `yaml:"frontend_base_url"`
	AllowOrigins    []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres | mysql | sqlite
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret       string `yaml:"secret"`
	ExpiresMin   int    `yaml:"expires_min"`
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	// Endpoint overrides; empty means Google's public endpoints.
	AuthURL     string `yaml:"auth_url"`
	TokenURL    string `yaml:"token_url"`
	UserInfoURL string `yaml:"userinfo_url"`
}

func (g GoogleConfig) Enabled() bool { return g.ClientID != "" && g.ClientSecret != "" }

type ActivityConfig struct {
	Limit int `yaml:"limit"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:            "8080",
			FrontendBaseURL: "http://localhost:3000",
			AllowOrigins:    []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Database: DatabaseConfig{Driver: "postgres"},
		JWT:      JWTConfig{ExpiresMin: 10080, CookieName: "pilotify_session"},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Activity: ActivityConfig{Limit: 5},
	}
}

// Load reads defaults, then the YAML file, then .env, then the process
// environment. Later sources win.
func Load(configFile string) (*Config, error) {
	c := Default()

	paths := []string{"etc/config.yaml", "/etc/pilotify/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if configFile != "" {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		break
	}

	_ = godotenv.Load()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	envOverride(&c.App.Port, "APP_PORT")
	envOverride(&c.App.FrontendBaseURL, "FRONTEND_BASE_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.App.AllowOrigins = splitList(v)
	}
	envOverride(&c.Database.Driver, "DB_DRIVER")
	envOverride(&c.Database.DSN, "DB_DSN")
	envOverride(&c.JWT.Secret, "JWT_SECRET")
	envOverrideInt(&c.JWT.ExpiresMin, "JWT_EXPIRES_MIN")
	envOverrideBool(&c.JWT.CookieSecure, "COOKIE_SECURE")
	envOverride(&c.Redis.Addr, "REDIS_ADDR")
	envOverride(&c.Redis.Password, "REDIS_PASSWORD")
	envOverrideInt(&c.Redis.DB, "REDIS_DB")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	envOverride(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	envOverride(&c.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	envOverrideInt(&c.Activity.Limit, "ACTIVITY_LIMIT")
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("missing database dsn (DB_DSN)"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("missing jwt secret (JWT_SECRET)"))
	}
	if c.JWT.ExpiresMin <= 0 {
		errs = append(errs, errors.New("jwt expires_min must be positive"))
	}
	if c.Activity.Limit <= 0 {
		errs = append(errs, errors.New("activity limit must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + c.App.Port
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseDriver   string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	RealtimeChannel  string
	CacheTTL         time.Duration
	JWTSecret        string
	RosterFile       string
	LogLevel         string
	LogFile          string
	AutoSaveLimit    int
	AutoSaveWindow   time.Duration
	EventTitle       string
	EventSubtitle    string
	EventYear        string
	EventOrg         string
	EventOrgShort    string
	EventSystemName  string
	ShutdownDeadline time.Duration
	CORSOrigins      string
	AccessLog        bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AdminProtected reports whether the admin surface requires a bearer token.
func (c Config) AdminProtected() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVALSUITE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EvalSuite API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("realtime.channel", "evalsuite:leaderboard")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("autosave.rate_limit", 30)
	v.SetDefault("autosave.window", "1m")
	v.SetDefault("event.title", "INTERNAL HACKATHON")
	v.SetDefault("event.subtitle", "Jury Evaluation")
	v.SetDefault("event.year", fmt.Sprintf("%d", time.Now().Year()))
	v.SetDefault("event.organization", "")
	v.SetDefault("event.organization_short", "")
	v.SetDefault("event.system_name", "EvalSuite")
	v.SetDefault("shutdown.timeout", "5s")
	v.SetDefault("http.cors_origins", "*")
	v.SetDefault("http.access_log", false)

	cacheTTL, err := parseDuration(v, "cache.ttl", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	window, err := parseDuration(v, "autosave.window", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid autosave window: %w", err)
	}

	shutdown, err := parseDuration(v, "shutdown.timeout", 5*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseDriver:   strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		RealtimeChannel:  v.GetString("realtime.channel"),
		CacheTTL:         cacheTTL,
		JWTSecret:        v.GetString("jwt.secret"),
		RosterFile:       v.GetString("roster.file"),
		LogLevel:         strings.ToLower(v.GetString("log.level")),
		LogFile:          v.GetString("log.file"),
		AutoSaveLimit:    v.GetInt("autosave.rate_limit"),
		AutoSaveWindow:   window,
		EventTitle:       v.GetString("event.title"),
		EventSubtitle:    v.GetString("event.subtitle"),
		EventYear:        v.GetString("event.year"),
		EventOrg:         v.GetString("event.organization"),
		EventOrgShort:    v.GetString("event.organization_short"),
		EventSystemName:  v.GetString("event.system_name"),
		ShutdownDeadline: shutdown,
		CORSOrigins:      strings.TrimSpace(v.GetString("http.cors_origins")),
		AccessLog:        v.GetBool("http.access_log"),
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.AutoSaveLimit <= 0 {
		cfg.AutoSaveLimit = 30
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}

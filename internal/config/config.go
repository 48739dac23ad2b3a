package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	MySQL          MySQLConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Log            LogConfig
	Cache          CacheConfig
	Upload         UploadConfig
	SessionSweeper SessionSweeperConfig
	WS             WSConfig
	Migrate        bool
	HTTPAddr       string
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	TTLSec int
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	Dir   string
	MaxMB int
}

// SessionSweeperConfig holds expired session sweeper configuration
type SessionSweeperConfig struct {
	Enabled     bool
	IntervalSec int
}

// WSConfig holds Socket.IO configuration
type WSConfig struct {
	Enabled bool
}

// Load reads configuration from the environment (and a .env file if present)
func Load() (*Config, error) {
	_ = godotenv.Load()
	return build(source{})
}

// LoadFromINI reads an INI file; environment variables still win over it
func LoadFromINI(iniPath string) (*Config, error) {
	_ = godotenv.Load()

	file, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}
	return build(source{file: file})
}

// source resolves one setting: ENV > INI > default
type source struct {
	file *ini.File
}

func (s source) iniKey(section, key string) (*ini.Key, bool) {
	if s.file == nil || !s.file.Section(section).HasKey(key) {
		return nil, false
	}
	return s.file.Section(section).Key(key), true
}

func (s source) str(env, section, key, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if k, ok := s.iniKey(section, key); ok && k.String() != "" {
		return k.String()
	}
	return def
}

func (s source) num(env, section, key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(env)); err == nil {
		return v
	}
	if k, ok := s.iniKey(section, key); ok {
		if v, err := k.Int(); err == nil {
			return v
		}
	}
	return def
}

func (s source) flag(env, section, key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(env)); err == nil {
		return v
	}
	if k, ok := s.iniKey(section, key); ok {
		if v, err := k.Bool(); err == nil {
			return v
		}
	}
	return def
}

func build(src source) (*Config, error) {
	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: src.str("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Enabled:  src.flag("REDIS_ENABLED", "redis", "enabled", true),
			Addr:     src.str("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: src.str("REDIS_PASS", "redis", "pass", ""),
			DB:       src.num("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        src.str("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: src.num("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 720),
			Issuer:        src.str("JWT_ISSUER", "jwt", "issuer", "peo_admin"),
		},
		Log: LogConfig{
			Level:  src.str("LOG_LEVEL", "log", "level", "info"),
			Format: src.str("LOG_FORMAT", "log", "format", "text"),
		},
		Cache: CacheConfig{
			TTLSec: src.num("CACHE_TTL_SEC", "cache", "ttl_sec", 60),
		},
		Upload: UploadConfig{
			Dir:   src.str("UPLOAD_DIR", "upload", "dir", "./var/uploads"),
			MaxMB: src.num("UPLOAD_MAX_MB", "upload", "max_mb", 20),
		},
		SessionSweeper: SessionSweeperConfig{
			Enabled:     src.flag("SESSION_SWEEPER_ENABLED", "session_sweeper", "enabled", true),
			IntervalSec: src.num("SESSION_SWEEPER_INTERVAL_SEC", "session_sweeper", "interval_sec", 300),
		},
		WS: WSConfig{
			Enabled: src.flag("WS_ENABLED", "ws", "enabled", true),
		},
		Migrate:  src.flag("MIGRATE", "app", "migrate", false),
		HTTPAddr: src.str("HTTP_ADDR", "http", "addr", ":8080"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch {
	case cfg.MySQL.DSN == "":
		return fmt.Errorf("MYSQL_DSN is required")
	case cfg.JWT.Secret == "":
		return fmt.Errorf("JWT_SECRET is required")
	case cfg.JWT.ExpireMinutes <= 0:
		return fmt.Errorf("JWT_EXPIRE_MINUTES must be positive")
	case cfg.Upload.MaxMB <= 0:
		return fmt.Errorf("UPLOAD_MAX_MB must be positive")
	}
	return nil
}

// Package config loads loadorder settings from a TOML file and the
// environment.
package config

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/loadorder/pkg/cache"
	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/history"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	// Env: LOADORDER_LOG_LEVEL, Default: info
	LogLevel string `mapstructure:"logLevel"`

	// MatchPolicy selects how dependency targets are matched.
	// Env: LOADORDER_MATCH_POLICY, Default: id-and-range
	MatchPolicy string `mapstructure:"matchPolicy"`

	// Vars are exposed to manifest conditions as vars.
	Vars map[string]string `mapstructure:"vars"`

	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	History HistoryConfig `mapstructure:"history"`
}

// CacheConfig configures the plan cache.
type CacheConfig struct {
	// Backend is file, redis or none.
	// Env: LOADORDER_CACHE_BACKEND, Default: file
	Backend string `mapstructure:"backend"`

	// Dir is the file cache directory.
	// Env: LOADORDER_CACHE_DIR, Default: $XDG_CACHE_HOME/loadorder
	Dir string `mapstructure:"dir"`

	// TTL is how long solved plans are kept.
	// Env: LOADORDER_CACHE_TTL, Default: 168h
	TTL time.Duration `mapstructure:"ttl"`

	// Namespace prefixes plan keys so that deployments sharing a backend
	// do not serve each other's plans.
	// Env: LOADORDER_CACHE_NAMESPACE
	Namespace string `mapstructure:"namespace"`

	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`     // Env: LOADORDER_REDIS_ADDR
	Password string `mapstructure:"password"` // Env: LOADORDER_REDIS_PASSWORD
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Env: LOADORDER_SERVER_ADDR, Default: :8080
	Addr string `mapstructure:"addr"`
}

// HistoryConfig configures where resolutions served by the API are kept.
// Without a MongoURI they are kept in memory.
type HistoryConfig struct {
	MongoURI string `mapstructure:"mongoURI"` // Env: LOADORDER_MONGO_URI
	Database string `mapstructure:"database"`
	Capacity int    `mapstructure:"capacity"` // in-memory only
}

// WithDefaults returns a copy with every unset field filled in.
func (c Config) WithDefaults() *Config {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MatchPolicy == "" {
		c.MatchPolicy = solver.MatchIDAndRange.String()
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = cache.TTLPlan
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.History.Database == "" {
		c.History.Database = history.DefaultDatabase
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = history.DefaultMemoryCapacity
	}
	return &c
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "logLevel")
	}
	if _, err := solver.ParseMatchPolicy(c.MatchPolicy); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "cache.backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Policy returns the parsed match policy, falling back to the default.
func (c *Config) Policy() solver.MatchPolicy {
	p, err := solver.ParseMatchPolicy(c.MatchPolicy)
	if err != nil {
		return solver.MatchIDAndRange
	}
	return p
}

package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	errs "github.com/matzehuels/loadorder/pkg/errors"
)

const envPrefix = "LOADORDER"

// envBindings maps config keys to environment variables that do not follow
// the automatic PREFIX_SECTION_KEY naming.
var envBindings = map[string]string{
	"logLevel":             "LOADORDER_LOG_LEVEL",
	"matchPolicy":          "LOADORDER_MATCH_POLICY",
	"cache.backend":        "LOADORDER_CACHE_BACKEND",
	"cache.dir":            "LOADORDER_CACHE_DIR",
	"cache.ttl":            "LOADORDER_CACHE_TTL",
	"cache.namespace":      "LOADORDER_CACHE_NAMESPACE",
	"cache.redis.addr":     "LOADORDER_REDIS_ADDR",
	"cache.redis.password": "LOADORDER_REDIS_PASSWORD",
	"cache.redis.db":       "LOADORDER_REDIS_DB",
	"server.addr":          "LOADORDER_SERVER_ADDR",
	"history.mongoURI":     "LOADORDER_MONGO_URI",
	"history.database":     "LOADORDER_MONGO_DATABASE",
}

// Loader reads configuration from a file and the environment.
// Environment variables take precedence over file values.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with environment bindings in place.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return &Loader{v: v}
}

// Load reads configFile, or [ConfigFile] when empty. A missing file is not
// an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		if configFile, err = ConfigFile(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "locate config file")
		}
	}
	path, err := ExpandPath(configFile)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "expand %s", configFile)
	}

	l.v.SetConfigFile(path)
	l.v.SetConfigType("toml")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read config %s", path)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode config %s", path)
	}
	return &cfg, nil
}

// LoadWithDefaults loads, applies defaults and validates.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Set overrides key for subsequent loads, as a command-line flag would.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

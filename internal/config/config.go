package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/iTrooz/thumbnail-cache/internal/cache"
)

const (
	DefaultCacheDuration = 30
	MinCacheDuration     = 1
	MaxCacheDuration     = 365
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig `yaml:"server"`
	Cache   CacheConfig  `yaml:"cache"`
	Options EmbedOptions `yaml:"options"`
	Log     LogConfig    `yaml:"log"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port int `yaml:"port"`
}

// CacheConfig contains cache-related configuration
type CacheConfig struct {
	// Folder is the cache root holding the thumbnail files
	Folder string `yaml:"folder"`
	// PublicURL is the URL prefix under which Folder is served
	PublicURL string `yaml:"public_url"`
	// RemoteBase is the thumbnail host, without trailing slash
	RemoteBase string `yaml:"remote_base"`
	// Schedule is the cron spec of the expiry sweep
	Schedule string `yaml:"schedule"`
}

// EmbedOptions is the options blob shared with the embed layer
type EmbedOptions struct {
	ThumbnailQuality string `yaml:"thumbnail_quality"`
	// CacheDuration is the retention window in days
	CacheDuration int `yaml:"cache_duration"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when a key is absent from the file
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Cache: CacheConfig{
			Folder:     "./thumbnails",
			PublicURL:  "/thumbnails",
			RemoteBase: cache.DefaultRemoteBase,
			Schedule:   "@weekly",
		},
		Options: EmbedOptions{
			ThumbnailQuality: string(cache.MaxResDefault),
			CacheDuration:    DefaultCacheDuration,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads configuration from a YAML file on top of the defaults
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "yaml"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	config.Options = Sanitize(config.Options)

	return &config, nil
}

// Sanitize clamps embed options into their accepted ranges.
// An unknown quality becomes maxresdefault, a duration outside 1..365 becomes 30.
func Sanitize(o EmbedOptions) EmbedOptions {
	if !cache.Quality(o.ThumbnailQuality).Known() {
		logrus.Debugf("Unknown thumbnail quality %q, using %s", o.ThumbnailQuality, cache.MaxResDefault)
		o.ThumbnailQuality = string(cache.MaxResDefault)
	}

	if o.CacheDuration < MinCacheDuration || o.CacheDuration > MaxCacheDuration {
		logrus.Debugf("Cache duration %d out of range, using %d", o.CacheDuration, DefaultCacheDuration)
		o.CacheDuration = DefaultCacheDuration
	}

	return o
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := validation.ValidateStruct(&c.Cache,
		validation.Field(&c.Cache.Folder, validation.Required),
		validation.Field(&c.Cache.PublicURL, validation.Required),
		validation.Field(&c.Cache.RemoteBase, validation.Required, is.URL),
		validation.Field(&c.Cache.Schedule, validation.Required),
	); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.By(validLogLevel)),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}

func validLogLevel(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := logrus.ParseLevel(s); err != nil {
		return err
	}
	return nil
}

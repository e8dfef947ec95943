package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/4x4trailrunners/riggs-feed/internal/modules/feed/domain"
	"github.com/4x4trailrunners/riggs-feed/internal/shared/errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// EnvPrefix is stripped from environment variables before they are mapped to keys
const EnvPrefix = "RIGGSFEED_"

// DefaultConfigFiles are tried in order in the working directory when no path is given
var DefaultConfigFiles = []string{
	"riggsfeed.yaml",
	"riggsfeed.yml",
	"riggsfeed.json",
	"riggsfeed.toml",
}

type Config struct {
	MaxItems            int           `koanf:"max_items"`
	ChannelTitle        string        `koanf:"channel_title"`
	ChannelLink         string        `koanf:"channel_link"`
	ChannelDescription  string        `koanf:"channel_description"`
	StripTrackingParams bool          `koanf:"strip_tracking_params"`
	TrackingParams      []string      `koanf:"tracking_params"`
	LogLevel            string        `koanf:"log_level"`
	LogFile             string        `koanf:"log_file"`
	AppEnv              domain.AppEnv `koanf:"app_env"`
}

// ChannelDefaults returns the configured metadata for new or incomplete channels
func (c *Config) ChannelDefaults() domain.ChannelDefaults {
	return domain.ChannelDefaults{
		Title:       c.ChannelTitle,
		Link:        c.ChannelLink,
		Description: c.ChannelDescription,
	}
}

// Load reads configuration from path, or from the first default config file
// found when path is empty. Environment variables override file values.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	configFile, found := path, path != ""
	if !found {
		configFile, found = lo.Find(DefaultConfigFiles, func(file string) bool {
			_, err := os.Stat(file)
			return err == nil
		})
	}

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.With("config_file", configFile).Wrapf(errors.ErrInvalidConfig, "unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// RIGGSFEED_MAX_ITEMS -> max_items
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	defaults := map[string]any{
		"max_items":             domain.DefaultMaxItems,
		"channel_title":         domain.DefaultTitle,
		"channel_link":          domain.DefaultLink,
		"channel_description":   domain.DefaultDescription,
		"strip_tracking_params": true,
		"tracking_params":       domain.DefaultTrackingParams,
		"log_level":             "warn",
		"log_file":              "",
		"app_env":               string(domain.AppEnvProduction),
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// Env values arrive as a single comma-separated string
	if raw, ok := k.Get("tracking_params").(string); ok {
		cfg.TrackingParams = ParseList(raw)
	}

	if appEnv, err := domain.ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = domain.AppEnvProduction
	}

	if cfg.MaxItems <= 0 {
		return nil, oops.With("max_items", cfg.MaxItems).Wrapf(errors.ErrInvalidConfig, "max_items must be positive")
	}

	return &cfg, nil
}

// ParseList splits a comma-separated string, dropping blank entries
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
}

// DefaultFeedPath resolves feed.xml one directory above the running executable
func DefaultFeedPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", oops.With("context", "resolving executable").Wrap(err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return FeedPathFor(exe)
}

// FeedPathFor returns the absolute feed path for an executable located at exe
func FeedPathFor(exe string) (string, error) {
	path, err := filepath.Abs(filepath.Join(filepath.Dir(exe), "..", "feed.xml"))
	if err != nil {
		return "", oops.With("executable", exe).Wrap(err)
	}
	return path, nil
}

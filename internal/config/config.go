// Package config loads application settings from defaults, an optional config file,
// a .env file, and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/justestif/go-music-cluster-explorer/internal/catalog"
)

// ErrMissingCredentials is returned when the Spotify client id or secret is unset.
var ErrMissingCredentials = errors.New("spotify credentials not configured")

// Config holds all application settings.
type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Spotify SpotifyConfig
	Search  SearchConfig
	Session SessionConfig
	Log     LogConfig

	// Themes overrides or extends the built-in cluster themes, keyed by cluster id.
	Themes map[int]catalog.Theme
}

type ServerConfig struct {
	Addr string
}

type DatasetConfig struct {
	Path string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
}

type SearchConfig struct {
	Limit     int
	MaxOffset int
}

type SessionConfig struct {
	TTL time.Duration
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Options control where configuration is read from.
type Options struct {
	// ConfigFile is an explicit config file path. When empty, config.{yaml,toml,json}
	// is searched for in ./config and the working directory.
	ConfigFile string
	// EnvFile is loaded into the process environment if it exists.
	EnvFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("dataset.path", "clustered_songs_final.csv")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.api_url", "https://api.spotify.com/v1/")
	v.SetDefault("search.limit", 12)
	v.SetDefault("search.max_offset", 500)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. Environment variables override file values, with dots
// in keys replaced by underscores (SERVER_ADDR, DATASET_PATH, ...).
// Credentials are not validated here; see Validate.
func Load(o Options) (*Config, error) {
	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names are accepted as fallbacks.
	if err := v.BindEnv("spotify.client_id", "SPOTIFY_CLIENT_ID", "SPOTIFY_ID"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("spotify.client_secret", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET"); err != nil {
		return nil, err
	}

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server:  ServerConfig{Addr: v.GetString("server.addr")},
		Dataset: DatasetConfig{Path: v.GetString("dataset.path")},
		Spotify: SpotifyConfig{
			ClientID:     v.GetString("spotify.client_id"),
			ClientSecret: v.GetString("spotify.client_secret"),
			TokenURL:     v.GetString("spotify.token_url"),
			APIURL:       v.GetString("spotify.api_url"),
		},
		Search: SearchConfig{
			Limit:     v.GetInt("search.limit"),
			MaxOffset: v.GetInt("search.max_offset"),
		},
		Session: SessionConfig{TTL: v.GetDuration("session.ttl")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	themes, err := loadThemes(v)
	if err != nil {
		return nil, err
	}
	cfg.Themes = themes

	if cfg.Search.Limit <= 0 {
		return nil, fmt.Errorf("search.limit must be positive, got %d", cfg.Search.Limit)
	}
	if cfg.Search.MaxOffset <= 0 {
		return nil, fmt.Errorf("search.max_offset must be positive, got %d", cfg.Search.MaxOffset)
	}
	return cfg, nil
}

// loadThemes decodes the optional "themes" table. Keys are cluster ids.
func loadThemes(v *viper.Viper) (map[int]catalog.Theme, error) {
	if !v.IsSet("themes") {
		return nil, nil
	}

	var raw map[string]catalog.Theme
	if err := v.UnmarshalKey("themes", &raw); err != nil {
		return nil, fmt.Errorf("decoding themes: %w", err)
	}

	themes := make(map[int]catalog.Theme, len(raw))
	for key, theme := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("themes: invalid cluster id %q", key)
		}
		themes[id] = theme
	}
	return themes, nil
}

// Validate checks settings required to serve the dashboard.
func (c *Config) Validate() error {
	var missing []string
	if c.Spotify.ClientID == "" {
		missing = append(missing, "spotify.client_id")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "spotify.client_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// NewLogger builds the application logger.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", c.Format)
	}
}

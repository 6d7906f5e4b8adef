// Package config loads application configuration from a YAML file with
// TUNEPULL_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dmarro/tunepull/internal/log"
)

// CacheBackend selects the durable tier implementation.
type CacheBackend string

const (
	CacheBackendFile CacheBackend = "file"
	CacheBackendBolt CacheBackend = "bolt"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Spotify SpotifyConfig `mapstructure:"spotify"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
	FFmpeg  FFmpegConfig  `mapstructure:"ffmpeg"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging log.Config    `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// SpotifyConfig holds the metadata provider endpoints and credentials
type SpotifyConfig struct {
	SearchURL    string `mapstructure:"search_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// YouTubeConfig holds the audio-hosting service endpoint
type YouTubeConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// FFmpegConfig holds the external encoder location
type FFmpegConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds the TTL cache parameters
type CacheConfig struct {
	Path    string        `mapstructure:"path"`
	Backend CacheBackend  `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Spotify: SpotifyConfig{
			SearchURL: "https://api.spotify.com/v1/search",
			TokenURL:  "https://accounts.spotify.com/api/token",
		},
		YouTube: YouTubeConfig{
			BaseURL: "https://www.youtube.com",
		},
		FFmpeg: FFmpegConfig{
			Path: "/usr/bin/ffmpeg",
		},
		Cache: CacheConfig{
			Path:    "cache.json",
			Backend: CacheBackendFile,
			TTL:     10 * time.Second,
		},
		Logging: log.Config{
			File:  "",
			Level: "INFO",
		},
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tunepull")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "tunepull")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. TUNEPULL_SPOTIFY_CLIENT_SECRET
	v.SetEnvPrefix("TUNEPULL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so Unmarshal sees it. Viper only applies
// environment overrides to keys it already knows about, so without this an
// env-only deployment (no config file) would lose the TUNEPULL_* values.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("spotify.search_url", d.Spotify.SearchURL)
	v.SetDefault("spotify.token_url", d.Spotify.TokenURL)
	v.SetDefault("spotify.client_id", d.Spotify.ClientID)
	v.SetDefault("spotify.client_secret", d.Spotify.ClientSecret)
	v.SetDefault("youtube.base_url", d.YouTube.BaseURL)
	v.SetDefault("ffmpeg.path", d.FFmpeg.Path)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.backend", string(d.Cache.Backend))
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Validate reports configuration the server cannot start without.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client_id and client_secret are required")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendBolt:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Secrets may also come from the environment; see [ApplyEnv].
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Recommend   RecommendConfig   `toml:"recommend"`
	Publish     PublishConfig     `toml:"publish"`
	Cache       CacheConfig       `toml:"cache"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify     OAuthConfig  `toml:"spotify"`
	YouTube     OAuthConfig  `toml:"youtube"`
	LastFM      APIKeyConfig `toml:"lastfm"`
	OpenWeather APIKeyConfig `toml:"openweather"`
}

// OAuthConfig contains the client registration for an authorization code flow
// and the location of its cached token.
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	TokenPath    string `toml:"token_path"`
}

// APIKeyConfig holds a single static key.
type APIKeyConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// RecommendConfig tunes the recommendation engines.
type RecommendConfig struct {
	GenreLimit   int     `toml:"genre_limit"`
	TopArtists   int     `toml:"top_artists"`
	TimeRange    string  `toml:"time_range"`
	Market       string  `toml:"market"`
	Country      string  `toml:"country"`
	RequestsPerS float64 `toml:"requests_per_second"`
}

// PublishConfig controls playlist creation.
type PublishConfig struct {
	Description        string  `toml:"description"`
	MinVideoSimilarity float64 `toml:"min_video_similarity"`
}

// CacheConfig configures the optional Redis response cache. An empty address disables it.
type CacheConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLMinutes    int    `toml:"ttl_minutes"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for the callback listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Missing keys keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// envOverlay mirrors the secrets in [Config] with flat environment variable names.
type envOverlay struct {
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURI  string `env:"SPOTIFY_REDIRECT_URI"`
	YouTubeClientID     string `env:"YOUTUBE_CLIENT_ID"`
	YouTubeClientSecret string `env:"YOUTUBE_CLIENT_SECRET"`
	LastFMAPIKey        string `env:"LASTFM_API_KEY"`
	OpenWeatherAPIKey   string `env:"OPENWEATHER_API_KEY"`
	DatabasePath        string `env:"SONGREC_DATABASE_PATH"`
	RedisAddr           string `env:"SONGREC_REDIS_ADDR"`
	RedisPassword       string `env:"SONGREC_REDIS_PASSWORD"`
}

// ApplyEnv overlays environment variables onto config.
//
// When envFile names an existing dotenv file its variables are loaded first.
// Unset variables leave the TOML values untouched.
func ApplyEnv(config *Config, envFile string) error {
	var overlay envOverlay
	var err error
	if envFile != "" && fileExists(envFile) {
		err = cleanenv.ReadConfig(envFile, &overlay)
	} else {
		err = cleanenv.ReadEnv(&overlay)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.Credentials.Spotify.ClientID, overlay.SpotifyClientID)
	set(&config.Credentials.Spotify.ClientSecret, overlay.SpotifyClientSecret)
	set(&config.Credentials.Spotify.RedirectURI, overlay.SpotifyRedirectURI)
	set(&config.Credentials.YouTube.ClientID, overlay.YouTubeClientID)
	set(&config.Credentials.YouTube.ClientSecret, overlay.YouTubeClientSecret)
	set(&config.Credentials.LastFM.APIKey, overlay.LastFMAPIKey)
	set(&config.Credentials.OpenWeather.APIKey, overlay.OpenWeatherAPIKey)
	set(&config.Database.Path, overlay.DatabasePath)
	set(&config.Cache.RedisAddr, overlay.RedisAddr)
	set(&config.Cache.RedisPassword, overlay.RedisPassword)
	return nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

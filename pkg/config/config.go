// Package config loads startup configuration from an optional TOML file
// with environment-variable overrides. The environment always wins so an
// env-only deployment needs no file at all.

package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the application configuration read once at startup.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
}

// SpotifyConfig carries the provider credentials and the OAuth redirect.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// ServerConfig carries the listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// SessionConfig carries cookie signing and optional durable storage. An
// empty DatabasePath keeps session tokens in memory, matching the original
// system's deliberate loss of token state across restarts.
type SessionConfig struct {
	SigningKey   string `toml:"signing_key"`
	DatabasePath string `toml:"database_path"`
}

// Load reads the TOML file at path when path is non-empty, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Spotify: SpotifyConfig{RedirectURL: "http://localhost:4000/callback"},
		Server:  ServerConfig{Addr: ":4000"},
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with the environment variables the
// deployment scripts already use.
func (c *Config) applyEnv() {
	setIfPresent(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setIfPresent(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setIfPresent(&c.Spotify.RedirectURL, "SPOTIFY_REDIRECT_URL")
	setIfPresent(&c.Server.Addr, "LISTEN_ADDR")
	setIfPresent(&c.Session.SigningKey, "SIGNING_KEY")
	setIfPresent(&c.Session.DatabasePath, "DATABASE_PATH")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// validate fails fast on missing credentials; without them the application
// cannot talk to the provider at all.
func (c *Config) validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client id and secret must be set")
	}
	if c.Session.SigningKey == "" {
		return fmt.Errorf("session signing key must be set")
	}
	return nil
}

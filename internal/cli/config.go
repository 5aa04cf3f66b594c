package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultServerURL is used when neither BROKER_SERVER_URL nor the config
// file names a server.
const DefaultServerURL = "http://localhost:8080"

// CLIConfig is the state `broker login` leaves behind for the API commands:
// the server it talked to and the admin JWT it was issued. BROKER_SERVER_URL
// and BROKER_TOKEN take precedence over both fields.
type CLIConfig struct {
	ServerURL string    `yaml:"server_url,omitempty"`
	Token     string    `yaml:"token,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// expired reports whether the stored token is past the expiry the server
// gave at login. A token with no recorded expiry is sent as is.
func (c CLIConfig) expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// configPath is ~/.config/broker/config.yaml.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "broker", "config.yaml"), nil
}

// loadConfig returns the zero config when nobody has logged in yet.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// saveConfig writes the file owner-only since it holds a bearer token.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// rememberLogin stores the token issued by POST /api/admin/login. serverURL
// is only recorded when the user chose one explicitly.
func rememberLogin(serverURL, token string, expiresAt time.Time) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}
	cfg.Token = token
	cfg.ExpiresAt = expiresAt
	if serverURL != "" {
		cfg.ServerURL = strings.TrimRight(serverURL, "/")
	}
	return saveConfig(cfg)
}

// forgetLogin drops the stored token and keeps the server URL. It reports
// whether there was a token to drop.
func forgetLogin() (bool, error) {
	cfg, err := loadConfig()
	if err != nil {
		return false, err
	}
	if cfg.Token == "" {
		return false, nil
	}
	cfg.Token = ""
	cfg.ExpiresAt = time.Time{}
	return true, saveConfig(cfg)
}

func getServerURL() string {
	if v := os.Getenv("BROKER_SERVER_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	if cfg, err := loadConfig(); err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return DefaultServerURL
}

// getToken returns the bearer token for API calls. An expired stored token
// is not sent, so the server answers 401 and the login hint is shown.
func getToken() string {
	if v := os.Getenv("BROKER_TOKEN"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err != nil || cfg.expired(time.Now()) {
		return ""
	}
	return cfg.Token
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains connection settings for the Nellenest backend.
type API struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	RetryDelayMS   int    `toml:"retry_delay_ms"`
	UserAgent      string `toml:"user_agent"`
}

// Storage selects where the session token and cached profile live.
type Storage struct {
	Backend string `toml:"backend"` // file, sqlite or memory
	Dir     string `toml:"dir"`
}

// Auth contains session handling knobs.
type Auth struct {
	// RejectExpiredTokens makes session restore discard a stored token whose
	// exp claim is in the past instead of trusting it until the backend says 401.
	RejectExpiredTokens  bool `toml:"reject_expired_tokens"`
	RefreshLeewaySeconds int  `toml:"refresh_leeway_seconds"`
}

// Media contains S3-compatible object storage settings for image and audio uploads.
type Media struct {
	Bucket      string `toml:"bucket"`
	Region      string `toml:"region"`
	Endpoint    string `toml:"endpoint"`
	AccessKey   string `toml:"access_key"`
	SecretKey   string `toml:"secret_key"`
	PublicURL   string `toml:"public_url"`
	PathStyle   bool   `toml:"path_style"`
	ImagePrefix string `toml:"image_prefix"`
	AudioPrefix string `toml:"audio_prefix"`
	MaxImageMB  int    `toml:"max_image_mb"`
	MaxAudioMB  int    `toml:"max_audio_mb"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for nestadmin.
//
// Configuration sections by subsystem:
//   - API: backend origin, timeout and retry policy
//   - Storage: durable session storage backend
//   - Auth: session restore and refresh behaviour
//   - Media: object storage used by uploads
//   - Logging: log format, level, and optional file copy
type Config struct {
	API     API     `toml:"api"`
	Storage Storage `toml:"storage"`
	Auth    Auth    `toml:"auth"`
	Media   Media   `toml:"media"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Normalize applies defaults, environment fallbacks, and path expansion to a
// config built in code.
func (c *Config) Normalize() error {
	return c.normalize()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Timeout returns the per-attempt request timeout.
func (a API) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base delay between connection retries.
func (a API) RetryDelay() time.Duration {
	return time.Duration(a.RetryDelayMS) * time.Millisecond
}

// RefreshLeeway returns how close to expiry a token counts as expiring soon.
func (a Auth) RefreshLeeway() time.Duration {
	return time.Duration(a.RefreshLeewaySeconds) * time.Second
}

// Enabled reports whether uploads are configured.
func (m Media) Enabled() bool {
	return strings.TrimSpace(m.Bucket) != ""
}

// MaxImageBytes returns the image upload ceiling.
func (m Media) MaxImageBytes() int64 {
	return int64(m.MaxImageMB) << 20
}

// MaxAudioBytes returns the audio upload ceiling.
func (m Media) MaxAudioBytes() int64 {
	return int64(m.MaxAudioMB) << 20
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	// The sample may later hold storage credentials.
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	out := c
	if out.Media.AccessKey != "" {
		out.Media.AccessKey = redactedValue
	}
	if out.Media.SecretKey != "" {
		out.Media.SecretKey = redactedValue
	}
	return out
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) url, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 1 || c.API.TimeoutSeconds > 600 {
		return errors.New("api.timeout_seconds must be between 1 and 600")
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		return errors.New("api.max_retries must be between 0 and 10")
	}
	if c.API.RetryDelayMS < 0 || c.API.RetryDelayMS > 60000 {
		return errors.New("api.retry_delay_ms must be between 0 and 60000")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend must be one of file, sqlite, memory; got %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Dir) == "" && c.Storage.Backend != "memory" {
		return errors.New("storage.dir must be set")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.RefreshLeewaySeconds < 0 {
		return errors.New("auth.refresh_leeway_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if !c.Media.Enabled() {
		return nil
	}
	if c.Media.AccessKey == "" || c.Media.SecretKey == "" {
		return fmt.Errorf("media.access_key and media.secret_key are required when media.bucket is set (or set %s and %s)", EnvS3AccessKey, EnvS3SecretKey)
	}
	for name, raw := range map[string]string{"media.endpoint": c.Media.Endpoint, "media.public_url": c.Media.PublicURL} {
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute url, got %q", name, raw)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}

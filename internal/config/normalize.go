package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeAuth()
	c.normalizeMedia()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimRight(envFallback(c.API.BaseURL, EnvAPIURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	c.API.UserAgent = strings.TrimSpace(c.API.UserAgent)
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.Dir = envFallback(c.Storage.Dir, EnvStorageDir)
	if c.Storage.Dir == "" {
		c.Storage.Dir = defaultStorageDir
	}
	var err error
	if c.Storage.Dir, err = expandPath(c.Storage.Dir); err != nil {
		return fmt.Errorf("storage.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAuth() {
	if c.Auth.RefreshLeewaySeconds <= 0 {
		c.Auth.RefreshLeewaySeconds = defaultRefreshLeewaySeconds
	}
}

func (c *Config) normalizeMedia() {
	c.Media.Bucket = envFallback(c.Media.Bucket, EnvS3Bucket)
	c.Media.AccessKey = envFallback(c.Media.AccessKey, EnvS3AccessKey)
	c.Media.SecretKey = envFallback(c.Media.SecretKey, EnvS3SecretKey)
	c.Media.Region = strings.TrimSpace(c.Media.Region)
	if c.Media.Region == "" {
		c.Media.Region = defaultMediaRegion
	}
	c.Media.Endpoint = strings.TrimRight(strings.TrimSpace(c.Media.Endpoint), "/")
	c.Media.PublicURL = strings.TrimRight(strings.TrimSpace(c.Media.PublicURL), "/")
	c.Media.ImagePrefix = strings.Trim(strings.TrimSpace(c.Media.ImagePrefix), "/")
	if c.Media.ImagePrefix == "" {
		c.Media.ImagePrefix = defaultImagePrefix
	}
	c.Media.AudioPrefix = strings.Trim(strings.TrimSpace(c.Media.AudioPrefix), "/")
	if c.Media.AudioPrefix == "" {
		c.Media.AudioPrefix = defaultAudioPrefix
	}
	if c.Media.MaxImageMB <= 0 {
		c.Media.MaxImageMB = defaultMaxImageMB
	}
	if c.Media.MaxAudioMB <= 0 {
		c.Media.MaxAudioMB = defaultMaxAudioMB
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(envFallback(c.Logging.Level, EnvLogLevel))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

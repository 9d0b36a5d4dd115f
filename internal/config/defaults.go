package config

const (
	defaultConfigPath           = "~/.config/nestadmin/config.toml"
	projectConfigName           = "nestadmin.toml"
	defaultBaseURL              = "https://nellenest.vercel.app"
	defaultTimeoutSeconds       = 30
	defaultMaxRetries           = 3
	defaultRetryDelayMS         = 1000
	defaultUserAgent            = "nestadmin/dev"
	defaultStorageBackend       = "file"
	defaultStorageDir           = "~/.local/share/nestadmin"
	defaultRefreshLeewaySeconds = 300
	defaultMediaRegion          = "us-east-1"
	defaultImagePrefix          = "nellenest/courses/thumbnails"
	defaultAudioPrefix          = "nellenest/courses/audio"
	defaultMaxImageMB           = 10
	defaultMaxAudioMB           = 200
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"

	redactedValue = "********"
)

// Environment variables consulted when the matching TOML value is empty.
const (
	EnvAPIURL      = "NESTADMIN_API_URL"
	EnvStorageDir  = "NESTADMIN_STORAGE_DIR"
	EnvS3AccessKey = "NESTADMIN_S3_ACCESS_KEY"
	EnvS3SecretKey = "NESTADMIN_S3_SECRET_KEY"
	EnvS3Bucket    = "NESTADMIN_S3_BUCKET"
	EnvLogLevel    = "LOG_LEVEL"
)

// Default returns a Config populated with repository defaults. Values that
// can come from the environment are left empty and filled in by normalize.
func Default() Config {
	return Config{
		API: API{
			TimeoutSeconds: defaultTimeoutSeconds,
			MaxRetries:     defaultMaxRetries,
			RetryDelayMS:   defaultRetryDelayMS,
			UserAgent:      defaultUserAgent,
		},
		Storage: Storage{
			Backend: defaultStorageBackend,
		},
		Auth: Auth{
			RefreshLeewaySeconds: defaultRefreshLeewaySeconds,
		},
		Media: Media{
			Region:      defaultMediaRegion,
			ImagePrefix: defaultImagePrefix,
			AudioPrefix: defaultAudioPrefix,
			MaxImageMB:  defaultMaxImageMB,
			MaxAudioMB:  defaultMaxAudioMB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
		},
	}
}

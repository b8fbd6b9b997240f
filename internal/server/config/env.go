package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. A .env file
// loaded by the entrypoint (godotenv) ends up here as well. Unset or
// malformed variables leave the current value unchanged.
func parseEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("SHELFMARK_HTTP_ADDR", &config.HTTPAddr)
	setString("SHELFMARK_METRICS_ADDR", &config.MetricsAddr)
	setString("SHELFMARK_PUBLIC_BASE_URL", &config.PublicBaseURL)
	setString("SHELFMARK_DATABASE_DSN", &config.DatabaseDSN)
	setString("SHELFMARK_SECRET_KEY", &config.SecretKey)
	setDuration("SHELFMARK_ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	setDuration("SHELFMARK_REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)

	if v, ok := os.LookupEnv("SHELFMARK_LINK_PASSWORD_COST"); ok {
		if cost, err := strconv.Atoi(v); err == nil {
			config.LinkPasswordCost = cost
		}
	}

	setString("SHELFMARK_S3_ROOT_USER", &config.S3RootUser)
	setString("SHELFMARK_S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("SHELFMARK_S3_BUCKET", &config.S3Bucket)
	setString("SHELFMARK_S3_REGION", &config.S3Region)
	setString("SHELFMARK_S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}

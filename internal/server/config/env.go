package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset or
// empty variables leave the current value untouched. Lifetime variables
// accept time.ParseDuration syntax ("15m", "240h"); malformed values panic,
// as a misconfigured token lifetime must not start the server.
//
// Recognized variables:
//
//	ADDRESS               HTTP bind address
//	DATABASE_DSN          PostgreSQL DSN
//	ACCESS_TOKEN_SECRET   HMAC secret for access tokens
//	REFRESH_TOKEN_SECRET  HMAC secret for refresh tokens
//	ACCESS_TOKEN_EXPIRY   access token lifetime
//	REFRESH_TOKEN_EXPIRY  refresh token lifetime
//	CORS_ORIGIN           allowed CORS origin
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
func parseEnv(config *Config) {
	setString := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, name string) {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	setString(&config.EndpointAddr, "ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	setString(&config.RefreshTokenSecret, "REFRESH_TOKEN_SECRET")
	setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_EXPIRY")
	setDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_EXPIRY")
	setString(&config.CORSAllowedOrigin, "CORS_ORIGIN")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

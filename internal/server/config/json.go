package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/omhauth/internal/flagx"
	"github.com/dmitrijs2005/omhauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "5m" and integer nanoseconds are accepted.
// Fields left out of the file keep their current value.
type JsonConfig struct {
	EndpointAddrHTTP                  string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC                  string          `json:"endpoint_addr_grpc"`
	DatabaseDSN                       string          `json:"database_dsn"`
	SecretKey                         string          `json:"secret_key"`
	SessionTokenValidityDuration      *timex.Duration `json:"session_token_validity_duration"`
	AuthorizationCodeValidityDuration *timex.Duration `json:"authorization_code_validity_duration"`
	AccessTokenValidityDuration       *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      *timex.Duration `json:"refresh_token_validity_duration"`
	TokenGenerationAttempts           int             `json:"token_generation_attempts"`
	AuthorizePage                     string          `json:"authorize_page"`
	LogLevel                          string          `json:"log_level"`
	RateLimitPerMinute                int             `json:"rate_limit_per_minute"`
	RateLimitBurst                    int             `json:"rate_limit_burst"`
	TracingExporter                   string          `json:"tracing_exporter"`
	AuditS3Bucket                     string          `json:"audit_s3_bucket"`
	S3Region                          string          `json:"s3_region"`
	S3BaseEndpoint                    string          `json:"s3_base_endpoint"`
	S3RootUser                        string          `json:"s3_root_user"`
	S3RootPassword                    string          `json:"s3_root_password"`
}

// parseJson overlays values from the JSON file named by -c/-config (or the
// OMH_CONFIG environment variable) onto config. Without a path it does
// nothing. An unreadable file or invalid JSON panics, like a bad flag.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AuthorizePage, c.AuthorizePage)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.TracingExporter, c.TracingExporter)
	setString(&config.AuditS3Bucket, c.AuditS3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)

	if c.SessionTokenValidityDuration != nil {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.AuthorizationCodeValidityDuration != nil {
		config.AuthorizationCodeValidityDuration = c.AuthorizationCodeValidityDuration.Duration
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.TokenGenerationAttempts > 0 {
		config.TokenGenerationAttempts = c.TokenGenerationAttempts
	}
	if c.RateLimitPerMinute > 0 {
		config.RateLimitPerMinute = c.RateLimitPerMinute
	}
	if c.RateLimitBurst > 0 {
		config.RateLimitBurst = c.RateLimitBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

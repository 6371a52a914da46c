package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/flagx"
)

var serverFlags = []string{
	"-a", "-grpc", "-d", "-s", "-l", "-o", "-t", "-r", "-n", "-p", "-v",
	"-k", "-x", "-b", "-g", "-e", "-u", "-w",
}

// Flags lists every flag the server config reads, including the JSON
// config path flags.
func Flags() []string {
	return append([]string{"-c", "-config"}, serverFlags...)
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-grpc string  gRPC health bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-s string     session token HMAC secret
//	-l int        session token validity, minutes
//	-o int        authorization code validity, minutes
//	-t int        access token validity, minutes
//	-r int        refresh token validity, minutes (0 = no limit)
//	-n int        token generation attempts
//	-p string     consent page URL
//	-v string     log level
//	-k int        auth endpoint requests per minute per IP
//	-x string     tracing exporter (none, stdout)
//	-b string     audit S3 bucket
//	-g string     S3 region
//	-e string     S3 base endpoint
//	-u string     S3 user
//	-w string     S3 password
//
// Only the flags listed above are looked at; everything else in os.Args is
// left for other parsers. Duration flags are integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("l", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")
	codeTTL := fs.Int("o", int(config.AuthorizationCodeValidityDuration.Minutes()), "authorization_code_validity_duration (in minutes)")
	accessTTL := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTTL := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.IntVar(&config.TokenGenerationAttempts, "n", config.TokenGenerationAttempts, "token generation attempts")
	fs.StringVar(&config.AuthorizePage, "p", config.AuthorizePage, "consent page URL")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.IntVar(&config.RateLimitPerMinute, "k", config.RateLimitPerMinute, "auth requests per minute per IP")
	fs.StringVar(&config.TracingExporter, "x", config.TracingExporter, "tracing exporter")

	fs.StringVar(&config.AuditS3Bucket, "b", config.AuditS3Bucket, "audit S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "w", config.S3RootPassword, "S3 password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTTL) * time.Minute
	config.AuthorizationCodeValidityDuration = time.Duration(*codeTTL) * time.Minute
	config.AccessTokenValidityDuration = time.Duration(*accessTTL) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTTL) * time.Minute
}

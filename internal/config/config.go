package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	JWTSecret       string
	TokenTTLMinutes int

	// SignatureBackend selects the signing backend once at startup:
	// "vault" (key held in Vault KV), "gcp" (key held in GCP Secret
	// Manager), "soft" (in-process key), or "echo" (degraded fallback, no
	// cryptographic guarantee). Empty means auto: vault when configured,
	// otherwise soft.
	SignatureBackend   string
	SigningTimeoutSecs int

	VaultAddr    string
	VaultToken   string
	VaultKeyPath string

	GCPProjectID             string
	GCPAccessToken           string
	GCPSecretManagerEndpoint string
	GCPSigningSecretID       string

	// AlertPolicy controls who receives tamper and invalid-signature
	// alerts: "owner", "caller", or "both".
	AlertPolicy string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BlobDir string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSSessionToken    string
	S3Bucket           string
	S3Endpoint         string

	NotifyWebhookURL string

	AuditQueryLimit int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                 addr,
		PostgresDSN:              os.Getenv("POSTGRES_DSN"),
		LogLevel:                 envDefault("LOG_LEVEL", "info"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		TokenTTLMinutes:          envIntDefault("TOKEN_TTL_MINUTES", 60),
		SignatureBackend:         os.Getenv("SIGNATURE_BACKEND"),
		SigningTimeoutSecs:       envIntDefault("SIGNING_TIMEOUT_SECONDS", 10),
		VaultAddr:                os.Getenv("VAULT_ADDR"),
		VaultToken:               os.Getenv("VAULT_TOKEN"),
		VaultKeyPath:             envDefault("VAULT_KEY_PATH", "secret/data/docvault/signing-key"),
		GCPProjectID:             os.Getenv("GCP_PROJECT_ID"),
		GCPAccessToken:           os.Getenv("GCP_ACCESS_TOKEN"),
		GCPSecretManagerEndpoint: os.Getenv("GCP_SECRET_MANAGER_ENDPOINT"),
		GCPSigningSecretID:       envDefault("GCP_SIGNING_SECRET_ID", "docvault-signing-key"),
		AlertPolicy:              envDefault("ALERT_POLICY", "owner"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  envIntDefault("REDIS_DB", 0),
		BlobDir:                  envDefault("BLOB_DIR", "uploads"),
		AWSRegion:                os.Getenv("AWS_REGION"),
		AWSAccessKeyID:           os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:       os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSSessionToken:          os.Getenv("AWS_SESSION_TOKEN"),
		S3Bucket:                 os.Getenv("S3_BUCKET"),
		S3Endpoint:               os.Getenv("S3_ENDPOINT"),
		NotifyWebhookURL:         os.Getenv("NOTIFY_WEBHOOK_URL"),
		AuditQueryLimit:          envIntDefault("AUDIT_QUERY_LIMIT", 500),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func (c Config) SigningTimeout() time.Duration {
	if c.SigningTimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.SigningTimeoutSecs) * time.Second
}

func (c Config) TokenTTL() time.Duration {
	if c.TokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

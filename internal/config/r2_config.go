package config

import "os"

// R2 Cloudflare configuration for disaster recovery
// Endpoint and keys come from the environment; nothing sensitive is baked in
var (
	R2Endpoint   = envOr("R2_ENDPOINT", "")
	R2AccessKey  = envOr("R2_ACCESS_KEY", "")
	R2SecretKey  = envOr("R2_SECRET_KEY", "")
	R2BucketName = envOr("R2_BUCKET", "timetrack-db-backups")
	R2Region     = "auto"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

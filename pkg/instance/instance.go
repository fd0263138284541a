package instance

import "os"

// EnvInstanceID overrides the detected process identity.
const EnvInstanceID = "MTAANI_INSTANCE_ID"

// GetID identifies the running replica in logs and lock values. It prefers
// MTAANI_INSTANCE_ID, then the container hostname, then fallback.
func GetID(fallback string) string {
	if id := os.Getenv(EnvInstanceID); id != "" {
		return id
	}
	if host := os.Getenv("HOSTNAME"); host != "" {
		return host
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallback
}

package instance

import (
	"os"
	"strings"
)

// EnvWorkerID overrides the derived instance identifier.
const EnvWorkerID = "FRUITTREE_WORKER_ID"

// GetID returns the worker instance identifier: the configured id, else the
// hostname, else a fixed default.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvWorkerID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}

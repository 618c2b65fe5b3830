package instance

import (
	"os"
	"testing"
)

func TestGetIDPrefersConfiguredValue(t *testing.T) {
	t.Setenv(EnvWorkerID, " cron-7 ")
	if got := GetID(); got != "cron-7" {
		t.Fatalf("expected cron-7, got %q", got)
	}
}

func TestGetIDFallsBackToHostname(t *testing.T) {
	t.Setenv(EnvWorkerID, "")
	host, err := os.Hostname()
	if err != nil || host == "" {
		t.Skip("hostname unavailable")
	}
	if got := GetID(); got != host {
		t.Fatalf("expected %q, got %q", host, got)
	}
}

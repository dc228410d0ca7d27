package config

import (
	"testing"
	"time"
)

func TestEnvList_TrimsAndSkipsEmpty(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,http://localhost:5173 ")
	got := envList("ALLOWED_ORIGINS", "")
	if len(got) != 2 {
		t.Fatalf("expected 2 origins, got %d (%v)", len(got), got)
	}
	if got[0] != "https://a.example" || got[1] != "http://localhost:5173" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9000")
	cfg := Load()
	if cfg.HTTPAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.HTTPAddr)
	}
}

func TestLocation_UnknownZoneFallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Nowhere/Invalid"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}

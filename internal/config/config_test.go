package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OfferThreshold != 5 {
		t.Fatalf("OfferThreshold = %d, want 5", cfg.OfferThreshold)
	}
	if cfg.OfferWindow != 30*time.Minute {
		t.Fatalf("OfferWindow = %v, want 30m", cfg.OfferWindow)
	}
	if cfg.OfferCooldown != 6*time.Hour {
		t.Fatalf("OfferCooldown = %v, want 6h", cfg.OfferCooldown)
	}
	if cfg.PauseBeforeMenu != 2*time.Second {
		t.Fatalf("PauseBeforeMenu = %v, want 2s", cfg.PauseBeforeMenu)
	}
	if cfg.ReferenceTimezone != "Europe/Moscow" {
		t.Fatalf("ReferenceTimezone = %q, want Europe/Moscow", cfg.ReferenceTimezone)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
}

func TestLoadRequiresBotToken(t *testing.T) {
	setCoreEnvEmpty(t)

	if _, err := Load(); err == nil {
		t.Fatalf("Load() succeeded without BOT_TOKEN")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OFFER_WINDOW", "10m")
	t.Setenv("OFFER_THRESHOLD", "3")
	t.Setenv("REFERENCE_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OfferWindow != 10*time.Minute {
		t.Fatalf("OfferWindow = %v, want 10m", cfg.OfferWindow)
	}
	if cfg.OfferThreshold != 3 {
		t.Fatalf("OfferThreshold = %d, want 3", cfg.OfferThreshold)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("Location() = %v, want UTC", cfg.Location())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"OFFER_WINDOW":       "soon",
		"OFFER_THRESHOLD":    "-1",
		"REFERENCE_TIMEZONE": "Mars/OlympusMons",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv("BOT_TOKEN", "123:abc")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%q", key, value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"BOT_TOKEN",
		"APP_BIND_ADDR",
		"APP_METRICS_NAMESPACE",
		"APP_SHUTDOWN_TIMEOUT",
		"CARDS_DIR",
		"TAROT_DECK_PATH",
		"MIND_DECK_PATH",
		"CONSULT_URL",
		"REFERENCE_TIMEZONE",
		"OFFER_WINDOW",
		"OFFER_THRESHOLD",
		"OFFER_COOLDOWN",
		"PAUSE_BEFORE_CARD",
		"PAUSE_BEFORE_MENU",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

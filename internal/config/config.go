package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the bot process.
type Config struct {
	BotToken         string
	BindAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration

	CardsDir      string
	TarotDeckPath string
	MindDeckPath  string
	ConsultURL    string

	ReferenceTimezone string
	OfferWindow       time.Duration
	OfferThreshold    int
	OfferCooldown     time.Duration
	PauseBeforeCard   time.Duration
	PauseBeforeMenu   time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BotToken:          stringsTrimSpace("BOT_TOKEN"),
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "mira"),
		CardsDir:          envOrDefault("CARDS_DIR", "cards"),
		TarotDeckPath:     envOrDefault("TAROT_DECK_PATH", "cards.json"),
		MindDeckPath:      envOrDefault("MIND_DECK_PATH", "mind_cards.json"),
		ConsultURL:        envOrDefault("CONSULT_URL", "https://t.me/olga_febr"),
		ReferenceTimezone: envOrDefault("REFERENCE_TIMEZONE", "Europe/Moscow"),
		OfferThreshold:    5,
		OfferWindow:       30 * time.Minute,
		OfferCooldown:     6 * time.Hour,
		PauseBeforeCard:   time.Second,
		PauseBeforeMenu:   2 * time.Second,
		ShutdownTimeout:   15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.OfferWindow, err = durationFromEnv("OFFER_WINDOW", cfg.OfferWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.OfferCooldown, err = durationFromEnv("OFFER_COOLDOWN", cfg.OfferCooldown)
	if err != nil {
		return Config{}, err
	}
	cfg.PauseBeforeCard, err = durationFromEnv("PAUSE_BEFORE_CARD", cfg.PauseBeforeCard)
	if err != nil {
		return Config{}, err
	}
	cfg.PauseBeforeMenu, err = durationFromEnv("PAUSE_BEFORE_MENU", cfg.PauseBeforeMenu)
	if err != nil {
		return Config{}, err
	}
	cfg.OfferThreshold, err = intFromEnv("OFFER_THRESHOLD", cfg.OfferThreshold)
	if err != nil {
		return Config{}, err
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is not set")
	}
	if cfg.OfferThreshold <= 0 {
		return Config{}, fmt.Errorf("OFFER_THRESHOLD must be positive")
	}
	if cfg.OfferWindow <= 0 {
		return Config{}, fmt.Errorf("OFFER_WINDOW must be positive")
	}
	if cfg.OfferCooldown <= 0 {
		return Config{}, fmt.Errorf("OFFER_COOLDOWN must be positive")
	}
	if _, err := time.LoadLocation(cfg.ReferenceTimezone); err != nil {
		return Config{}, fmt.Errorf("REFERENCE_TIMEZONE parse error: %w", err)
	}

	return cfg, nil
}

// Location resolves the reference timezone. Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

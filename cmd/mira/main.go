package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/olgafebr/mira/internal/config"
	"github.com/olgafebr/mira/internal/deck"
	"github.com/olgafebr/mira/internal/flow"
	"github.com/olgafebr/mira/internal/httpapi"
	"github.com/olgafebr/mira/internal/observability"
	"github.com/olgafebr/mira/internal/telegram"
	"github.com/olgafebr/mira/internal/throttle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	catalog, err := deck.Load(cfg.TarotDeckPath, cfg.MindDeckPath)
	if err != nil {
		log.Fatalf("catalog load failed: %v", err)
	}
	log.Printf("catalog loaded: %d tarot, %d mind cards", len(catalog.Tarot), len(catalog.Mind))
	warnMissingImages(catalog, cfg.CardsDir)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("telegram auth failed: %v", err)
	}
	log.Printf("authorized as @%s", api.Self.UserName)

	limiter := throttle.NewLimiter(cfg.OfferWindow, cfg.OfferCooldown, cfg.OfferThreshold)
	states := flow.NewStore()
	engine := flow.NewEngine(catalog, limiter, states, flow.Options{
		Location:        cfg.Location(),
		Metrics:         metrics,
		PauseBeforeCard: cfg.PauseBeforeCard,
		PauseBeforeMenu: cfg.PauseBeforeMenu,
	})

	bot := telegram.New(api, engine, metrics, cfg.CardsDir, cfg.ConsultURL)

	ops := httpapi.New(catalog, states)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: ops.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	go func() {
		log.Printf("ops server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	go func() {
		log.Printf("bot polling started")
		if err := bot.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("bot stopped: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

// warnMissingImages reports catalog entries whose image file is absent. Draws
// still work (the reply degrades to text), but the operator should know.
func warnMissingImages(catalog *deck.Catalog, cardsDir string) {
	for _, card := range catalog.Combined() {
		if card.Image == "" {
			log.Printf("card %q has no image field", card.Name)
			continue
		}
		path := filepath.Join(cardsDir, card.Image)
		if _, err := os.Stat(path); err != nil {
			log.Printf("card %q image missing: %s", card.Name, path)
		}
	}
}

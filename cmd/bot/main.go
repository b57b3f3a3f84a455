package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/eliseohh/keralastatsbot/internal/bot"
	"github.com/eliseohh/keralastatsbot/internal/config"
	"github.com/eliseohh/keralastatsbot/internal/logging"
	"github.com/eliseohh/keralastatsbot/internal/stats"
	"github.com/eliseohh/keralastatsbot/internal/store"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if lerr := logging.Setup(cfg.LogLevel, cfg.LogFormat); lerr != nil {
		fmt.Fprintln(os.Stderr, lerr)
		os.Exit(1)
	}
	if errors.Is(err, config.ErrMissingToken) {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1. Recent-message store
	st, err := store.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store init failed")
	}
	defer st.Close()

	// 2. Statistics API
	fetcher := stats.NewClient(cfg.StatsAPIURL, &http.Client{Timeout: cfg.StatsTimeout})

	// 3. Bot
	b, err := bot.New(bot.ConfigFrom(cfg), st, fetcher)
	if err != nil {
		log.Fatal().Err(err).Msg("bot init failed")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info().Msg("shutdown: signal received")
		b.Stop()
	}()

	log.Info().
		Str("store", cfg.StoreDriver).
		Str("date", cfg.StatsDate).
		Int("places", cfg.Places.Len()).
		Bool("isolate_failures", cfg.IsolateFailures).
		Msg("bot online, listening")
	b.Start()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ember/internal/bus"
	"ember/internal/config"
	"ember/internal/engine"
	"ember/internal/net"
	"ember/internal/ws"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := config.Load()
	log.Info().Str("config", cfg.String()).Msg("starting matching engine")

	redisBus, err := bus.Dial(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to bus")
	}
	defer redisBus.Close()

	eng := engine.New()
	hub := ws.NewHub()
	srv := net.New(redisBus, eng, hub, cfg.ListenAddr)

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

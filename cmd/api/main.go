package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/punchamoorthee/momoledger/internal/api"
	"github.com/punchamoorthee/momoledger/internal/auth"
	"github.com/punchamoorthee/momoledger/internal/config"
	"github.com/punchamoorthee/momoledger/internal/logger"
	"github.com/punchamoorthee/momoledger/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("", "info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	users, err := auth.ParseUsers(cfg.AuthUsers)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid AUTH_USERS")
	}

	// A file we cannot read or trust means no traffic.
	txStore, err := store.Open(store.NewFileStore(cfg.DataFile), log)
	if err != nil {
		log.Fatal().Err(err).Str("data_file", cfg.DataFile).Msg("Unable to load transactions")
	}
	log.Info().Str("data_file", cfg.DataFile).Int("transactions", txStore.Len()).Msg("Transactions loaded")

	handler := api.NewHandler(txStore)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handler, users, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

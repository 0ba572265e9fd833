package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lanewar/server/auth"
	"lanewar/server/config"
	"lanewar/server/logging"
	"lanewar/server/metrics"
	"lanewar/server/srv"
	"lanewar/server/store"
)

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	dir, _ := fs.GetString("config-dir")
	cfg, err := config.Load(dir, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN, log)
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := auth.NewAuth(st, auth.Options{
		KeyFile:  cfg.Auth.KeyFile,
		Issuer:   cfg.Auth.Issuer,
		TokenTTL: cfg.Auth.TokenTTL,
	}, log)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	rec, err := metrics.New(nil)
	if err != nil {
		return err
	}

	hub := srv.NewHub(srv.Options{
		Sim:           cfg.SimConfig(),
		Seed:          cfg.Sim.Seed,
		SnapshotEvery: cfg.Sim.SnapshotEveryTicks,
		AIRating:      cfg.Sim.AIRating,
	}, st, rec, log)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS(a))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	mux.HandleFunc("/api/register", a.HandleRegister)
	mux.HandleFunc("/api/login", a.HandleLogin)
	mux.HandleFunc("/api/leaderboard", hub.HandleLeaderboard)
	mux.Handle("/api/matches", a.RequireAuth(http.HandlerFunc(hub.HandleMatches)))

	s := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		errc <- s.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = s.Shutdown(shutdownCtx)
	hub.Shutdown()
	return err
}

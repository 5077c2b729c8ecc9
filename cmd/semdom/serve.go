package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veilmark/semdom/internal/config"
	"github.com/veilmark/semdom/internal/service"
	"github.com/veilmark/semdom/internal/store"
)

var serveConfigFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audit HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "YAML config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := &config.Config{}
	if serveConfigFile != "" {
		var err error
		cfg, err = config.LoadFile(serveConfigFile)
		if err != nil {
			return err
		}
	}
	cfg.Defaults()
	if v := env("SEMDOM_LISTEN", ""); v != "" {
		cfg.Listen = v
	}
	if v := env("SEMDOM_DB", ""); v != "" {
		cfg.DBPath = v
	}
	if v := env("SEMDOM_AUTH_HASH", ""); v != "" {
		cfg.AuthHash = v
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var st *store.Store
	if cfg.DBPath != "" {
		var err error
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	svc := service.New(cfg.ResolvedPolicy(), st, slog.Default())
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           svc.Router(cfg.AuthHash),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("semdom serving", "addr", cfg.Listen, "persistence", cfg.DBPath != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spinlab/coach/api"
	configx "github.com/spinlab/coach/pkg/config"
	logx "github.com/spinlab/coach/pkg/logger"
	"github.com/spinlab/coach/pkg/postgres"
	"github.com/spinlab/coach/pkg/supabase"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	log := logx.From(ctx)

	serverCfg, err := configx.New[api.Config]("SERVER")
	if err != nil {
		return err
	}
	authCfg, err := configx.New[supabase.Config]("SUPABASE")
	if err != nil {
		return err
	}
	auth, err := supabase.NewClient(*authCfg)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := api.NewServer(*serverCfg, a.orchestrator, auth, map[string]api.CheckFunc{
		"database": func(ctx context.Context) error { return postgres.Ping(ctx, a.db) },
	})

	server := &http.Server{
		Addr:         serverCfg.Addr,
		Handler:      handler,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serverCfg.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server exited gracefully")
	return nil
}

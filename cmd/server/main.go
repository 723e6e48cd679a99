package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/letieu/agent-directory/internal/app"
	"github.com/letieu/agent-directory/internal/server"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, false)
	if err != nil {
		log.Fatal("Failed to start:", err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           server.New(a.Directory, a.Search, a.Logger.Named("http")).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	a.Logger.Info("listening", zap.String("addr", srv.Addr), zap.Bool("ai", a.Pipeline != nil))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.Logger.Fatal("server failed", zap.Error(err))
	}
}

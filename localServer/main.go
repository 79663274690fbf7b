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

	"gitlab.connectwisedev.com/product-catalog/pkg/api"
	"gitlab.connectwisedev.com/product-catalog/pkg/app"
	"gitlab.connectwisedev.com/product-catalog/pkg/auth"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	defer rt.Close()

	svc, err := rt.Catalog(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize catalog: %v", err)
	}

	opts := api.RouterOptions{
		RateLimit: rt.Config.LocalRateLimit,
		Importer:  rt.Pipeline(),
	}
	if c := rt.Cache(ctx); c != nil {
		opts.Cache = c
	}
	if users := auth.ParseUsers(rt.Config.AuthUsers); len(users) > 0 {
		opts.Auth = auth.NewAuthorizer(users)
	}

	var uploads api.Uploader
	if u, err := rt.Uploads(); err == nil {
		uploads = u
	} else {
		logger.Warn("upload signing disabled", "error", err)
	}

	srv := &http.Server{
		Addr:              rt.Config.LocalAddr,
		Handler:           api.NewRouter(api.NewHandlers(svc, uploads, rt.Config.ListPageSize), opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("local server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down local server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tundeakins/billspay/internal/bootstrap"
	"github.com/tundeakins/billspay/internal/controller"
	"github.com/tundeakins/billspay/internal/processor"
	"github.com/tundeakins/billspay/internal/repository/postgres"
	"github.com/tundeakins/billspay/internal/service"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "billspay-api", "billspay")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	transactionRepo := postgres.NewTransactionRepository(app.Pool)

	// --- Processor adapters ---
	httpClient := processor.NewHTTPClient()
	airtime := processor.NewAirtime(app.Config.Airtime, httpClient, app.Logger, app.Metrics)
	dstv := processor.NewDSTV(app.Config.DSTV, httpClient, app.Logger, app.Metrics)
	bluecode := processor.NewBluecode(app.Config.Bluecode, httpClient, app.Logger, app.Metrics)
	quickteller := processor.NewQuickteller(app.Config.Quickteller, httpClient, app.Logger, app.Metrics)

	// --- Services ---
	billers := service.NewBillersService(quickteller, app.Redis, app.Config.Billers.CacheTTL, app.Logger)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		TransactionRepo: transactionRepo,
		Airtime:         airtime,
		DSTV:            dstv,
		Bluecode:        bluecode,
		Billers:         billers,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		CallbackSecret:  app.Config.Bluecode.CallbackSecret,
		Logger:          app.Logger,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}

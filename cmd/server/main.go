package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webmap "github.com/Sureshraksha7/next-webi-webmap"
	"github.com/Sureshraksha7/next-webi-webmap/api"
	"github.com/Sureshraksha7/next-webi-webmap/helper"
)

func main() {
	config, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("error loading database configuration: %v", err)
	}

	service, err := webmap.NewWebmap(config)
	if err != nil {
		log.Fatalf("error creating webmap: %v", err)
	}
	defer service.Close()

	logger := slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo},
	}))

	port := os.Getenv("WEBMAP_PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      api.NewRouter(service, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error running server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown", slog.String("error", err.Error()))
	}
}

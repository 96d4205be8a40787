package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tableau-notifier/internal/config"
	"github.com/tableau-notifier/internal/infrastructure/auditlog"
	"github.com/tableau-notifier/internal/infrastructure/connectedapp"
	"github.com/tableau-notifier/internal/infrastructure/tableau"
	twilioinfra "github.com/tableau-notifier/internal/infrastructure/twilio"
	transporthttp "github.com/tableau-notifier/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	// Configuration is validated eagerly: a missing variable aborts startup
	// with the variable's name rather than failing on the first request.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v, server shutting down...", err)
	}

	issuer, err := connectedapp.NewIssuer(cfg)
	if err != nil {
		log.Fatalf("connected-app issuer: %v", err)
	}

	deps := &transporthttp.Deps{
		Tableau:  tableau.NewClient(cfg),
		Notifier: twilioinfra.NewNotifier(cfg),
		Issuer:   issuer,
		AuditLog: auditlog.NewWriter(cfg.LogPath),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.AppPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Notification batches fan out to vendor calls per data source;
		// give writes room to finish.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alumni_connect/internal/api"
	"alumni_connect/internal/app/proxy"
	"alumni_connect/internal/platform/config"
)

func main() {
	config.Load()
	cfg := config.AppConfig

	if cfg.TicketingURL == "" {
		log.Fatal("TICKETING_URL must be set")
	}
	if cfg.TicketingUsername == "" || cfg.TicketingPassword == "" {
		log.Println("WARN: ticketing credentials are empty, upstream will likely reject requests")
	}

	forwarder := proxy.NewForwarder(cfg.TicketingURL, cfg.TicketingUsername, cfg.TicketingPassword, cfg.OutboundTimeout)

	server := &http.Server{
		Addr:         ":" + cfg.ProxyPort,
		Handler:      api.NewProxyRouter(forwarder),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Proxy server running on port %s", cfg.ProxyPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.ProxyPort, err)
		}
	}()

	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Proxy shutdown failed: %v", err)
	}
	log.Println("Proxy stopped gracefully.")
}

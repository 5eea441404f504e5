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

	"alumni_connect/internal/api"
	"alumni_connect/internal/app/service"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/app/worker"
	"alumni_connect/internal/common/security"
	"alumni_connect/internal/domain/repository"
	"alumni_connect/internal/platform/config"
	"alumni_connect/internal/platform/database"
	"alumni_connect/internal/platform/gotrue"
	"alumni_connect/internal/platform/mail"
	"alumni_connect/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect(cfg.DBConnStr)
	defer database.Close()
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
	if err := database.Migrate(migrateCtx, database.DB); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	migrateCancel()

	// 3. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	jobRepo := repository.NewPgJobRepository(database.DB)
	alumniRepo := repository.NewPgAlumniRepository(database.DB)
	sessionRepo := repository.NewRedisSessionRepository(queue.RDB)
	mailRepo := repository.NewRedisMailRepository(queue.RDB, cfg.MailQueueName)

	// 5. Initialize Services
	mailbox := service.NewMailboxService(mailRepo)
	var identity session.IdentityService
	switch cfg.IdentityProvider {
	case config.IdentityGoTrue:
		if cfg.GoTrueURL == "" {
			log.Fatal("GOTRUE_URL is required when IDENTITY_PROVIDER=gotrue")
		}
		identity = service.NewMirroredIdentity(gotrue.NewClient(cfg.GoTrueURL, cfg.GoTrueAPIKey, cfg.OutboundTimeout), userRepo)
	default:
		tokens := security.NewTokenManager(cfg.JWTKey, cfg.AccessTokenTTL)
		identity = service.NewAuthService(userRepo, sessionRepo, mailbox, tokens, cfg.RefreshTokenTTL, cfg.AppBaseURL)
	}
	log.Printf("Identity provider: %s", cfg.IdentityProvider)

	locker := queue.NewLocker(queue.RDB, cfg.InFlightLockTTL)
	outbound := &http.Client{Timeout: cfg.OutboundTimeout}

	services := api.Services{
		Identity:           identity,
		Dashboards:         service.NewDashboardService(userRepo, jobRepo, alumniRepo),
		Jobs:               service.NewJobService(jobRepo, alumniRepo),
		Mentorship:         service.NewMentorshipService(cfg.MentorshipProxyURL, outbound, locker),
		Referrals:          service.NewReferralService(cfg.ReferralAPIURL, cfg.ReferralAPIToken, outbound, alumniRepo, locker),
		ResetRedirectDelay: cfg.ResetRedirectDelay,
	}

	// 6. Initialize Mail Worker (as a goroutine)
	sender := mail.NewSender(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	mailWorker := worker.NewMailWorker(mailRepo, sender, cfg.MailMaxAttempts, cfg.MailRetryDelay)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go mailWorker.Start(workerCtx)
	fmt.Println("Mail worker started.")

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(services, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and mail worker stopped gracefully.")
}

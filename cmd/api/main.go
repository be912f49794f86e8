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
	otpapp "github.com/techcreator/otp-service/internal/application/otp"
	"github.com/techcreator/otp-service/internal/config"
	"github.com/techcreator/otp-service/internal/infrastructure/brevo"
	"github.com/techcreator/otp-service/internal/infrastructure/dynamo"
	"github.com/techcreator/otp-service/internal/infrastructure/smtp"
	snsinfra "github.com/techcreator/otp-service/internal/infrastructure/sns"
	transporthttp "github.com/techcreator/otp-service/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Brevo is the primary mail channel; fall back to SMTP when no API
	// key is configured (local dev).
	var mailer otpapp.Mailer
	if cfg.BrevoAPIKey != "" {
		mailer = brevo.NewSender(cfg)
	} else {
		log.Println("WARN: BREVO_API_KEY not set, falling back to SMTP")
		mailer = smtp.NewMailer(cfg)
	}

	// SNS SMS sender (optional — graceful fallback).
	var smsSender otpapp.SMSSender
	if sender, err := snsinfra.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		OTPStore:  dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		Identity:  dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		Mailer:    mailer,
		SMSSender: smsSender,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

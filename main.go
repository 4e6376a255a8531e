package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"raffle/database"
	"raffle/middleware"
	"raffle/models"
	"raffle/payments"
	"raffle/routes"
	"raffle/services"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	for _, envVar := range []string{"DB_HOST", "DB_USER", "DB_NAME"} {
		if os.Getenv(envVar) == "" && os.Getenv("DB_DSN") == "" {
			logrus.Fatalf("required environment variable %s is not set", envVar)
		}
	}

	db, err := database.Connect()
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&models.Draw{}, &models.Entry{}); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	// The payment gate is decided once here: a nil client disables it.
	provider := payments.NewClientFromEnv()
	svc := services.NewRaffleService(database.NewRaffleStore(db), providerOrNil(provider), services.Config{
		Prize:          envFloat("RAFFLE_PRIZE", 1000),
		TicketAmount:   envInt64("RAFFLE_TICKET_AMOUNT", 500),
		TicketCurrency: strings.ToLower(os.Getenv("RAFFLE_TICKET_CURRENCY")),
	})
	logrus.WithField("payments_enabled", svc.PaymentsEnabled()).Info("raffle service ready")

	router := routes.InitRouter(svc)
	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(
						middleware.RecoveryMiddleware(router),
					),
				),
			),
		),
	)

	// Primary close trigger is an external cron hitting /api/close-current;
	// RAFFLE_SELF_CLOSE runs an in-process hourly fallback.
	var scheduler *gocron.Scheduler
	if strings.EqualFold(os.Getenv("RAFFLE_SELF_CLOSE"), "true") {
		scheduler = gocron.NewScheduler(time.UTC)
		_, err := scheduler.Cron("0 * * * *").Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			// Close the hour that just ended, not the one that just began.
			drawID := models.DrawIDAt(time.Now().Add(-time.Hour))
			if _, err := svc.Close(ctx, drawID); err != nil {
				logrus.WithError(err).WithField("draw_id", drawID).Error("self-close failed")
			}
		})
		if err != nil {
			logrus.Fatalf("failed to schedule self-close job: %v", err)
		}
		scheduler.StartAsync()
		logrus.Info("self-close scheduler started")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
	logrus.Info("server exited")
}

// providerOrNil keeps a typed-nil *payments.Client from masquerading as a
// non-nil services.PaymentProvider.
func providerOrNil(c *payments.Client) services.PaymentProvider {
	if c == nil {
		return nil
	}
	return c
}

func envFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			return v
		}
	}
	return def
}

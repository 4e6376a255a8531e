package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"raffle/controllers"
	"raffle/database"
	"raffle/middleware"
	"raffle/services"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func InitRouter(svc *services.RaffleService) *mux.Router {
	r := mux.NewRouter()

	// CORS origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults.
	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "X-CRON-KEY", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	raffleC := controllers.NewRaffleController(svc)
	paymentC := controllers.NewPaymentController(svc)
	healthC := controllers.NewHealthController(database.DB, svc.PaymentsEnabled())

	r.Handle("/", http.HandlerFunc(healthC.Root)).Methods(http.MethodGet)
	r.Handle("/test", http.HandlerFunc(healthC.Test)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Rate limiter for the externally triggered close: 60/hour per IP.
	closeLimiter := middleware.NewIPRateLimiter(60, time.Hour)
	// Confirmation redirects may be retried aggressively by clients.
	confirmLimiter := middleware.NewWebhookLimiter(500, time.Hour, []string{"127.0.0.1"})

	api.Handle("/status", http.HandlerFunc(raffleC.Status)).Methods(http.MethodGet)
	api.Handle("/enter", http.HandlerFunc(raffleC.Enter)).Methods(http.MethodPost)
	api.Handle("/close-current", closeLimiter.Middleware(http.HandlerFunc(raffleC.CloseCurrent))).Methods(http.MethodPost)
	api.Handle("/pay/checkout-session", http.HandlerFunc(paymentC.CreateCheckoutSession)).Methods(http.MethodPost)
	api.Handle("/pay/confirm", confirmLimiter.Middleware(http.HandlerFunc(paymentC.ConfirmCheckout))).Methods(http.MethodGet)

	return r
}

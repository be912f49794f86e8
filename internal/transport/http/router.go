package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	otpapp "github.com/techcreator/otp-service/internal/application/otp"
	"github.com/techcreator/otp-service/internal/config"
	"github.com/techcreator/otp-service/internal/transport/http/handler"
	appmiddleware "github.com/techcreator/otp-service/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OTPStore  otpapp.Store
	Identity  otpapp.Identity
	Mailer    otpapp.Mailer
	SMSSender otpapp.SMSSender
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey", "X-Admin-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — both OTP endpoints are public and
	// attract brute-force traffic.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otpapp.NewService(otpapp.ServiceDeps{
		Store:      deps.OTPStore,
		Mailer:     deps.Mailer,
		SMSSender:  deps.SMSSender,
		Identity:   deps.Identity,
		TTL:        cfg.OTPTTL,
		RateWindow: cfg.RateWindow,
		RateMax:    cfg.RateMax,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc, cfg.AdminAPIKey)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/otp/send", otpH.Send)
		r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)
		r.Get("/otp/status", otpH.Status)
		r.Post("/otp/cleanup", otpH.Cleanup)
	})

	return r
}

package api

import (
	"net/http"
	"time"

	"alumni_connect/internal/api/handler"
	"alumni_connect/internal/api/middleware"
	"alumni_connect/internal/app/proxy"
	"alumni_connect/internal/app/service"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/domain/model"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Identity           session.IdentityService
	Dashboards         *service.DashboardService
	Jobs               *service.JobService
	Mentorship         *service.MentorshipService
	Referrals          *service.ReferralService
	ResetRedirectDelay time.Duration
}

func baseRouter(allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func NewRouter(svc Services, allowedOrigins []string) http.Handler {
	r := baseRouter(allowedOrigins)

	r.Route("/api/v1", func(v1 chi.Router) {
		// Every route sees a session provider; guards decide who gets through.
		v1.Use(middleware.Session(svc.Identity))

		authHandler := handler.NewAuthHandler(svc.ResetRedirectDelay)
		v1.Route("/auth", authHandler.RegisterRoutes)

		navHandler := handler.NewNavHandler()
		v1.Route("/nav", navHandler.RegisterRoutes)

		dashboardHandler := handler.NewDashboardHandler(svc.Dashboards)
		v1.Route("/dashboards", dashboardHandler.RegisterRoutes)

		studentHandler := handler.NewStudentHandler(svc.Mentorship, svc.Referrals)
		v1.Route("/student", func(sr chi.Router) {
			sr.Use(middleware.RequireRole(model.RoleStudent))
			studentHandler.RegisterRoutes(sr)
		})

		jobHandler := handler.NewJobHandler(svc.Jobs)
		v1.Route("/jobs", jobHandler.RegisterRoutes)
		v1.With(middleware.RequireUser).Get("/alumni", jobHandler.ListAlumni)
	})

	return r
}

// NewProxyRouter serves the credential proxy. Any origin may call it.
func NewProxyRouter(forwarder *proxy.Forwarder) http.Handler {
	r := baseRouter([]string{"*"})
	r.Post("/mentorship", forwarder.HandleMentorship)
	return r
}

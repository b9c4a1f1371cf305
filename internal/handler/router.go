package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/thiagojorgelins/to-do-list/internal/middleware"
	"github.com/thiagojorgelins/to-do-list/internal/service"
)

// Deps is everything the HTTP layer needs. main builds it once.
type Deps struct {
	Auth     *service.AuthService
	Tasks    *service.TaskService
	Log      logrus.FieldLogger
	Registry *prometheus.Registry

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// NewRouter wires every route of the API.
func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Auth, d.Log)
	taskHandler := NewTaskHandler(d.Tasks, d.Log)
	metrics := middleware.NewMetrics(d.Registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Log))
	r.Use(metrics.Handler)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(d.AuthRateLimitRPS, d.AuthRateLimitBurst, d.Log))
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/users/", authHandler.HandleRegister)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(d.Auth, d.Log))
		r.Get("/users/me", authHandler.HandleMe)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.HandleCreate)
			r.Get("/", taskHandler.HandleList)
			r.Get("/{task_id}", taskHandler.HandleGet)
			r.Put("/{task_id}", taskHandler.HandleUpdate)
			r.Delete("/{task_id}", taskHandler.HandleDelete)
		})
	})

	return r
}

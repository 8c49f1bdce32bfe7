package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/corefs/docfs/internal/logger"
)

// newRouter wires the coordinator's admin API surface: unauthenticated
// health, public login/refresh, then everything else behind jwtAuth (and
// requireAdmin where the teacher's router gates by role). Grounded on
// pkg/controlplane/api/router.go's middleware stack and route grouping.
func (s *Server) newRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth(s.jwt))
				r.Get("/me", s.handleMe)
				r.Post("/logout", s.handleLogout)
			})
		})

		r.Route("/users/me/password", func(r chi.Router) {
			r.Use(jwtAuth(s.jwt))
			r.Post("/", s.handleChangeOwnPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth(s.jwt))
			r.Use(requirePasswordChange("/api/v1/users/me/password"))

			r.Route("/users", func(r chi.Router) {
				r.Get("/{username}", s.handleGetUser)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin())
					r.Post("/", s.handleCreateUser)
					r.Get("/", s.handleListUsers)
					r.Put("/{username}", s.handleUpdateUser)
					r.Delete("/{username}", s.handleDeleteUser)
					r.Post("/{username}/password", s.handleResetPassword)
				})
			})

			r.Route("/nodes", func(r chi.Router) {
				r.Use(requireAdmin())
				r.Get("/", s.handleListNodes)
				r.Get("/{id}", s.handleGetNode)
			})
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debug("adminapi request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/staff-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the ambient settings of the HTTP layer
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	submissionHandler SubmissionHandler,
	adminHandler AdminHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
				r.Put("/password", authHandler.ChangePassword)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Get("/dashboard", submissionHandler.MyDashboard)
			})

			r.Route("/submissions", func(r chi.Router) {
				r.Get("/types", submissionHandler.ListTypes)
				r.Post("/", submissionHandler.Submit)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/attendance", func(r chi.Router) {
					r.Post("/preview", attendanceHandler.Preview)
					r.Post("/", attendanceHandler.Save)
					r.Get("/dates", attendanceHandler.ListDates)
					r.Get("/reports/{date}", attendanceHandler.GetDailyReport)
					r.Get("/summary", attendanceHandler.GetRangeSummary)

					r.Route("/exports", func(r chi.Router) {
						r.Get("/records/{date}", attendanceHandler.ExportRecords)
						r.Get("/summary/{date}", attendanceHandler.ExportDailySummary)
						r.Get("/summary", attendanceHandler.ExportRangeSummary)
					})
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/summary", submissionHandler.ListUserSummaries)
					r.Get("/{id}/dashboard", submissionHandler.UserDashboard)
				})

				r.Get("/submissions/exports/{date}", submissionHandler.ExportByDate)
				r.Post("/reset", adminHandler.Reset)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}

package api

import (
	"net/http"
	"time"

	"huntserver/internal/api/handler"
	"huntserver/internal/app/service"
	"huntserver/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	huntService *service.HuntService,
	puzzleService *service.PuzzleService,
	teamService *service.TeamService,
	messageService *service.MessageService,
	submissionService *service.SubmissionService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the "Authorization: Bearer T" token, puts claims in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Hunt routes (current + listing public, mutation authenticated)
		huntHandler := handler.NewHuntHandler(huntService)
		v1.Route("/hunts", huntHandler.RegisterRoutes)

		// Puzzle administration (authenticated)
		puzzleHandler := handler.NewPuzzleHandler(puzzleService)
		v1.Route("/puzzles", puzzleHandler.RegisterRoutes)

		// Team registration and status (authenticated)
		teamHandler := handler.NewTeamHandler(teamService, messageService)
		v1.Route("/teams", teamHandler.RegisterRoutes)

		// Submission grading (authenticated)
		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)
	})

	return r
}

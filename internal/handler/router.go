package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const apiPrefix = "/api/v1"

// NewRouter wires every route. Everything under /api/v1 except register and
// login requires a bearer token.
func NewRouter(h *Handler, tokens TokenAuthenticator, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(tokens, h.logger))

			r.Get("/auth/me", h.Me)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.Me)
				r.Put("/", h.UpdateMe)
				r.Delete("/", h.DeleteMe)
			})

			r.Route("/workout-types", func(r chi.Router) {
				r.Post("/", h.CreateWorkoutType)
				r.Get("/", h.ListWorkoutTypes)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetWorkoutType)
					r.Put("/", h.UpdateWorkoutType)
					r.Delete("/", h.DeleteWorkoutType)
					r.Put("/icon", h.UploadWorkoutTypeIcon)
					r.Delete("/icon", h.DeleteWorkoutTypeIcon)
				})
			})

			r.Route("/exercises", func(r chi.Router) {
				r.Post("/", h.CreateExercise)
				r.Get("/", h.ListExercises)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetExercise)
					r.Put("/", h.UpdateExercise)
					r.Delete("/", h.DeleteExercise)
				})
			})

			r.Route("/workouts", func(r chi.Router) {
				r.Post("/", h.CreateWorkout)
				r.Get("/", h.ListWorkouts)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetWorkout)
					r.Put("/", h.ReplaceWorkout)
					r.Patch("/", h.PatchWorkout)
					r.Delete("/", h.DeleteWorkout)
					r.Post("/exercises", h.AddWorkoutExercise)
					r.Put("/exercises/{exerciseId}", h.UpdateWorkoutExercise)
					r.Delete("/exercises/{exerciseId}", h.RemoveWorkoutExercise)
					r.Post("/export", h.ExportWorkout)
				})
			})
		})
	})

	return r
}

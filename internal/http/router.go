// Package http wires the handlers onto a chi router with the middleware
// stack every request passes through.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"campaignsmith/internal/handlers"
	"campaignsmith/internal/service"
	"campaignsmith/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Registry      *storage.Registry
	Projects      *service.ProjectService
	Maps          *service.MapService
	Markers       *service.MarkerService
	Notes         *service.NoteService
	Characters    *service.CharacterService
	Relationships *service.RelationshipService
	Limits        service.Limits
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	projects := handlers.NewProjectHandler(deps.Projects)
	maps := handlers.NewMapHandler(deps.Maps, deps.Limits)
	markers := handlers.NewMarkerHandler(deps.Markers)
	notes := handlers.NewNoteHandler(deps.Notes)
	characters := handlers.NewCharacterHandler(deps.Characters, deps.Limits)
	relationships := handlers.NewRelationshipHandler(deps.Relationships)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Registry))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Post("/", projects.Create)
			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projects.Get)
				r.Delete("/", projects.Delete)

				r.Get("/maps", maps.List)
				r.Post("/maps", maps.Create)

				r.Get("/notes", notes.List)
				r.Post("/notes", notes.Create)

				r.Get("/characters", characters.List)
				r.Post("/characters", characters.Create)

				r.Get("/relationships", relationships.List)
				r.Post("/relationships", relationships.Create)
				r.Delete("/relationships/{relationshipID}", relationships.Delete)
			})
		})

		r.Route("/maps/{mapID}", func(r chi.Router) {
			r.Get("/", maps.Get)
			r.Patch("/", maps.Patch)
			r.Delete("/", maps.Delete)
			r.Get("/file", maps.File)
			r.Get("/markers", markers.List)
			r.Post("/markers", markers.Create)
		})

		r.Delete("/relationships/{relationshipID}", relationships.DeleteByID)

		r.Route("/markers/{markerID}", func(r chi.Router) {
			r.Patch("/", markers.Patch)
			r.Delete("/", markers.Delete)
		})

		r.Route("/notes/{noteID}", func(r chi.Router) {
			r.Get("/", notes.Get)
			r.Put("/content", notes.Save)
			r.Get("/html", notes.HTML)
			r.Delete("/", notes.Delete)
		})

		r.Route("/characters/{characterID}", func(r chi.Router) {
			r.Get("/", characters.Get)
			r.Patch("/", characters.Patch)
			r.Delete("/", characters.Delete)
			r.Get("/photo", characters.Photo)
			r.Put("/photo", characters.SetPhoto)
			r.Delete("/photo", characters.ClearPhoto)
		})
	})

	return r
}

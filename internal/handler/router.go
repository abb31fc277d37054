package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"writersuite/internal/auth"
	"writersuite/internal/middleware"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Shelf        *ShelfHandler
	Books        *BookHandler
	Inspirations *InspirationHandler
	Settings     *SettingsHandler
	Views        *ViewHandler
}

// RouterConfig holds the cross-cutting options of the router
type RouterConfig struct {
	CORSOrigins []string
	Verifier    auth.JWTVerifier // nil disables auth
	Logger      *slog.Logger
}

// NewRouter wires the routes and middleware chain:
// CORS → RequestID → Recovery → RequestLogger → (Auth) → routes
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Verifier, cfg.Logger))

		r.Get("/shelf", h.Shelf.GetShelf)
		r.Get("/stats", h.Shelf.GetStats)

		r.Post("/books", h.Books.CreateBook)
		r.Route("/books/{book}", func(r chi.Router) {
			r.Get("/classification", h.Books.GetClassification)
			r.Get("/toc", h.Books.GetTOC)
			r.Get("/outline", h.Books.GetOutline)
			r.Get("/latest", h.Books.GetLatest)
			r.Post("/volumes", h.Books.CreateVolume)
			r.Post("/chapters", h.Books.CreateChapter)
			r.Get("/settings/{tab}", h.Books.GetSettingTab)
		})
		r.Delete("/nodes", h.Books.DeleteNode)

		r.Get("/inspirations", h.Inspirations.ListInspirations)
		r.Post("/inspirations", h.Inspirations.CreateInspiration)

		r.Post("/views", h.Views.OpenView)
		r.Get("/views/{id}", h.Views.GetView)
		r.Get("/views/{id}/events", h.Views.StreamView)
		r.Put("/views/{id}/book", h.Views.SelectBook)
		r.Delete("/views/{id}", h.Views.CloseView)

		r.Get("/settings", h.Settings.GetSettings)
		r.Patch("/settings", h.Settings.UpdateSettings)
	})

	// CORS wraps everything so pre-flight requests skip auth
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	return corsHandler.Handler(r)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// The kiosk front end is served from a different origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", indexHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", apiHandler.HealthHandler)
		r.Post("/upload", apiHandler.UploadHandler)
		r.Get("/locations", apiHandler.ListLocationsHandler)
		r.Get("/locations/{locationID}", apiHandler.GetLocationHandler)
		r.Post("/route", apiHandler.RouteHandler)
		r.Post("/ask", apiHandler.AskHandler)
		r.Post("/guide", apiHandler.GuideHandler)
		r.Get("/excel-format", apiHandler.ExcelFormatHandler)
		r.Get("/data/export", apiHandler.ExportHandler)
	})

	return r
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Campus wayfinding kiosk backend API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":       "/api/health",
			"upload":       "/api/upload (POST)",
			"locations":    "/api/locations (GET)",
			"route":        "/api/route (POST)",
			"ask":          "/api/ask (POST)",
			"guide":        "/api/guide (POST)",
			"excel_format": "/api/excel-format (GET)",
			"export":       "/api/data/export (GET)",
		},
	})
}

package app

import (
	"net/http"

	"github.com/citycal/citycal/internal/config"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return requireAdmin(cfg.Admin.Password, h)
	}

	// Events
	r.HandleFunc("/api/events", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events", admin(deps.EventHandler.CreateEvent)).Methods("POST")
	r.HandleFunc("/api/events", admin(deps.EventHandler.UpdateEvent)).Methods("PUT")
	r.HandleFunc("/api/events", admin(deps.EventHandler.DeleteEvent)).Methods("DELETE")
	r.HandleFunc("/api/events/cleanup", admin(deps.EventHandler.CleanupPastEvents)).Methods("POST")
	r.HandleFunc("/api/events/feed.ics", deps.FeedHandler.GetFeed).Methods("GET")

	// Categories
	r.HandleFunc("/api/categories", deps.CategoryHandler.ListCategories).Methods("GET")

	// Storage migration
	r.HandleFunc("/api/migrate", admin(deps.MigratorHandler.Migrate)).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Errorf("failed to write health response: %v", err)
		}
	}).Methods("GET")
}

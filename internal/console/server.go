// Package console serves the operator console: JSON reads over the store
// snapshots, the mutation entry points, dashboard figures and a websocket
// feed of live calls.
package console

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iamarketings/Operator/internal/httpapi"
	"github.com/iamarketings/Operator/internal/models"
	"github.com/iamarketings/Operator/internal/simulator"
	"github.com/iamarketings/Operator/internal/store"
)

type Server struct {
	store  *store.Store
	sim    *simulator.Simulator
	logger *slog.Logger
}

func New(st *store.Store, sim *simulator.Simulator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: st, sim: sim, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(httpapi.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpapi.HealthHandler(nil))
	r.Get("/version", httpapi.VersionHandler("pbxconsole"))

	r.Route("/console", func(c chi.Router) {
		c.Route("/extensions", func(c chi.Router) {
			c.Get("/", s.listExtensions)
			c.Post("/", createHandler(s.store.AddExtension))
			c.Put("/{id}", updateHandler(s.store.UpdateExtension, func(e *models.Extension, id string) { e.ID = id }))
			c.Delete("/{id}", removeHandler(s.store.RemoveExtension))
		})
		c.Route("/trunks", func(c chi.Router) {
			c.Get("/", snapshotHandler(s.store.Trunks))
			c.Post("/", createHandler(s.store.AddTrunk))
			c.Put("/{id}", updateHandler(s.store.UpdateTrunk, func(t *models.Trunk, id string) { t.ID = id }))
			c.Delete("/{id}", removeHandler(s.store.RemoveTrunk))
		})
		c.Route("/queues", func(c chi.Router) {
			c.Get("/", snapshotHandler(s.store.Queues))
			c.Post("/", createHandler(s.store.AddQueue))
			c.Put("/{id}", updateHandler(s.store.UpdateQueue, func(q *models.Queue, id string) { q.ID = id }))
			c.Delete("/{id}", removeHandler(s.store.RemoveQueue))
			c.Post("/{id}/members/{extID}/toggle", s.toggleMember)
		})
		c.Get("/cdr", s.listCDRs)

		c.Get("/calls", snapshotHandler(s.sim.Calls))
		c.Get("/activity", snapshotHandler(s.sim.Activity))
		c.Get("/stats", s.stats)
		c.Get("/live", s.live)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

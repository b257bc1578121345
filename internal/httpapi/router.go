package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"github.com/iamarketings/Operator/internal/config"
	"github.com/iamarketings/Operator/internal/models"
	"github.com/iamarketings/Operator/internal/repo"
)

// DB is what the backend needs from the pool. *pgxpool.Pool and pgxmock pools satisfy it.
type DB interface {
	repo.DBTX
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

func NewRouter(cfg *config.Config, pool DB) http.Handler {
	r := chi.NewRouter()
	store := repo.New(pool)

	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", HealthHandler(pool))
	r.Get("/version", VersionHandler("pbxapid"))

	// XML_CURL endpoints
	r.Route("/fs/xml", func(fs chi.Router) {
		fs.With(XMLCurlBasicAuth(cfg)).Get("/directory", DirectoryHandler(store))
	})

	// CDR ingest
	r.With(CDRTokenAuth(cfg)).Post("/fs/cdr", CDRIngestHandler(pool))

	r.Route("/api", func(api chi.Router) {
		api.Use(APIKeyAuth(cfg))

		api.Route("/extensions", func(c chi.Router) {
			c.Get("/", listHandler(store.ListExtensions))
			c.Post("/", createHandler(store.CreateExtension, models.NewExtension.Validate))
			c.Put("/{id}", updateHandler(store.UpdateExtension, func(e *models.Extension, id string) { e.ID = id }, models.Extension.Validate))
			c.Delete("/{id}", deleteHandler(store.DeleteExtension))
		})
		api.Route("/trunks", func(c chi.Router) {
			c.Get("/", listHandler(store.ListTrunks))
			c.Post("/", createHandler(store.CreateTrunk, models.NewTrunk.Validate))
			c.Put("/{id}", updateHandler(store.UpdateTrunk, func(t *models.Trunk, id string) { t.ID = id }, models.Trunk.Validate))
			c.Delete("/{id}", deleteHandler(store.DeleteTrunk))
		})
		api.Route("/queues", func(c chi.Router) {
			c.Get("/", listHandler(store.ListQueues))
			c.Post("/", createHandler(store.CreateQueue, models.NewQueue.Validate))
			c.Put("/{id}", updateHandler(store.UpdateQueue, func(q *models.Queue, id string) { q.ID = id }, models.Queue.Validate))
			c.Delete("/{id}", deleteHandler(store.DeleteQueue))
		})

		api.Get("/cdr", CDRQueryHandler(store))
		api.Get("/recordings/{id}", RecordingHandler(cfg, store))
	})

	return r
}

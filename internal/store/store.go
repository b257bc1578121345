// Package store keeps the console's canonical collections (extensions, trunks,
// queues and CDRs) and reconciles them with the REST backend.
//
// The store starts on a seed dataset and replaces each collection with the
// backend's copy once that copy has been fetched. Mutations try the backend
// first and always apply locally. A failed remote write is logged and the
// equivalent local change is applied instead, so callers never see an error.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iamarketings/Operator/internal/apiclient"
	"github.com/iamarketings/Operator/internal/models"
	"github.com/iamarketings/Operator/internal/sample"
)

// Remote is the subset of the REST client the store relies on.
type Remote interface {
	List(ctx context.Context, collection string, out any) error
	Create(ctx context.Context, collection string, body, out any) error
	Update(ctx context.Context, collection, id string, body any) error
	Delete(ctx context.Context, collection, id string) error
}

var (
	errNullCollection = errors.New("backend returned null instead of an array")
	errMissingID      = errors.New("backend created entity without id")
)

type Source string

const (
	SourceRemote        Source = "remote"
	SourceLocalFallback Source = "local"
)

// Result is what a mutation applied. Err carries the swallowed remote failure
// when Source is SourceLocalFallback.
type Result[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
	Err    error  `json:"-"`
}

func (r Result[T]) Fallback() bool {
	return r.Source == SourceLocalFallback
}

// Change is published after every accepted mutation or load replacement.
type Change struct {
	Collection string `json:"collection"`
	Version    uint64 `json:"version"`
}

// LoadReport holds the fetch outcome of each collection; nil means replaced.
type LoadReport struct {
	Extensions error
	Trunks     error
	Queues     error
	CDRs       error
}

func (r LoadReport) OK() bool {
	return r.Extensions == nil && r.Trunks == nil && r.Queues == nil && r.CDRs == nil
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDFunc overrides the token used for ids synthesized on create fallback.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

type Store struct {
	remote Remote
	logger *slog.Logger
	newID  func() string

	extensions *collection[models.Extension]
	trunks     *collection[models.Trunk]
	queues     *collection[models.Queue]
	cdrs       *collection[models.CDR]

	subMu sync.RWMutex
	subs  map[int]chan Change
	next  int
}

func New(remote Remote, seed sample.Dataset, opts ...Option) *Store {
	s := &Store{
		remote: remote,
		logger: slog.Default(),
		newID:  uuid.NewString,
		subs:   make(map[int]chan Change),

		extensions: newCollection(apiclient.Extensions, func(e models.Extension) string { return e.ID }, seed.Extensions),
		trunks:     newCollection(apiclient.Trunks, func(t models.Trunk) string { return t.ID }, seed.Trunks),
		queues:     newCollection(apiclient.Queues, func(q models.Queue) string { return q.ID }, seed.Queues),
		cdrs:       newCollection(apiclient.CDR, func(c models.CDR) string { return c.ID }, seed.CDRs),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the four collections concurrently. Each one is replaced on
// success and left as it was on failure, independently of the others.
func (s *Store) Load(ctx context.Context) LoadReport {
	var (
		report LoadReport
		g      errgroup.Group
	)
	// A plain Group, not WithContext: one failed fetch must not cancel the others.
	g.Go(func() error { report.Extensions = load(ctx, s, s.extensions); return report.Extensions })
	g.Go(func() error { report.Trunks = load(ctx, s, s.trunks); return report.Trunks })
	g.Go(func() error { report.Queues = load(ctx, s, s.queues); return report.Queues })
	g.Go(func() error { report.CDRs = load(ctx, s, s.cdrs); return report.CDRs })
	if err := g.Wait(); err != nil {
		s.logger.Warn("initial load incomplete, serving local data where the backend failed", "first_error", err)
	}
	return report
}

// Start runs Load in the background. The returned channel yields the report
// once and is then closed.
func (s *Store) Start(ctx context.Context) <-chan LoadReport {
	done := make(chan LoadReport, 1)
	go func() {
		defer close(done)
		done <- s.Load(ctx)
	}()
	return done
}

func load[T any](ctx context.Context, s *Store, c *collection[T]) error {
	var items []T
	err := s.remote.List(ctx, c.name, &items)
	if err == nil && items == nil {
		err = errNullCollection
	}
	if err != nil {
		s.logger.Warn("backend unavailable, keeping local collection", "collection", c.name, "error", err)
		return err
	}
	s.notify(c.name, c.replace(items))
	s.logger.Info("collection loaded from backend", "collection", c.name, "count", len(items))
	return nil
}

func (s *Store) Extensions() []models.Extension {
	items, _ := s.extensions.snapshot()
	return items
}

func (s *Store) Trunks() []models.Trunk {
	items, _ := s.trunks.snapshot()
	return items
}

func (s *Store) Queues() []models.Queue {
	items, _ := s.queues.snapshot()
	return items
}

func (s *Store) CDRs() []models.CDR {
	items, _ := s.cdrs.snapshot()
	return items
}

func (s *Store) Extension(id string) (models.Extension, bool) { return s.extensions.find(id) }
func (s *Store) Trunk(id string) (models.Trunk, bool)         { return s.trunks.find(id) }
func (s *Store) Queue(id string) (models.Queue, bool)         { return s.queues.find(id) }

// Subscribe returns a channel of changes and a function that cancels the
// subscription. Changes are dropped when the buffer is full.
func (s *Store) Subscribe(bufSize int) (<-chan Change, func()) {
	ch := make(chan Change, bufSize)
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(name string, version uint64) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- Change{Collection: name, Version: version}:
		default:
		}
	}
}

package store

import (
	"context"

	"github.com/iamarketings/Operator/internal/models"
)

func (s *Store) AddExtension(ctx context.Context, ext models.NewExtension) Result[models.Extension] {
	return add(ctx, s, s.extensions, ext, "ext", ext.Extension)
}

func (s *Store) UpdateExtension(ctx context.Context, ext models.Extension) Result[models.Extension] {
	return update(ctx, s, s.extensions, ext)
}

func (s *Store) RemoveExtension(ctx context.Context, id string) Result[string] {
	return remove(ctx, s, s.extensions, id)
}

func (s *Store) AddTrunk(ctx context.Context, trunk models.NewTrunk) Result[models.Trunk] {
	return add(ctx, s, s.trunks, trunk, "trunk", trunk.Trunk)
}

func (s *Store) UpdateTrunk(ctx context.Context, trunk models.Trunk) Result[models.Trunk] {
	return update(ctx, s, s.trunks, trunk)
}

func (s *Store) RemoveTrunk(ctx context.Context, id string) Result[string] {
	return remove(ctx, s, s.trunks, id)
}

func (s *Store) AddQueue(ctx context.Context, queue models.NewQueue) Result[models.Queue] {
	return add(ctx, s, s.queues, queue, "queue", queue.Queue)
}

func (s *Store) UpdateQueue(ctx context.Context, queue models.Queue) Result[models.Queue] {
	return update(ctx, s, s.queues, queue)
}

func (s *Store) RemoveQueue(ctx context.Context, id string) Result[string] {
	return remove(ctx, s, s.queues, id)
}

// ToggleQueueMember adds or removes ext from the queue's members and writes
// the queue through UpdateQueue. ok is false when the queue is unknown.
func (s *Store) ToggleQueueMember(ctx context.Context, queueID string, ext models.Extension) (res Result[models.Queue], ok bool) {
	q, ok := s.queues.find(queueID)
	if !ok {
		return res, false
	}
	return s.UpdateQueue(ctx, q.ToggleMember(ext)), true
}

func add[N, T any](ctx context.Context, s *Store, c *collection[T], payload N, prefix string, local func(id string) T) Result[T] {
	var created T
	err := s.remote.Create(ctx, c.name, payload, &created)
	if err == nil && c.id(created) == "" {
		err = errMissingID
	}
	if err == nil {
		s.notify(c.name, c.append(created))
		return Result[T]{Value: created, Source: SourceRemote}
	}

	v := local(prefix + "-" + s.newID())
	s.logger.Warn("remote create failed, applied locally", "collection", c.name, "id", c.id(v), "error", err)
	s.notify(c.name, c.append(v))
	return Result[T]{Value: v, Source: SourceLocalFallback, Err: err}
}

func update[T any](ctx context.Context, s *Store, c *collection[T], v T) Result[T] {
	id := c.id(v)
	err := s.remote.Update(ctx, c.name, id, v)
	s.notify(c.name, c.update(v))
	if err != nil {
		s.logger.Warn("remote update failed, applied locally", "collection", c.name, "id", id, "error", err)
		return Result[T]{Value: v, Source: SourceLocalFallback, Err: err}
	}
	return Result[T]{Value: v, Source: SourceRemote}
}

func remove[T any](ctx context.Context, s *Store, c *collection[T], id string) Result[string] {
	err := s.remote.Delete(ctx, c.name, id)
	s.notify(c.name, c.remove(id))
	if err != nil {
		s.logger.Warn("remote delete failed, applied locally", "collection", c.name, "id", id, "error", err)
		return Result[string]{Value: id, Source: SourceLocalFallback, Err: err}
	}
	return Result[string]{Value: id, Source: SourceRemote}
}

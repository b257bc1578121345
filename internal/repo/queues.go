package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iamarketings/Operator/internal/models"
)

func scanQueue(row pgx.Row) (models.Queue, error) {
	var (
		q        models.Queue
		strategy string
		members  []byte
	)
	if err := row.Scan(&q.ID, &q.Name, &strategy, &q.WaitingCalls, &members); err != nil {
		return q, err
	}
	q.Strategy = models.Strategy(strategy)
	q.Members = []models.QueueMember{}
	if err := json.Unmarshal(members, &q.Members); err != nil {
		return q, fmt.Errorf("decode members of %s: %w", q.ID, err)
	}
	return q, nil
}

func encodeMembers(members []models.QueueMember) ([]byte, error) {
	if members == nil {
		members = []models.QueueMember{}
	}
	buf, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("encode members: %w", err)
	}
	return buf, nil
}

func (r *Repository) ListQueues(ctx context.Context) ([]models.Queue, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, strategy, waiting_calls, members FROM pbx.queues ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}
	defer rows.Close()

	queues := []models.Queue{}
	for rows.Next() {
		q, err := scanQueue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queue: %w", err)
		}
		queues = append(queues, q)
	}
	return queues, rows.Err()
}

func (r *Repository) CreateQueue(ctx context.Context, n models.NewQueue) (models.Queue, error) {
	members, err := encodeMembers(n.Members)
	if err != nil {
		return models.Queue{}, err
	}
	q, err := scanQueue(r.db.QueryRow(ctx, `
        INSERT INTO pbx.queues (name, strategy, members)
        VALUES ($1, $2, $3)
        RETURNING id, name, strategy, waiting_calls, members
    `, n.Name, string(n.Strategy), members))
	if err != nil {
		return q, fmt.Errorf("insert queue: %w", err)
	}
	return q, nil
}

func (r *Repository) UpdateQueue(ctx context.Context, q models.Queue) error {
	members, err := encodeMembers(q.Members)
	if err != nil {
		return err
	}
	return affectedOne(r.db.Exec(ctx, `
        UPDATE pbx.queues SET name=$2, strategy=$3, members=$4 WHERE id=$1
    `, q.ID, q.Name, string(q.Strategy), members))
}

func (r *Repository) DeleteQueue(ctx context.Context, id string) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM pbx.queues WHERE id=$1`, id))
}

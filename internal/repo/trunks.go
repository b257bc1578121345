package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iamarketings/Operator/internal/models"
)

func scanTrunk(row pgx.Row) (models.Trunk, error) {
	var (
		t           models.Trunk
		typ, status string
	)
	err := row.Scan(&t.ID, &t.Name, &typ, &status, &t.Host)
	t.Type = models.TrunkType(typ)
	t.Status = models.TrunkStatus(status)
	return t, err
}

func (r *Repository) ListTrunks(ctx context.Context) ([]models.Trunk, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, type, status, host FROM pbx.trunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list trunks: %w", err)
	}
	defer rows.Close()

	trunks := []models.Trunk{}
	for rows.Next() {
		t, err := scanTrunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trunk: %w", err)
		}
		trunks = append(trunks, t)
	}
	return trunks, rows.Err()
}

func (r *Repository) CreateTrunk(ctx context.Context, n models.NewTrunk) (models.Trunk, error) {
	t, err := scanTrunk(r.db.QueryRow(ctx, `
        INSERT INTO pbx.trunks (name, type, host)
        VALUES ($1, $2, $3)
        RETURNING id, name, type, status, host
    `, n.Name, string(n.Type), n.Host))
	if err != nil {
		return t, fmt.Errorf("insert trunk: %w", err)
	}
	return t, nil
}

func (r *Repository) UpdateTrunk(ctx context.Context, t models.Trunk) error {
	return affectedOne(r.db.Exec(ctx, `
        UPDATE pbx.trunks SET name=$2, type=$3, host=$4 WHERE id=$1
    `, t.ID, t.Name, string(t.Type), t.Host))
}

func (r *Repository) DeleteTrunk(ctx context.Context, id string) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM pbx.trunks WHERE id=$1`, id))
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iamarketings/Operator/internal/models"
)

const (
	DefaultCDRLimit = 100
	MaxCDRLimit     = 1000
)

type CDRFilter struct {
	From   *time.Time
	To     *time.Time
	Caller string
	Callee string
	Limit  int
}

// ListCDRs returns the newest records first, with recordings joined in.
func (r *Repository) ListCDRs(ctx context.Context, f CDRFilter) ([]models.CDR, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultCDRLimit
	}
	if limit > MaxCDRLimit {
		limit = MaxCDRLimit
	}

	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, cond+" $"+strconv.Itoa(len(args)))
	}
	if f.From != nil {
		add("c.calldate >=", *f.From)
	}
	if f.To != nil {
		add("c.calldate <=", *f.To)
	}
	if f.Caller != "" {
		add("c.src =", f.Caller)
	}
	if f.Callee != "" {
		add("c.dst =", f.Callee)
	}

	query := `SELECT c.id, c.calldate, c.clid, c.src, c.dst, c.dcontext, c.channel, c.dstchannel,
        c.lastapp, c.lastdata, c.duration, c.billsec, c.disposition, c.amaflags,
        c.accountcode, c.uniqueid, c.userfield, COALESCE(r.path, '')
        FROM pbx.cdr c LEFT JOIN pbx.recordings r ON r.cdr_id = c.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.calldate DESC LIMIT " + strconv.Itoa(limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cdr: %w", err)
	}
	defer rows.Close()

	records := []models.CDR{}
	for rows.Next() {
		var (
			c           models.CDR
			disposition string
		)
		if err := rows.Scan(
			&c.ID, &c.CallDate, &c.CallerID, &c.Src, &c.Dst, &c.Context,
			&c.Channel, &c.DestinationChannel, &c.LastApplication, &c.LastData,
			&c.Duration, &c.BillableSeconds, &disposition, &c.AMAFlags,
			&c.AccountCode, &c.UniqueID, &c.UserField, &c.RecordingFile,
		); err != nil {
			return nil, fmt.Errorf("scan cdr: %w", err)
		}
		c.Disposition = models.Disposition(disposition)
		records = append(records, c)
	}
	return records, rows.Err()
}

// RecordingPath returns the stored path of a CDR's recording, relative to the recordings base path.
func (r *Repository) RecordingPath(ctx context.Context, cdrID string) (string, error) {
	var path string
	err := r.db.QueryRow(ctx, `SELECT path FROM pbx.recordings WHERE cdr_id=$1`, cdrID).Scan(&path)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return path, err
}

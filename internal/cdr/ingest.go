package cdr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iamarketings/Operator/internal/models"
)

// txStarter is the minimal interface needed from a pgx pool for InsertCDR.
type txStarter interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

var (
	// ErrInvalidCDRData is returned when the payload is malformed or breaks a CDR invariant.
	ErrInvalidCDRData = errors.New("invalid cdr data")
	// ErrDuplicateCDR is returned when the uniqueid already exists.
	ErrDuplicateCDR = errors.New("duplicate cdr")
)

// Validate checks the invariants every stored CDR must hold.
func Validate(c models.CDR) error {
	if strings.TrimSpace(c.UniqueID) == "" {
		return fmt.Errorf("%w: missing uniqueid", ErrInvalidCDRData)
	}
	if c.CallDate.IsZero() {
		return fmt.Errorf("%w: missing calldate", ErrInvalidCDRData)
	}
	if !c.Disposition.Valid() {
		return fmt.Errorf("%w: unknown disposition %q", ErrInvalidCDRData, c.Disposition)
	}
	if c.Duration < 0 || c.BillableSeconds < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidCDRData)
	}
	if c.BillableSeconds > c.Duration {
		return fmt.Errorf("%w: billsec %d exceeds duration %d", ErrInvalidCDRData, c.BillableSeconds, c.Duration)
	}
	if c.Disposition != models.DispositionAnswered {
		if c.BillableSeconds != 0 {
			return fmt.Errorf("%w: billsec must be 0 for %s", ErrInvalidCDRData, c.Disposition)
		}
		if c.RecordingFile != "" {
			return fmt.Errorf("%w: recording on unanswered call", ErrInvalidCDRData)
		}
	}
	return nil
}

// InsertCDR decodes a CDR posted by the switch and stores it in pbx.cdr, with
// its recording in pbx.recordings. It returns the id assigned to the record.
func InsertCDR(ctx context.Context, pool txStarter, raw []byte) (id string, err error) {
	var c models.CDR
	if err := json.Unmarshal(raw, &c); err != nil {
		slog.Error("failed to unmarshal cdr", "error", err)
		return "", fmt.Errorf("%w: %v", ErrInvalidCDRData, err)
	}

	if err := Validate(c); err != nil {
		slog.Warn("rejected cdr", "uniqueid", c.UniqueID, "error", err)
		return "", err
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				slog.Error("failed to rollback cdr transaction", "error", rbErr)
			}
			return
		}

		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit tx: %w", commitErr)
		}
	}()

	err = tx.QueryRow(ctx, `
        INSERT INTO pbx.cdr (
            calldate, clid, src, dst, dcontext,
            channel, dstchannel, lastapp, lastdata,
            duration, billsec, disposition, amaflags,
            accountcode, uniqueid, userfield, raw_json
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
        )
        ON CONFLICT (uniqueid) DO NOTHING
        RETURNING id
    `,
		c.CallDate.UTC(),
		c.CallerID,
		c.Src,
		c.Dst,
		c.Context,
		c.Channel,
		c.DestinationChannel,
		c.LastApplication,
		c.LastData,
		c.Duration,
		c.BillableSeconds,
		string(c.Disposition),
		c.AMAFlags,
		c.AccountCode,
		c.UniqueID,
		c.UserField,
		raw,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Info("cdr already exists", "uniqueid", c.UniqueID)
			err = ErrDuplicateCDR
			return "", err
		}
		err = fmt.Errorf("insert cdr: %w", err)
		return "", err
	}

	if file := strings.TrimSpace(c.RecordingFile); file != "" {
		if _, err = tx.Exec(ctx, `
            INSERT INTO pbx.recordings (cdr_id, path, backend)
            VALUES ($1, $2, 'local')
            ON CONFLICT (cdr_id) DO UPDATE
            SET path = EXCLUDED.path
        `, id, file); err != nil {
			err = fmt.Errorf("upsert recording: %w", err)
			return "", err
		}
		slog.Info("upserted recording", "uniqueid", c.UniqueID, "path", file)
	}

	slog.Info("inserted cdr", "id", id, "uniqueid", c.UniqueID, "disposition", c.Disposition)
	return id, nil
}

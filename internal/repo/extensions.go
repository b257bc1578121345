package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iamarketings/Operator/internal/models"
)

const extensionColumns = `id, number, name, secret, protocol, status, ip_address, user_agent, voicemail, call_recording`

func scanExtension(row pgx.Row) (models.Extension, error) {
	var (
		e                        models.Extension
		protocol, status         string
		voicemail, callRecording []byte
	)
	if err := row.Scan(&e.ID, &e.Number, &e.Name, &e.Secret, &protocol, &status,
		&e.IPAddress, &e.UserAgent, &voicemail, &callRecording); err != nil {
		return e, err
	}
	e.Protocol = models.Protocol(protocol)
	e.Status = models.ExtensionStatus(status)
	if err := json.Unmarshal(voicemail, &e.Voicemail); err != nil {
		return e, fmt.Errorf("decode voicemail of %s: %w", e.ID, err)
	}
	if err := json.Unmarshal(callRecording, &e.CallRecording); err != nil {
		return e, fmt.Errorf("decode call_recording of %s: %w", e.ID, err)
	}
	return e, nil
}

func (r *Repository) ListExtensions(ctx context.Context) ([]models.Extension, error) {
	rows, err := r.db.Query(ctx, `SELECT `+extensionColumns+` FROM pbx.extensions ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	defer rows.Close()

	exts := []models.Extension{}
	for rows.Next() {
		e, err := scanExtension(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extension: %w", err)
		}
		exts = append(exts, e)
	}
	return exts, rows.Err()
}

// CreateExtension inserts n and returns the row with its server-assigned id and defaults.
func (r *Repository) CreateExtension(ctx context.Context, n models.NewExtension) (models.Extension, error) {
	voicemail, callRecording, err := marshalExtensionJSON(n.Voicemail, n.CallRecording)
	if err != nil {
		return models.Extension{}, err
	}
	e, err := scanExtension(r.db.QueryRow(ctx, `
        INSERT INTO pbx.extensions (number, name, secret, protocol, voicemail, call_recording)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+extensionColumns,
		n.Number, n.Name, n.Secret, string(n.Protocol), voicemail, callRecording))
	if err != nil {
		return e, fmt.Errorf("insert extension: %w", err)
	}
	return e, nil
}

// UpdateExtension writes the client-editable fields of e.
func (r *Repository) UpdateExtension(ctx context.Context, e models.Extension) error {
	voicemail, callRecording, err := marshalExtensionJSON(e.Voicemail, e.CallRecording)
	if err != nil {
		return err
	}
	return affectedOne(r.db.Exec(ctx, `
        UPDATE pbx.extensions
        SET number=$2, name=$3, secret=$4, protocol=$5, voicemail=$6, call_recording=$7
        WHERE id=$1
    `, e.ID, e.Number, e.Name, e.Secret, string(e.Protocol), voicemail, callRecording))
}

func (r *Repository) DeleteExtension(ctx context.Context, id string) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM pbx.extensions WHERE id=$1`, id))
}

// ExtensionByNumber is used by the directory export.
func (r *Repository) ExtensionByNumber(ctx context.Context, number string) (models.Extension, error) {
	e, err := scanExtension(r.db.QueryRow(ctx, `SELECT `+extensionColumns+` FROM pbx.extensions WHERE number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return e, ErrNotFound
	}
	return e, err
}

func marshalExtensionJSON(vm models.Voicemail, rec models.CallRecording) ([]byte, []byte, error) {
	voicemail, err := json.Marshal(vm)
	if err != nil {
		return nil, nil, fmt.Errorf("encode voicemail: %w", err)
	}
	callRecording, err := json.Marshal(rec)
	if err != nil {
		return nil, nil, fmt.Errorf("encode call_recording: %w", err)
	}
	return voicemail, callRecording, nil
}

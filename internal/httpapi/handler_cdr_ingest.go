package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/iamarketings/Operator/internal/cdr"
)

func CDRIngestHandler(pool DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		id, err := cdr.InsertCDR(r.Context(), pool, body)
		switch {
		case errors.Is(err, cdr.ErrInvalidCDRData):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, cdr.ErrDuplicateCDR):
			http.Error(w, "duplicate cdr", http.StatusConflict)
			return
		case err != nil:
			http.Error(w, "failed to insert cdr", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

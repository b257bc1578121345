package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/iamarketings/Operator/internal/models"
	"github.com/iamarketings/Operator/internal/repo"
)

type cdrLister interface {
	ListCDRs(ctx context.Context, f repo.CDRFilter) ([]models.CDR, error)
}

// CDRQueryHandler answers with a bare JSON array, newest first. Unparseable
// from/to values are ignored.
func CDRQueryHandler(store cdrLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		f := repo.CDRFilter{
			Caller: q.Get("caller"),
			Callee: q.Get("callee"),
		}
		f.Limit, _ = strconv.Atoi(q.Get("limit"))

		if t, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
			f.From = &t
		}
		if t, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
			f.To = &t
		}

		records, err := store.ListCDRs(r.Context(), f)
		if err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

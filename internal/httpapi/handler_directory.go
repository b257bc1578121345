package httpapi

import (
	"encoding/xml"
	"net/http"

	"github.com/iamarketings/Operator/internal/fsxml"
	"github.com/iamarketings/Operator/internal/repo"
)

func DirectoryHandler(store *repo.Repository) http.HandlerFunc {
	svc := &fsxml.DirectoryService{Extensions: store}

	return func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")
		domain := r.URL.Query().Get("domain")

		if user == "" || domain == "" {
			http.Error(w, "missing user or domain", http.StatusBadRequest)
			return
		}

		doc, err := svc.BuildDirectory(r.Context(), user, domain)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/xml")
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		_ = enc.Encode(doc)
	}
}

package console

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iamarketings/Operator/internal/listing"
	"github.com/iamarketings/Operator/internal/simulator"
	"github.com/iamarketings/Operator/internal/store"
)

// sourceHeader carries the mutation source on responses without a body.
const sourceHeader = "X-Result-Source"

func snapshotHandler[T any](snapshot func() T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, snapshot())
	}
}

func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func (s *Server) listExtensions(w http.ResponseWriter, r *http.Request) {
	exts := listing.FilterExtensions(s.store.Extensions(), r.URL.Query().Get("q"))
	perPage := intParam(r, "per_page", len(exts))
	writeJSON(w, http.StatusOK, listing.Paginate(exts, intParam(r, "page", 1), perPage))
}

func (s *Server) listCDRs(w http.ResponseWriter, r *http.Request) {
	records := listing.FilterCDRs(s.store.CDRs(), r.URL.Query().Get("q"))
	perPage := intParam(r, "per_page", listing.CDRPageSize)
	writeJSON(w, http.StatusOK, listing.Paginate(records, intParam(r, "page", 1), perPage))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, simulator.ComputeStats(s.store.Extensions(), s.store.Trunks(), s.sim.Calls()))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return false
	}
	return true
}

type validator interface {
	Validate() error
}

// createHandler rejects invalid payloads before the store sees them, so a
// backend 400 can never turn into a local fallback of an invalid entity.
func createHandler[N validator, T any](add func(context.Context, N) store.Result[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload N
		if !decode(w, r, &payload) {
			return
		}
		if err := payload.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, add(r.Context(), payload))
	}
}

func updateHandler[T validator](update func(context.Context, T) store.Result[T], setID func(*T, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if !decode(w, r, &v) {
			return
		}
		setID(&v, chi.URLParam(r, "id"))
		if err := v.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, update(r.Context(), v))
	}
}

func removeHandler(remove func(context.Context, string) store.Result[string]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := remove(r.Context(), chi.URLParam(r, "id"))
		w.Header().Set(sourceHeader, string(res.Source))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) toggleMember(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.store.Extension(chi.URLParam(r, "extID"))
	if !ok {
		http.Error(w, "unknown extension", http.StatusNotFound)
		return
	}
	res, ok := s.store.ToggleQueueMember(r.Context(), chi.URLParam(r, "id"), ext)
	if !ok {
		http.Error(w, "unknown queue", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

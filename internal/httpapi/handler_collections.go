package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iamarketings/Operator/internal/repo"
)

var errInvalidBody = errors.New("invalid body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	slog.Error("repository error", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "db error", http.StatusInternalServerError)
}

func listHandler[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func createHandler[N, T any](create func(context.Context, N) (T, error), validate func(N) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload N
		if err := decodeBody(w, r, &payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate(payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := create(r.Context(), payload)
		if err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// updateHandler takes the id from the path; an id in the body is ignored.
func updateHandler[T any](update func(context.Context, T) error, setID func(*T, string), validate func(T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entity T
		if err := decodeBody(w, r, &entity); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		setID(&entity, chi.URLParam(r, "id"))
		if err := validate(entity); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := update(r.Context(), entity); err != nil {
			writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entity)
	}
}

func deleteHandler(del func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRepoError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

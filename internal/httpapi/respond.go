package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nextstep/gift/internal/domain/page"
	"github.com/nextstep/gift/internal/domain/validation"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

type errorResponse struct {
	Message string `json:"message"`
}

// decodeJSON reads a request body into dst and runs struct validation on it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validation.New("Request body is required.")
		}
		return validation.New("Invalid JSON payload.")
	}
	return validate(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.New(fmt.Sprintf("Invalid %s.", name))
	}
	return id, nil
}

// pageRequest reads page, size and sort query parameters. Sort properties
// outside allowed are ignored.
func pageRequest(r *http.Request, allowed map[string]string) (page.Request, error) {
	q := r.URL.Query()

	number, size := 0, page.DefaultSize
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page.Request{}, validation.New("Invalid page parameter.")
		}
		number = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return page.Request{}, validation.New("Invalid size parameter.")
		}
		size = n
	}

	return page.Of(number, size, page.ParseSort(q["sort"], allowed)...), nil
}

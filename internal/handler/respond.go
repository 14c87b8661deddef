package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"template-api/internal/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := models.HTTPStatus(err)
	if status >= 500 {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, models.ErrorBody{
		Kind:    models.KindOf(err),
		Message: err.Error(),
	})
}

// readJSON decodes the request body into dst. Malformed JSON is a validation
// error so the caller can pass it straight to writeError.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.Validationf("invalid JSON body: %v", err)
	}
	return nil
}

// asBadRequest downgrades a not-found error to 400 for endpoints where the
// template name arrives as a parameter rather than a path segment.
func asBadRequest(err error) error {
	var e *models.Error
	if errors.As(err, &e) && e.Kind == models.KindNotFound {
		return &models.Error{Kind: e.Kind, Message: e.Message, Status: http.StatusBadRequest}
	}
	return err
}

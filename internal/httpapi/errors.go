package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vistara/internal/db"
	"vistara/internal/dialogue"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps ErrInvalidInput to 400, a missing archive row to 404,
// *AdapterError to 502 and anything else to 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var adapterErr *dialogue.AdapterError
	switch {
	case errors.Is(err, dialogue.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, db.ErrCompletionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &adapterErr):
		logger.Error(op+" failed", "adapter", adapterErr.Op, "error", adapterErr.Err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "upstream " + adapterErr.Op + " failed"})
	default:
		logger.Error(op+" failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decodeJSON reads a request body into dst, answering the request itself on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return false
	}
	return true
}

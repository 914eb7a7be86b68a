package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// internalError logs err under op and answers 500. The request id set by
// middleware.RequestID is both logged and returned so reports can be matched
// to log lines.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error, attrs ...slog.Attr) {
	reqID := middleware.GetReqID(r.Context())
	attrs = append(attrs, slog.String("error", err.Error()))
	if reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	slog.LogAttrs(r.Context(), slog.LevelError, op, attrs...)
	writeJSON(w, http.StatusInternalServerError, errResponse{Error: "internal error", RequestID: reqID})
}

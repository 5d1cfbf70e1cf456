package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", slog.Any("err", err))
	}
}

type ErrorBody struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Error writes the {message} failure body used by every endpoint.
func Error(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	if status >= 500 {
		reqID, _ := FromContext(ctx)
		slog.Warn("http request failed", "req_id", reqID, "status", status, "message", msg)
	}
	JSON(w, status, ErrorBody{Message: msg, Success: false})
}

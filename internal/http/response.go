package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"hostel-complaints-backend-go/internal/services"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, kind services.ErrorKind, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message, Kind: string(kind)})
}

var kindStatus = map[services.ErrorKind]int{
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindInvalidInput:    http.StatusBadRequest,
	services.KindConflict:        http.StatusConflict,
	services.KindInternal:        http.StatusInternalServerError,
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := "Internal server error"
	var serr services.ServiceError
	if kind == services.KindInternal {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else if errors.As(err, &serr) {
		message = serr.Message
	}
	WriteJSON(w, status, ErrorResponse{Message: message, Kind: string(kind), Reason: services.ReasonOf(err)})
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

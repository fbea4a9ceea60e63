package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"orderdesk/internal/service"
	"orderdesk/models"
	"orderdesk/pkg/logger"
)

// LoginPath is where anonymous callers are sent.
const LoginPath = "/user/login"

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, map[string]string{"error": message})
}

// handleServiceError maps service errors onto HTTP semantics: validation
// failures become per-field messages, missing actors a redirect to login,
// role failures 403, missing records 404.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	var validationErrs models.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeJSONResponse(w, http.StatusBadRequest, map[string]interface{}{
			"errors": validationErrs.Messages(),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	case errors.Is(err, service.ErrForbidden):
		writeErrorResponse(w, http.StatusForbidden, "Operation not permitted")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeErrorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrOrderNotFound):
		writeErrorResponse(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, models.ErrUserNotFound):
		writeErrorResponse(w, http.StatusNotFound, "User not found")
	default:
		log.Error("Unhandled service error", "error", err, "path", r.URL.Path)
		writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

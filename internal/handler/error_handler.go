package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
)

// handleError maps service errors to JSON responses
func handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		respondFieldErrors(w, validationErr.Message, validationErr.Fields)
		return
	}

	// The cause was logged where it happened; only the generic message leaves
	var persistenceErr *models.PersistenceError
	if errors.As(err, &persistenceErr) {
		respondError(w, http.StatusInternalServerError, models.CodeDatabase, persistenceErr.Message())
		return
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := mapErrorCodeToHTTPStatus(appErr.Code)
		respondError(w, status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, models.CodeNotFound, err.Error())

	case errors.Is(err, models.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error())

	default:
		// Log internal errors but don't expose details to client
		logger.Error("internal server error",
			slog.String("error", err.Error()),
		)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case models.CodeInvalidInput:
		return http.StatusBadRequest
	case models.CodeNotFound:
		return http.StatusNotFound
	case "CONFLICT":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

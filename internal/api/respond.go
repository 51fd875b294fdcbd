package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"cleanhive/internal/auth"
	"cleanhive/internal/database"
	"cleanhive/internal/models"
	"cleanhive/internal/service"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps service and storage errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var invalid *models.ErrInvalidTransition

	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrNotAvailable),
		errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, database.ErrOutsideServiceArea),
		errors.Is(err, database.ErrPromoExhausted),
		errors.Is(err, database.ErrDuplicateEmail),
		errors.Is(err, database.ErrDuplicateReview),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrReviewNotAllowed),
		errors.Is(err, service.ErrPromoInactive),
		errors.Is(err, service.ErrPromoExpired),
		errors.Is(err, service.ErrPromoMinAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

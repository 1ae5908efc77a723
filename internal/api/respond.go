package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/database"
	"github.com/grocerymarts/backend/internal/models"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps domain sentinel errors onto HTTP statuses. Anything
// unmapped is logged and hidden behind an opaque 500.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrAccountNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrReturnNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, database.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, database.ErrDuplicateEmail),
		errors.Is(err, database.ErrDuplicateProduct):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, database.ErrInsufficientStock),
		errors.Is(err, database.ErrInsufficientCredits),
		errors.Is(err, database.ErrInvalidReferralCode),
		errors.Is(err, database.ErrReferralChainLimit),
		errors.Is(err, database.ErrProductInactive),
		errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, database.ErrInvalidTransition),
		errors.Is(err, database.ErrOrderNotCancellable),
		errors.Is(err, database.ErrReturnNotCancellable),
		errors.Is(err, database.ErrQuantityExceedsOrder),
		errors.Is(err, database.ErrProductNotInOrder),
		errors.Is(err, models.ErrNoItems),
		errors.Is(err, models.ErrNegativeCredits),
		errors.Is(err, models.ErrCreditsExceed),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidPaymentMethod),
		errors.Is(err, models.ErrNotesTooLong),
		errors.Is(err, models.ErrInvalidReturnReason):
		respondError(w, http.StatusBadRequest, err.Error())

	default:
		log.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

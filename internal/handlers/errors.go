package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"familytree/internal/service"
)

func respondWithError(logger *zap.Logger, w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
	}

	http.Error(w, userMsg, status)
}

// respondWithServiceError maps store errors to 404 or 500
func respondWithServiceError(logger *zap.Logger, w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrPersonNotFound):
		respondWithError(logger, w, http.StatusNotFound, "Person not found", "", nil)
	case errors.Is(err, service.ErrFamilyNotFound):
		respondWithError(logger, w, http.StatusNotFound, "Family not found", "", nil)
	case errors.Is(err, service.ErrRelationshipNotFound):
		respondWithError(logger, w, http.StatusNotFound, "Relationship not found", "", nil)
	default:
		respondWithError(logger, w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

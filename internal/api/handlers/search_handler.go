package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/carefinder/backend/internal/application/services"
	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/infrastructure/observability"
	apperrors "github.com/carefinder/backend/pkg/errors"
)

// SearchHandler handles provider search HTTP requests
type SearchHandler struct {
	service *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// SearchProviders handles POST /api/search/providers
func (h *SearchHandler) SearchProviders(w http.ResponseWriter, r *http.Request) {
	var req entities.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithValidationError(w, []entities.FieldError{
			{Field: "body", Message: "invalid JSON payload"},
		})
		return
	}

	req.Normalize()
	if details := req.Validate(); len(details) > 0 {
		respondWithValidationError(w, details)
		return
	}

	result, err := h.service.SearchProviders(r.Context(), &req)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("provider search failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListSpecialties handles GET /api/search/specialties
func (h *SearchHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties := entities.AllSpecialties()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"specialties": specialties,
		"count":       len(specialties),
	})
}

// GetProvider handles GET /api/search/provider/{npi}
func (h *SearchHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	npi := r.PathValue("npi")
	if !entities.ValidNPI(npi) {
		respondWithError(w, http.StatusBadRequest, "Invalid NPI")
		return
	}

	provider, err := h.service.GetProvider(r.Context(), npi)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			respondWithError(w, http.StatusNotFound, "Provider not found")
			return
		}
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("npi", npi).Msg("provider lookup failed")
		respondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	respondWithJSON(w, http.StatusOK, provider)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithValidationError(w http.ResponseWriter, details []entities.FieldError) {
	respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "Validation failed",
		"details": details,
	})
}

// respondWithAppError maps an application error to a status code while
// keeping internal detail out of the response body.
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// Package handlers provides HTTP request handlers for the alternatives API
// endpoints. It includes handlers for alternative recommendation, medicine
// search, drug group lookup, pagination and health checks, with input
// validation and consistent JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medisave/alternatives-api/interfaces"
	"github.com/medisave/alternatives-api/logging"
	"github.com/medisave/alternatives-api/medicines/entities"
	"github.com/medisave/alternatives-api/metrics"
	"github.com/medisave/alternatives-api/recommend"
)

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// AlternativesResponse is the payload for a successful recommendation.
type AlternativesResponse struct {
	Query        string                 `json:"query"`
	Count        int                    `json:"count"`
	Alternatives []entities.Alternative `json:"alternatives"`
}

// FindAlternatives recommends cheaper same-composition, same-dosage
// medicines for the queried name. The optional "limit" query parameter
// bounds the result count.
func FindAlternatives(recommender interfaces.Recommender, validator interfaces.QueryValidator, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" {
			RespondWithError(w, http.StatusBadRequest, "Missing medicine name")
			return
		}

		if err := validator.ValidateQuery(name); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				RespondWithError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			limit = parsed
		}

		alternatives, err := recommender.Recommend(name, limit)
		switch {
		case err == nil:
			metrics.RecommendationsTotal.WithLabelValues("found").Inc()
			RespondWithJSON(w, http.StatusOK, AlternativesResponse{
				Query:        name,
				Count:        len(alternatives),
				Alternatives: alternatives,
			})
		case errors.Is(err, recommend.ErrInvalidLimit):
			RespondWithError(w, http.StatusBadRequest, "Limit must be a positive integer")
		case errors.Is(err, recommend.ErrNotFound):
			metrics.RecommendationsTotal.WithLabelValues("not_found").Inc()
			RespondWithError(w, http.StatusNotFound, "No alternatives found for "+name)
		default:
			// Per-query prediction failures degrade to not found; they must
			// never crash the process.
			metrics.RecommendationsTotal.WithLabelValues("error").Inc()
			logging.Error("Recommendation failed", "query", name, "error", err)
			RespondWithError(w, http.StatusNotFound, "No alternatives found for "+name)
		}
	}
}

// FindMedicines searches medicines by name (case-insensitive substring)
func FindMedicines(dataStore interfaces.DataStore, validator interfaces.QueryValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" {
			RespondWithError(w, http.StatusBadRequest, "Missing search term")
			return
		}

		if err := validator.ValidateQuery(name); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		key := strings.TrimSpace(strings.ToLower(name))

		catalog := dataStore.GetCatalog()
		var results []entities.Medicine
		for i := range catalog.Medicines {
			if strings.Contains(catalog.Medicines[i].CleanName, key) {
				results = append(results, catalog.Medicines[i])
			}
		}

		if len(results) == 0 {
			RespondWithError(w, http.StatusNotFound, "No medicines found")
			return
		}

		RespondWithJSON(w, http.StatusOK, results)
	}
}

// FindGroup returns all medicines in a drug group
func FindGroup(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupIDStr := chi.URLParam(r, "groupId")
		groupID, err := strconv.Atoi(groupIDStr)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
			return
		}

		catalog := dataStore.GetCatalog()
		indexes, exists := catalog.RecordsByGroup[groupID]
		if !exists {
			RespondWithError(w, http.StatusNotFound, "Drug group not found")
			return
		}

		results := make([]entities.Medicine, 0, len(indexes))
		for _, index := range indexes {
			results = append(results, catalog.Medicines[index])
		}

		RespondWithJSON(w, http.StatusOK, results)
	}
}

// ServePagedMedicines returns the catalog page by page
func ServePagedMedicines(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNumber := chi.URLParam(r, "pageNumber")
		page, err := strconv.Atoi(pageNumber)
		if err != nil || page < 1 {
			logging.Warn("Unusual user input", "pageNumber", pageNumber)
			RespondWithError(w, http.StatusBadRequest, "Invalid page number")
			return
		}

		catalog := dataStore.GetCatalog()
		pageSize := 10
		start := (page - 1) * pageSize
		end := start + pageSize

		if start >= len(catalog.Medicines) {
			RespondWithError(w, http.StatusNotFound, "Page not found")
			return
		}

		if end > len(catalog.Medicines) {
			end = len(catalog.Medicines)
		}

		totalItems := len(catalog.Medicines)
		maxPage := (totalItems + pageSize - 1) / pageSize

		response := map[string]interface{}{
			"data":       catalog.Medicines[start:end],
			"page":       page,
			"pageSize":   pageSize,
			"totalItems": totalItems,
			"maxPage":    maxPage,
		}

		RespondWithJSON(w, http.StatusOK, response)
	}
}

// HealthCheck returns server health information
func HealthCheck(checker interfaces.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, details, httpStatus := checker.HealthCheck()

		response := map[string]interface{}{
			"status": status,
			"data":   details,
		}

		RespondWithJSON(w, httpStatus, response)
	}
}

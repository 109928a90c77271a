package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	resp "institution-module/http/response"
	"institution-module/logger"
	"institution-module/models"
	"institution-module/services"
	"institution-module/store"
)

// InstitutionHandler serves the read-side institution endpoints
type InstitutionHandler struct {
	store store.Store
}

func NewInstitutionHandler(s store.Store) *InstitutionHandler {
	return &InstitutionHandler{store: s}
}

// ListInstitutions handles GET /institutions with optional type and level
// query filters
func (h *InstitutionHandler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		resp.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter := store.ListFilter{Type: r.URL.Query().Get("type")}
	if raw := r.URL.Query().Get("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			resp.ErrorResponse(w, http.StatusBadRequest, "level must be a number")
			return
		}
		filter.Level = level
	}

	institutions, err := h.store.ListInstitutions(r.Context(), filter)
	if err != nil {
		logger.Error("Error listing institutions: %v", err)
		resp.ErrorResponse(w, http.StatusInternalServerError, "Error fetching institutions")
		return
	}

	responses := make([]models.InstitutionResponse, 0, len(institutions))
	for i := range institutions {
		responses = append(responses, institutions[i].ToResponse())
	}

	resp.SuccessResponse(w, http.StatusOK, fmt.Sprintf("Found %d institutions", len(responses)), responses)
}

// ListInstitutionTypes handles GET /institution-types
func (h *InstitutionHandler) ListInstitutionTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		resp.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	types, err := h.store.ListInstitutionTypes(r.Context())
	if err != nil {
		logger.Error("Error listing institution types: %v", err)
		resp.ErrorResponse(w, http.StatusInternalServerError, "Error fetching institution types")
		return
	}

	resp.SuccessResponse(w, http.StatusOK, "", types)
}

// ExportInstitutions handles GET /export-institutions: streams the
// filtered institution list as an xlsx download
func (h *InstitutionHandler) ExportInstitutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		resp.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter := store.ListFilter{Type: r.URL.Query().Get("type")}
	if raw := r.URL.Query().Get("level"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil {
			filter.Level = level
		}
	}

	fileName := fmt.Sprintf("institutions_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, fileName))

	if err := services.ExportInstitutions(r.Context(), h.store, filter, w); err != nil {
		logger.Error("Error exporting institutions: %v", err)
	}
}

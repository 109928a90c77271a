package handlers

import (
	"encoding/json"
	"net/http"

	"institution-module/errors"
	resp "institution-module/http/response"
	"institution-module/logger"
	"institution-module/services"
	"institution-module/services/importer"
	"institution-module/store"
)

// ImportHandler serves the bulk spreadsheet import endpoints
type ImportHandler struct {
	store        store.Store
	orchestrator *importer.Orchestrator
}

func NewImportHandler(s store.Store) *ImportHandler {
	orch := importer.NewOrchestrator(s)
	if sender := services.CredentialSenderFromConfig(); sender != nil {
		orch.WithCredentialSender(sender)
	}
	return &ImportHandler{store: s, orchestrator: orch}
}

// ImportInstitutions handles POST /import-institutions?type=<key>.
// Expects a multipart upload with a "file" field and optional
// "duplicate_handling" (JSON) and "create_admin_always" fields.
func (h *ImportHandler) ImportInstitutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		resp.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	typeKey := r.URL.Query().Get("type")
	if typeKey == "" {
		resp.ErrorResponse(w, http.StatusBadRequest, "Missing required query parameter: type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Error("Error getting form file: %v", err)
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	logger.Info("Processing institution import: file=%s type=%s", header.Filename, typeKey)

	opts := importer.Options{
		CreateAdminAlways: r.FormValue("create_admin_always") == "true",
	}
	if raw := r.FormValue("duplicate_handling"); raw != "" {
		var policy importer.DuplicateHandling
		if err := json.Unmarshal([]byte(raw), &policy); err != nil {
			resp.ErrorResponse(w, http.StatusBadRequest, "Invalid duplicate_handling value: "+err.Error())
			return
		}
		opts.DuplicateHandling = &policy
	}

	report, err := h.orchestrator.ImportInstitutionsByType(r.Context(), file, typeKey, opts)
	if err != nil {
		resp.ErrorResponse(w, importStatusCode(err), err.Error())
		return
	}

	if report.ValidationErrors != nil {
		resp.SendJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	services.PublishImportCompletedEvent(typeKey, report)
	resp.SendJSON(w, http.StatusOK, report)
}

// importStatusCode maps whole-run failures to HTTP status codes
func importStatusCode(err error) int {
	switch {
	case errors.Is(err, importer.ErrUnknownInstitutionType):
		return http.StatusNotFound
	case errors.Is(err, importer.ErrFileRead),
		errors.Is(err, importer.ErrHeaderNotFound),
		errors.Is(err, importer.ErrNoDataRows):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ImportReportPDF handles POST /import-report-pdf: renders a posted
// ImportReport as a downloadable PDF
func (h *ImportHandler) ImportReportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		resp.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var payload struct {
		InstitutionType string                 `json:"institution_type"`
		Report          *importer.ImportReport `json:"report"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Report == nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid report payload")
		return
	}

	pdf, err := services.GenerateImportReportPDF(payload.InstitutionType, payload.Report)
	if err != nil {
		logger.Error("Error generating import report PDF: %v", err)
		resp.ErrorResponse(w, http.StatusInternalServerError, "Error generating PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="import-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logger.Error("Error writing PDF response: %v", err)
	}
}

package http

import (
	"net/http"

	"institution-module/http/handlers"
	"institution-module/http/middleware"
	"institution-module/store"
)

// SetupRoutes configures all HTTP routes and middleware
func SetupRoutes(s store.Store) {
	importHandler := handlers.NewImportHandler(s)
	institutionHandler := handlers.NewInstitutionHandler(s)

	// Import APIs
	http.HandleFunc("/import-institutions", middleware.EnableCORS(importHandler.ImportInstitutions))
	http.HandleFunc("/import-report-pdf", middleware.EnableCORS(importHandler.ImportReportPDF))

	// Institution APIs
	http.HandleFunc("/institutions", middleware.EnableCORS(institutionHandler.ListInstitutions))
	http.HandleFunc("/institution-types", middleware.EnableCORS(institutionHandler.ListInstitutionTypes))
	http.HandleFunc("/export-institutions", middleware.EnableCORS(institutionHandler.ExportInstitutions))
}

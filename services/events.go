package services

import (
	"fmt"
	"time"

	"institution-module/config"
	"institution-module/logger"
	"institution-module/services/importer"
)

// ImportCompletedEvent is published after every finished import run
type ImportCompletedEvent struct {
	EventID            string    `json:"event_id"`
	EventType          string    `json:"event_type"` // "institution.import.completed"
	InstitutionType    string    `json:"institution_type"`
	TotalRows          int       `json:"total_rows"`
	SuccessCount       int       `json:"success_count"`
	FailedCount        int       `json:"failed_count"`
	SkippedCount       int       `json:"skipped_count"`
	AdminsCreated      int       `json:"admins_created"`
	PasswordsGenerated int       `json:"passwords_generated"`
	Timestamp          time.Time `json:"timestamp"`
}

// PublishImportCompletedEvent publishes the run summary to Kafka.
// Non-blocking, best-effort; a broker outage never fails the import.
func PublishImportCompletedEvent(typeKey string, report *importer.ImportReport) {
	event := ImportCompletedEvent{
		EventID:            fmt.Sprintf("import-%s-%d", typeKey, time.Now().UnixNano()),
		EventType:          "institution.import.completed",
		InstitutionType:    typeKey,
		TotalRows:          report.TotalRows,
		SuccessCount:       report.SuccessCount,
		FailedCount:        report.FailedCount,
		SkippedCount:       report.SkippedCount,
		AdminsCreated:      report.AdminStats.Created,
		PasswordsGenerated: report.AdminStats.PasswordsGenerated,
		Timestamp:          time.Now().UTC(),
	}

	go func() {
		if err := Publish(config.AppConfig.KafkaImportTopic, fmt.Sprintf("import-%s", typeKey), event); err != nil {
			logger.Warn("failed to publish import.completed event for type %s: %v", typeKey, err)
		}
	}()
}

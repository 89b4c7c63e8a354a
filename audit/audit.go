// Package audit appends immutable log entries for privileged actions.
package audit

import (
	"log"

	"gorm.io/gorm"

	"github.com/clinicware/clinic-backend/models"
)

// Recorder writes append-only audit rows. Recording is best-effort: a
// failed insert is logged locally and never propagated, so the triggering
// action (an upload, an impersonation) is not rolled back by a logging
// failure.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one entry. It never returns an error to the caller.
func (r *Recorder) Record(actor, action string) {
	entry := models.AuditLog{Actor: actor, Action: action}
	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %q by %s: %v", action, actor, err)
	}
}

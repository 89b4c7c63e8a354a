package models

import "time"

// AuditLog rows are append-only: the application never updates or deletes
// them. Insertion order doubles as chronological order for display.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Actor     string `gorm:"size:200"`
	Action    string `gorm:"size:400"`
	CreatedAt time.Time
}

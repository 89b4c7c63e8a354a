package models

import "time"

// PatientFile is one uploaded artifact in a patient's record.
//
// Filename is the random on-disk storage name and is never derived from
// user input. OriginalName is the user-supplied name, kept for display and
// as the suggested download name only.
type PatientFile struct {
	ID           uint `gorm:"primaryKey"`
	PatientID    uint
	Patient      Patient `gorm:"foreignKey:PatientID"`
	Filename     string  `gorm:"size:300"`
	OriginalName string  `gorm:"size:300"`
	UploadedAt   time.Time `gorm:"autoCreateTime"`
}

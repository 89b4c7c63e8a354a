package models

import "time"

const (
	AppointmentRequested = "requested"
	AppointmentConfirmed = "confirmed"
)

type Appointment struct {
	ID        uint `gorm:"primaryKey"`
	PatientID uint
	Patient   Patient `gorm:"foreignKey:PatientID"`
	// Reference is a short human-shareable booking code.
	Reference string `gorm:"size:40"`
	Date      time.Time
	Reason    string `gorm:"size:300"`
	Status    string `gorm:"size:40;default:requested"`
	CreatedAt time.Time
}

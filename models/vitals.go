package models

import "time"

type Vitals struct {
	ID         uint `gorm:"primaryKey"`
	PatientID  uint
	Patient    Patient `gorm:"foreignKey:PatientID"`
	Systolic   int
	Diastolic  int
	Glucose    *float64
	Note       string `gorm:"size:300"`
	MeasuredAt time.Time `gorm:"autoCreateTime"`
}

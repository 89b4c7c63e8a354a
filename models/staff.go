package models

import "time"

// Staff roles are "staff", "doctor" or "admin".
const (
	RoleStaff  = "staff"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

type Staff struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:120"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:200"`
	Role         string `gorm:"size:40;default:staff"`
	CreatedAt    time.Time
}

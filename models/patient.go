package models

import "time"

type Patient struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:120"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	Phone        string `gorm:"size:40"`
	PasswordHash string `gorm:"size:200"`
	CreatedAt    time.Time
}

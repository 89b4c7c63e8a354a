package models

import "time"

type BlogPost struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:200"`
	Slug      string `gorm:"size:200;uniqueIndex"`
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
}

type Testimonial struct {
	ID        uint   `gorm:"primaryKey"`
	Author    string `gorm:"size:120"`
	Text      string `gorm:"size:600"`
	Featured  bool   `gorm:"default:false"`
	CreatedAt time.Time
}

type FAQ struct {
	ID       uint   `gorm:"primaryKey"`
	Question string `gorm:"size:400"`
	Answer   string `gorm:"size:1000"`
}

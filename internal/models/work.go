package models

import "time"

// Work - работа в портфолио фрилансера
type Work struct {
	BaseModel
	Title  string      `gorm:"not null" json:"title"`
	UserID int64       `gorm:"not null;index" json:"userId"`
	Images []WorkImage `gorm:"foreignKey:WorkID" json:"images"`
}

type WorkImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkID    int64     `gorm:"not null" json:"-"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	ImageID   string    `gorm:"uniqueIndex;not null" json:"imageId"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"-"`
}

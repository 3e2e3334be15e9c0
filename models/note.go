package models

import "time"

// Note belongs to a folder. ModifiedDate is unix milliseconds, which is
// what the API exposes.
type Note struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint   `gorm:"index;not null"`
	FolderID     uint   `gorm:"index;not null"`
	Title        string `gorm:"size:255;not null"`
	Content      string `gorm:"type:text"`
	ModifiedDate int64  `gorm:"not null"`
}

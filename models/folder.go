package models

import "time"

// Folder groups notes for a single user.
type Folder struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     uint   `gorm:"index;not null"`
	FolderName string `gorm:"size:255;not null"`
	Notes      []Note `gorm:"foreignKey:FolderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

package models

import (
	"time"
)

// User model
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string  `gorm:"size:255;not null;unique"`
	HashedPassword []byte  `gorm:"not null"`
	Email          *string `gorm:"size:255;uniqueIndex"`
	FirstName      string  `gorm:"size:255"`
	LastName       string  `gorm:"size:255"`
	// Enabled/Locked gate login; a disabled or locked account fails the
	// credential check the same way a wrong password does.
	Enabled bool  `gorm:"default:true;not null"`
	Locked  bool  `gorm:"default:false;not null"`
	RoleID  *uint `gorm:"index"`
	Role    Role  `gorm:"foreignKey:RoleID;references:ID"`
	Folders []Folder
}

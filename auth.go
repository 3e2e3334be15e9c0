package main

import (
	"fmt"
	"strings"
	"time"

	"aurora/models"
	"aurora/pkg/session"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// dbCredentials checks a username/password pair against the users table.
// Unknown user, wrong password and disabled/locked account all fail with
// the same error so the response cannot be used to enumerate usernames.
type dbCredentials struct {
	db *gorm.DB
}

func (c *dbCredentials) Verify(username, password string) error {
	var user models.User
	if err := c.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return session.ErrInvalidCredentials
	}
	if !user.Enabled || user.Locked {
		return session.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return session.ErrInvalidCredentials
	}
	return nil
}

type registration struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// RegisterUser creates a user together with a starter folder and note, all
// in one transaction so a half-registered account never exists.
func RegisterUser(req registration) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username required")
	}
	if len(req.Password) < 6 { // basic password policy
		return nil, fmt.Errorf("password too short (min 6)")
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("username already taken")
	}
	if req.Email != "" {
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("email already taken")
		}
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	// ensure role exists (idempotent)
	var role models.Role
	if err := db.Where("name = ?", "user").First(&role).Error; err != nil {
		role = models.Role{Name: "user", Description: "regular user"}
		if err2 := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err2 != nil {
			return nil, fmt.Errorf("failed to ensure user role: %v", err2)
		}
	}
	rid := role.ID
	user := models.User{
		Username:       username,
		HashedPassword: hashedPassword,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Enabled:        true,
		RoleID:         &rid,
	}
	if req.Email != "" {
		email := req.Email
		user.Email = &email
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) { // race condition after initial check
				return fmt.Errorf("username already taken")
			}
			return err
		}
		folder := models.Folder{UserID: user.ID, FolderName: "Your first folder"}
		if err := tx.Create(&folder).Error; err != nil {
			return err
		}
		note := models.Note{
			UserID:       user.ID,
			FolderID:     folder.ID,
			Title:        "Your first note",
			Content:      "Hello world!",
			ModifiedDate: time.Now().UnixMilli(),
		}
		return tx.Create(&note).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"aurora/models"
	"aurora/pkg/session"

	"gorm.io/gorm"
)

// gormTokenStore persists refresh tokens in the refresh_tokens table. Raw
// token strings never hit the database; rows are keyed by sha256 hash, and
// the unique index on token_hash enforces the one-record-per-value rule.
type gormTokenStore struct {
	db *gorm.DB
}

func hashToken(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

func (s *gormTokenStore) Save(rec session.Record) error {
	row := models.RefreshToken{
		Username:  rec.Username,
		TokenHash: hashToken(rec.Token),
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
		Revoked:   rec.Revoked,
	}
	return s.db.Create(&row).Error
}

func (s *gormTokenStore) FindByToken(value string) (*session.Record, error) {
	var row models.RefreshToken
	if err := s.db.Where("token_hash = ?", hashToken(value)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return &session.Record{
		Token:     value,
		Username:  row.Username,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
		Revoked:   row.Revoked,
	}, nil
}

// Consume flips revoked on the still-active row for value. The revoked
// predicate makes the UPDATE conditional, so of two concurrent refreshes
// only one sees RowsAffected == 1; the other gets ErrNotFound.
func (s *gormTokenStore) Consume(value string) error {
	res := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hashToken(value), false).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *gormTokenStore) Delete(value string) error {
	return s.db.Where("token_hash = ?", hashToken(value)).Delete(&models.RefreshToken{}).Error
}

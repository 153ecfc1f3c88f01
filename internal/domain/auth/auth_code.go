package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthCode is a single-use code redeemed at /auth/callback. CodeChallenge is
// the S256 PKCE challenge supplied when the code was minted.
type AuthCode struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string    `gorm:"uniqueIndex;not null;column:code" json:"-"`
	AccountID     uuid.UUID `gorm:"type:uuid;index;not null;column:account_id" json:"account_id"`
	CodeChallenge string    `gorm:"column:code_challenge" json:"-"`
	ExpiresAt     time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (AuthCode) TableName() string { return "auth_codes" }

func (c *AuthCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

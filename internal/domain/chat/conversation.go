package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is one persisted prompt/response exchange with the assistant.
type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Question  string    `gorm:"type:text;not null;column:question" json:"question"`
	Response  string    `gorm:"type:text;not null;column:response" json:"response"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Skill struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	SkillName          string          `gorm:"not null;column:skill_name" json:"skill_name"`
	StartDate          *datatypes.Date `gorm:"column:start_date" json:"start_date"`
	Deadline           *datatypes.Date `gorm:"column:deadline" json:"deadline"`
	ProgressPercentage *int            `gorm:"column:progress_percentage" json:"progress_percentage"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Skill) TableName() string { return "skills" }

func (s *Skill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Progress returns the stored percentage, treating NULL as zero.
func (s *Skill) Progress() int {
	if s == nil || s.ProgressPercentage == nil {
		return 0
	}
	return *s.ProgressPercentage
}

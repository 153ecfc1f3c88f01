package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	SkillID     uuid.UUID       `gorm:"type:uuid;not null;index;column:skill_id" json:"skill_id"`
	TaskName    string          `gorm:"not null;column:task_name" json:"task_name"`
	Deadline    *datatypes.Date `gorm:"column:deadline" json:"deadline"`
	IsCompleted bool            `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is the per-user row created at signup. Username stays NULL until
// onboarding completes.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  *string   `gorm:"uniqueIndex;column:username" json:"username"`
	FullName  *string   `gorm:"column:full_name" json:"full_name"`
	AvatarURL *string   `gorm:"column:avatar_url" json:"avatar_url"`
	Website   *string   `gorm:"column:website" json:"website"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// OnboardingComplete reports whether the username has been chosen.
func (p *Profile) OnboardingComplete() bool {
	return p != nil && p.Username != nil && strings.TrimSpace(*p.Username) != ""
}
